package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testPNG encodes a small solid-color PNG for decode/resize tests.
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestResizeImage(t *testing.T) {
	t.Run("LargeImageScaledDown", func(t *testing.T) {
		data, err := ResizeImage(testPNG(t, 2000, 1000), 800)
		if err != nil {
			t.Fatalf("Failed to resize: %v", err)
		}

		img, format, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("Failed to decode resized image: %v", err)
		}
		if format != "jpeg" {
			t.Errorf("Expected jpeg output, got %s", format)
		}
		if img.Bounds().Dx() != 800 {
			t.Errorf("Expected width 800, got %d", img.Bounds().Dx())
		}
		if img.Bounds().Dy() != 400 {
			t.Errorf("Expected height 400, got %d", img.Bounds().Dy())
		}
	})

	t.Run("SmallImageKeepsSize", func(t *testing.T) {
		data, err := ResizeImage(testPNG(t, 100, 60), 800)
		if err != nil {
			t.Fatalf("Failed to resize: %v", err)
		}

		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("Failed to decode image: %v", err)
		}
		if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 60 {
			t.Errorf("Expected 100x60, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
		}
	})

	t.Run("InvalidData", func(t *testing.T) {
		if _, err := ResizeImage([]byte("not an image"), 800); err == nil {
			t.Error("Expected error for invalid image data")
		}
	})
}

func TestNewHTTPProvider(t *testing.T) {
	t.Run("ValidURL", func(t *testing.T) {
		p, err := NewHTTPProvider("http://localhost:5000/", "face-api-recognition", 10*time.Second)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if p.Name() != "face-api-recognition" {
			t.Errorf("Expected model name, got %s", p.Name())
		}
	})

	t.Run("MissingHost", func(t *testing.T) {
		if _, err := NewHTTPProvider("http://", "", time.Second); err == nil {
			t.Error("Expected error for missing host")
		}
	})

	t.Run("BadScheme", func(t *testing.T) {
		if _, err := NewHTTPProvider("ftp://localhost", "", time.Second); err == nil {
			t.Error("Expected error for non-http scheme")
		}
	})
}

func TestHTTPProviderExtract(t *testing.T) {
	descriptor := make([]float32, 128)
	for i := range descriptor {
		descriptor[i] = float32(i) / 128.0
	}

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/descriptors" {
				t.Errorf("Unexpected path: %s", r.URL.Path)
			}
			var req extractRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("Failed to decode request: %v", err)
			}
			if req.Model != "face-api-recognition" {
				t.Errorf("Expected model in request, got %q", req.Model)
			}
			if len(req.Image) == 0 {
				t.Error("Expected image payload")
			}
			json.NewEncoder(w).Encode(extractResponse{
				Model:      req.Model,
				FaceCount:  1,
				Descriptor: descriptor,
			})
		}))
		defer server.Close()

		p, err := NewHTTPProvider(server.URL, "face-api-recognition", 10*time.Second)
		if err != nil {
			t.Fatalf("Failed to create provider: %v", err)
		}

		got, err := p.Extract(context.Background(), testPNG(t, 320, 240))
		if err != nil {
			t.Fatalf("Failed to extract: %v", err)
		}
		if len(got) != 128 {
			t.Errorf("Expected 128 components, got %d", len(got))
		}
	})

	t.Run("NoFaceStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		p, _ := NewHTTPProvider(server.URL, "", 10*time.Second)
		_, err := p.Extract(context.Background(), testPNG(t, 320, 240))
		if !errors.Is(err, ErrNoFaceDetected) {
			t.Fatalf("Expected ErrNoFaceDetected, got %v", err)
		}
	})

	t.Run("ZeroFaceCount", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(extractResponse{FaceCount: 0})
		}))
		defer server.Close()

		p, _ := NewHTTPProvider(server.URL, "", 10*time.Second)
		_, err := p.Extract(context.Background(), testPNG(t, 320, 240))
		if !errors.Is(err, ErrNoFaceDetected) {
			t.Fatalf("Expected ErrNoFaceDetected, got %v", err)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		p, _ := NewHTTPProvider(server.URL, "", 10*time.Second)
		_, err := p.Extract(context.Background(), testPNG(t, 320, 240))
		if err == nil {
			t.Fatal("Expected error for server failure")
		}
		if errors.Is(err, ErrNoFaceDetected) {
			t.Fatal("Server failure must not be reported as missing face")
		}
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		p, _ := NewHTTPProvider(server.URL, "", 10*time.Second)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := p.Extract(ctx, testPNG(t, 320, 240)); err == nil {
			t.Fatal("Expected error for cancelled context")
		}
	})
}
