package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/faceattend/faceattend/internal/constants"
)

// HTTPProvider implements Provider using a descriptor extraction service
// that exposes a JSON API over HTTP.
type HTTPProvider struct {
	parsedURL *url.URL
	model     string
	client    *http.Client
}

// NewHTTPProvider creates a new HTTP extraction provider.
func NewHTTPProvider(baseURL, model string, timeout time.Duration) (*HTTPProvider, error) {
	if model == "" {
		model = constants.DefaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid extractor URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid extractor URL scheme %q: must be http or https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("invalid extractor URL: missing host")
	}
	return &HTTPProvider{
		parsedURL: parsed,
		model:     model,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the extraction model name.
func (p *HTTPProvider) Name() string {
	return p.model
}

// extractRequest represents a request to the extraction service.
type extractRequest struct {
	Model string `json:"model"`
	Image string `json:"image"`
}

// extractResponse represents a response from the extraction service.
type extractResponse struct {
	Model      string    `json:"model"`
	FaceCount  int       `json:"face_count"`
	Descriptor []float32 `json:"descriptor"`
}

// Extract sends a frame to the extraction service and returns the descriptor
// of the most prominent face. Frames larger than the service's input size are
// downscaled before upload.
func (p *HTTPProvider) Extract(ctx context.Context, imageData []byte) ([]float32, error) {
	resizedData, err := ResizeImage(imageData, constants.MaxImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}

	reqBody := extractRequest{
		Model: p.model,
		Image: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(resizedData),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := p.parsedURL.JoinPath("/v1/descriptors")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, ErrNoFaceDetected
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extractor API error (status %d): %s", resp.StatusCode, string(body))
	}

	var extractResp extractResponse
	if err := json.Unmarshal(body, &extractResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if extractResp.FaceCount == 0 || len(extractResp.Descriptor) == 0 {
		return nil, ErrNoFaceDetected
	}

	return extractResp.Descriptor, nil
}
