package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("MATCHER_MODEL")
	os.Unsetenv("MATCHER_DIM")
	os.Unsetenv("ENROLL_THRESHOLD")
	os.Unsetenv("RECOGNIZE_THRESHOLD")
	os.Unsetenv("WEB_PORT")

	cfg := Load()

	if cfg.Matcher.Model != "face-api-recognition" {
		t.Errorf("expected default model 'face-api-recognition', got '%s'", cfg.Matcher.Model)
	}
	if cfg.Matcher.Dim != 128 {
		t.Errorf("expected default dim 128, got %d", cfg.Matcher.Dim)
	}
	if cfg.Matcher.EnrollThreshold != 0.45 {
		t.Errorf("expected enroll threshold 0.45, got %f", cfg.Matcher.EnrollThreshold)
	}
	if cfg.Matcher.RecognizeThreshold != 0.60 {
		t.Errorf("expected recognize threshold 0.60, got %f", cfg.Matcher.RecognizeThreshold)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.DataDir != "data" {
		t.Errorf("expected default data dir 'data', got '%s'", cfg.Storage.DataDir)
	}
}

func TestLoad_ModelProfile(t *testing.T) {
	t.Setenv("MATCHER_MODEL", "facenet-vggface2")

	cfg := Load()

	if cfg.Matcher.Dim != 512 {
		t.Errorf("expected facenet dim 512, got %d", cfg.Matcher.Dim)
	}
	if cfg.Matcher.EnrollThreshold != 0.70 {
		t.Errorf("expected facenet enroll threshold 0.70, got %f", cfg.Matcher.EnrollThreshold)
	}
}

func TestLoad_ThresholdOverrides(t *testing.T) {
	t.Setenv("ENROLL_THRESHOLD", "0.40")
	t.Setenv("RECOGNIZE_THRESHOLD", "0.55")
	t.Setenv("MATCHER_DIM", "256")

	cfg := Load()

	if cfg.Matcher.EnrollThreshold != 0.40 {
		t.Errorf("expected enroll threshold 0.40, got %f", cfg.Matcher.EnrollThreshold)
	}
	if cfg.Matcher.RecognizeThreshold != 0.55 {
		t.Errorf("expected recognize threshold 0.55, got %f", cfg.Matcher.RecognizeThreshold)
	}
	if cfg.Matcher.Dim != 256 {
		t.Errorf("expected dim 256, got %d", cfg.Matcher.Dim)
	}
}

func TestLoad_InvalidThreshold(t *testing.T) {
	t.Setenv("ENROLL_THRESHOLD", "not-a-number")

	cfg := Load()

	if cfg.Matcher.EnrollThreshold != 0.45 {
		t.Errorf("expected fallback enroll threshold 0.45, got %f", cfg.Matcher.EnrollThreshold)
	}
}

func TestLoad_NegativeDim(t *testing.T) {
	t.Setenv("MATCHER_DIM", "-128")

	cfg := Load()

	if cfg.Matcher.Dim != 128 {
		t.Errorf("expected fallback dim 128 for negative input, got %d", cfg.Matcher.Dim)
	}
}

func TestProfile_UnknownModel(t *testing.T) {
	cfg := Load()

	p := cfg.Models.Profile("unknown-model-xyz")

	if p.Dim != 128 {
		t.Errorf("expected fallback dim 128, got %d", p.Dim)
	}
	if p.EnrollThreshold != 0.45 || p.RecognizeThreshold != 0.60 {
		t.Errorf("expected fallback thresholds 0.45/0.60, got %f/%f", p.EnrollThreshold, p.RecognizeThreshold)
	}
}

func TestLoad_EnrollStricterThanRecognize(t *testing.T) {
	cfg := Load()

	for name, p := range cfg.Models.Models {
		if p.EnrollThreshold >= p.RecognizeThreshold {
			t.Errorf("model %s: enroll threshold %f must be stricter than recognize threshold %f",
				name, p.EnrollThreshold, p.RecognizeThreshold)
		}
	}
}
