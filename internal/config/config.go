package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/faceattend/faceattend/internal/constants"
)

//go:embed models.yaml
var modelsYAML []byte

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Extractor ExtractorConfig
	Matcher   MatcherConfig
	Models    ModelsConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL           string // PostgreSQL connection URL; empty means file storage
	MaxOpenConns  int    // Maximum open connections (default 25)
	MaxIdleConns  int    // Maximum idle connections (default 5)
	HNSWIndexPath string // Path to persist the identity HNSW index (optional, rebuilt on startup if empty)
}

type StorageConfig struct {
	DataDir string // Directory for JSON file storage (default ./data)
}

type ExtractorConfig struct {
	URL            string // Descriptor extraction service URL
	TimeoutSeconds int    // HTTP timeout for extraction calls (default 30)
}

type MatcherConfig struct {
	Model              string
	Dim                int
	EnrollThreshold    float64
	RecognizeThreshold float64
}

type ModelsConfig struct {
	Models map[string]ModelProfile `yaml:"models"`
}

// ModelProfile describes a descriptor extraction model: the vector length it
// produces and the distance thresholds tuned for it.
type ModelProfile struct {
	Dim                int     `yaml:"dim"`
	EnrollThreshold    float64 `yaml:"enroll_threshold"`
	RecognizeThreshold float64 `yaml:"recognize_threshold"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var models ModelsConfig
	if err := yaml.Unmarshal(modelsYAML, &models); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded models.yaml: " + err.Error())
	}

	model := envString("MATCHER_MODEL", constants.DefaultModel)
	profile := models.Profile(model)

	return &Config{
		Server: ServerConfig{
			Host: envString("WEB_HOST", "0.0.0.0"),
			Port: envInt("WEB_PORT", 8080),
		},
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			MaxOpenConns:  envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  envInt("DATABASE_MAX_IDLE_CONNS", 5),
			HNSWIndexPath: os.Getenv("HNSW_INDEX_PATH"),
		},
		Storage: StorageConfig{
			DataDir: envString("DATA_DIR", "data"),
		},
		Extractor: ExtractorConfig{
			URL:            os.Getenv("EXTRACTOR_URL"),
			TimeoutSeconds: envInt("EXTRACTOR_TIMEOUT_SECONDS", 30),
		},
		Matcher: MatcherConfig{
			Model:              model,
			Dim:                envInt("MATCHER_DIM", profile.Dim),
			EnrollThreshold:    envFloat("ENROLL_THRESHOLD", profile.EnrollThreshold),
			RecognizeThreshold: envFloat("RECOGNIZE_THRESHOLD", profile.RecognizeThreshold),
		},
		Models: models,
	}
}

// Profile returns the profile for a model name, falling back to the default
// face-api.js recognition net profile for unknown models.
func (m *ModelsConfig) Profile(name string) ModelProfile {
	if p, ok := m.Models[name]; ok {
		return p
	}
	return ModelProfile{
		Dim:                constants.DefaultDescriptorDim,
		EnrollThreshold:    constants.EnrollThreshold,
		RecognizeThreshold: constants.RecognizeThreshold,
	}
}
