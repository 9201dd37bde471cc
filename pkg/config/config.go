package config

import (
	"errors"
	"os"
	"strconv"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	LLM      LLMConfig
	OCR      OCRConfig
	Pipeline PipelineConfig
	Logging  LoggingConfig
}

// LLMConfig selects the structuring model provider.
type LLMConfig struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
}

// OCRConfig tunes the scanned-document fallback.
type OCRConfig struct {
	// Engine is "tesseract" or "vision".
	Engine    string
	Languages string
	DPI       int
	// VisionProvider and VisionModel apply when Engine is "vision".
	VisionProvider string
	VisionModel    string
	VisionAPIKey   string
}

// PipelineConfig tunes extraction policy.
type PipelineConfig struct {
	MinDirectTextLength int
	Scale               float64
}

type LoggingConfig struct {
	Level string
	JSON  bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		LLM: LLMConfig{
			Provider:  getEnv("LLM_PROVIDER", "openai"),
			Model:     getEnv("LLM_MODEL", ""),
			APIKey:    getEnv("LLM_API_KEY", ""),
			BaseURL:   getEnv("LLM_BASE_URL", ""),
			MaxTokens: getEnvAsInt("LLM_MAX_TOKENS", 8192),
		},
		OCR: OCRConfig{
			Engine:         getEnv("OCR_ENGINE", "tesseract"),
			Languages:      getEnv("OCR_LANGUAGES", "eng"),
			DPI:            getEnvAsInt("OCR_DPI", 300),
			VisionProvider: getEnv("OCR_VISION_PROVIDER", ""),
			VisionModel:    getEnv("OCR_VISION_MODEL", ""),
			VisionAPIKey:   getEnv("OCR_VISION_API_KEY", ""),
		},
		Pipeline: PipelineConfig{
			MinDirectTextLength: getEnvAsInt("PIPELINE_MIN_DIRECT_TEXT_LENGTH", 100),
			Scale:               getEnvAsFloat("PIPELINE_OCR_SCALE", 2.0),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			JSON:  getEnvAsBool("LOG_JSON", false),
		},
	}

	if cfg.LLM.Model == "" {
		return nil, errors.New("LLM_MODEL is required")
	}
	if cfg.LLM.Provider != "ollama" && cfg.LLM.APIKey == "" {
		return nil, errors.New("LLM_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
