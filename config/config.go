package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the chexray pipeline service
type Config struct {
	// Server configuration
	Port string

	// Remote inference backend (Colab GPU endpoint)
	InferenceURL     string
	InferenceTimeout time.Duration
	ProbeTimeout     time.Duration

	// LLM provider selection: "gemini" or "openai"
	LLMProvider string

	// Gemini configuration
	GeminiAPIKey         string
	GeminiModel          string
	GeminiEmbeddingModel string

	// OpenAI configuration
	OpenAIAPIKey         string
	OpenAIModel          string
	OpenAIEmbeddingModel string

	// Image preprocessing. 0 disables downscaling so the PNG
	// re-encode stays lossless.
	MaxImageDimension int

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		// Server defaults
		Port: getEnv("PORT", "8080"),

		// Inference backend defaults. The URL intentionally defaults to
		// empty: the Colab tunnel URL changes per session and is usually
		// supplied per request.
		InferenceURL:     getEnv("COLAB_API_URL", ""),
		InferenceTimeout: getDurationEnv("INFERENCE_TIMEOUT", 120*time.Second),
		ProbeTimeout:     getDurationEnv("PROBE_TIMEOUT", 5*time.Second),

		// LLM defaults
		LLMProvider:          getEnv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiEmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:          getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),

		// Image preprocessing defaults
		MaxImageDimension: getIntEnv("MAX_IMAGE_DIMENSION", 0),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
