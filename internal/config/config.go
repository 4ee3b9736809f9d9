package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	OpenAIKey     string
	OpenAIBaseURL string
	WhisperModel  string
	ChatModel     string

	MongoURI      string
	MongoDatabase string

	UploadDir      string
	MaxUploadBytes int64

	EmotionEnabled    bool
	TranscribeTimeout time.Duration
	AnalysisTimeout   time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		WhisperModel:  getEnv("WHISPER_MODEL", "whisper-1"),
		ChatModel:     getEnv("CHAT_MODEL", "gpt-4o-mini"),

		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "voicenotes"),

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: 25 * 1024 * 1024,

		EmotionEnabled:    getEnvBool("EMOTION_ENABLED", true),
		TranscribeTimeout: getEnvSeconds("TRANSCRIBE_TIMEOUT", 60*time.Second),
		AnalysisTimeout:   getEnvSeconds("ANALYSIS_TIMEOUT", 30*time.Second),
	}

	// Fail fast on the outbound credential; both upstream calls need it.
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required. Please set it as environment variable:\n  Linux/Mac: export OPENAI_API_KEY=\"your_key\"\n  Windows PowerShell: $env:OPENAI_API_KEY=\"your_key\"")
	}

	// MONGODB_URI is optional; without it the service runs without persistence.

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
