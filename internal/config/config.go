package config

import (
	"os"
	"strconv"
)

// StoreConfig holds the filesystem layout of the article store.
// DataDir receives one JSON record file per article; ContentDir receives one
// raw file per attachment. Backend selects where attachment bytes live:
// "fs" (default) or "s3".
type StoreConfig struct {
	DataDir    string
	ContentDir string
	Backend    string
}

// MinIOConfig holds object storage settings for the optional S3 content
// backend.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// EventsConfig tunes the change-notification fan-out.
type EventsConfig struct {
	// BufferSize is the per-subscriber event channel capacity; a subscriber
	// that falls this far behind starts missing events.
	BufferSize int
	// KeepAliveSec is the SSE keep-alive comment interval.
	KeepAliveSec int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost string
	Port    string
	Store   StoreConfig
	MinIO   MinIOConfig
	Log     LogConfig
	Events  EventsConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Store: StoreConfig{
			DataDir:    getEnv("DATA_DIR", "data"),
			ContentDir: getEnv("CONTENT_DIR", "content"),
			Backend:    getEnv("CONTENT_BACKEND", "fs"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Events: EventsConfig{
			BufferSize:   getEnvInt("EVENT_BUFFER_SIZE", 16),
			KeepAliveSec: getEnvInt("EVENT_KEEPALIVE_SEC", 15),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
