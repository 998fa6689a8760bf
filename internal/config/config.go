package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort       string
	DBPath        string
	SnapshotPath  string
	SourcesDir    string
	DocsDir       string
	SourceTimeout time.Duration
	LLMBaseURL    string
	LLMModelName  string
	LLMAPIKey     string
	LLMEnrichment bool
	WebhookURL    string
	LogLevel      slog.Level
	LogFormat     string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:       getEnv("API_PORT", "9000"),
		DBPath:        getEnv("DB_PATH", "./data/xyian-bot.db"),
		SnapshotPath:  getEnv("SNAPSHOT_PATH", "./data/knowledge-snapshot.json"),
		SourcesDir:    getEnv("SOURCES_DIR", ""),
		DocsDir:       getEnv("DOCS_DIR", ""),
		LLMBaseURL:    getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:  getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:     getEnv("LLM_API_KEY", "dummy-key"),
		LLMEnrichment: getEnv("LLM_ENRICHMENT", "false") == "true",
		WebhookURL:    getEnv("ADMIN_WEBHOOK_URL", ""),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}

	timeoutStr := getEnv("SOURCE_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("SOURCE_TIMEOUT must be a valid duration: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("SOURCE_TIMEOUT must be greater than 0")
	}
	cfg.SourceTimeout = timeout

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	// Validate required fields
	if cfg.SourcesDir == "" {
		return nil, fmt.Errorf("SOURCES_DIR is required")
	}

	// Create ./data directory if it doesn't exist (for DB and snapshot files)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// parseLogLevel maps a level name to a slog.Level.
func parseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
