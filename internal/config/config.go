package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all configuration for the relay.
type Config struct {
	Port        string
	Environment string

	GroqAPIKey  string
	ParamPrefix string
	GroqBaseURL string
	GroqModel   string

	MaxMessageLength int
	MaxOutputTokens  int
	UpstreamTimeout  time.Duration

	UsageTable string

	LogLevel  slog.Level
	LogFormat string
}

// IsDevelopment reports whether error details may be returned to callers.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// CredentialConfigured reports whether any source for the provider key is set.
func (c *Config) CredentialConfigured() bool {
	return c.GroqAPIKey != "" || c.ParamPrefix != ""
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory or one of its parents when present. Variables
// already set in the environment take precedence over .env values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		Environment: strings.ToLower(getEnv("APP_ENV", EnvProduction)),
		GroqAPIKey:  strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		ParamPrefix: strings.TrimSpace(os.Getenv("PARAM_PREFIX")),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:   getEnv("GROQ_MODEL", "openai/gpt-oss-120b"),
		UsageTable:  strings.TrimSpace(os.Getenv("USAGE_TABLE")),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.MaxMessageLength, err = envInt("MAX_MESSAGE_LENGTH", 700); err != nil {
		return nil, err
	}
	if cfg.MaxOutputTokens, err = envInt("MAX_OUTPUT_TOKENS", 1024); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout, err = envDuration("UPSTREAM_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return d, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	return level, nil
}
