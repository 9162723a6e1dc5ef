package config

import (
	"log/slog"
	"os"
	"strings"
)

// Config holds all console configuration loaded from environment variables.
type Config struct {
	Port           string
	BackendURL     string
	LoginURL       string
	RedisAddr      string
	RedisPassword  string
	SessionSecret  string
	PostgresDSN    string
	AllowedOrigins []string
	LogLevel       slog.Level
	CookieSecure   bool
}

func Load() *Config {
	return &Config{
		Port:           getenv("PORT", "3000"),
		BackendURL:     getenv("BACKEND_URL", "http://127.0.0.1:8000/api/V1"),
		LoginURL:       getenv("LOGIN_URL", "http://127.0.0.1:8000/api/login"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		SessionSecret:  getenv("SESSION_SECRET", ""),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:       parseLevel(getenv("LOG_LEVEL", "info")),
		CookieSecure:   getenv("COOKIE_SECURE", "false") == "true",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseLevel falls back to info for anything slog does not recognise.
func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
