package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	BackendURL    string
	RedisURL      string
	Environment   string
	CookieSecure  bool
	CookieDomain  string
	SessionTTL    time.Duration
	SaveQuietWait time.Duration
}

func LoadConfig() (*Config, error) {
	// .env is optional outside development
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")

	return &Config{
		Port:          getEnv("PORT", "8080"),
		BackendURL:    getEnv("BACKEND_API_URL", "http://localhost:5000/api"),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
		Environment:   env,
		CookieSecure:  env == "production",
		CookieDomain:  getEnv("COOKIE_DOMAIN", ""),
		SessionTTL:    getDuration("WEB_SESSION_TTL", 24*time.Hour),
		SaveQuietWait: getDuration("SAVE_QUIET_PERIOD", 1500*time.Millisecond),
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
