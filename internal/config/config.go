package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MaxHistoryLimit caps how many conversation turns /history returns
const MaxHistoryLimit = 50

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

// Config holds process configuration read from the environment
type Config struct {
	Port            string
	DatabaseURL     string
	LogFile         string
	LogMode         string
	DefaultUserID   int64
	DefaultUserName string
	Location        *time.Location
	RateLimitPerMin int
	RateLimitBurst  int
	AllowedOrigins  []string
	HistoryLimit    int
	ScheduleFile    string
}

// Load reads .env (if present) and the environment.
// Warnings for ignored values are returned so the caller can log them once a logger exists.
func Load() (*Config, []string, error) {
	var warnings []string
	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, fmt.Sprintf(".env file not found: %v", err))
	}

	cfg, more, err := FromEnv()
	return cfg, append(warnings, more...), err
}

// FromEnv builds a Config from environment variables only
func FromEnv() (*Config, []string, error) {
	var warnings []string
	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		LogFile:         getEnv("LOG_FILE", "companion_app.log"),
		LogMode:         getEnv("LOG_MODE", "development"),
		DefaultUserName: getEnv("DEFAULT_USER_NAME", "Companion User"),
		ScheduleFile:    getEnv("SCHEDULE_FILE", ""),
		Location:        time.Local,
	}

	cfg.DefaultUserID = int64(getEnvInt("DEFAULT_USER_ID", 1, warn))
	if cfg.DefaultUserID <= 0 {
		warn("DEFAULT_USER_ID must be positive, using 1")
		cfg.DefaultUserID = 1
	}
	cfg.RateLimitPerMin = getEnvInt("RATE_LIMIT_PER_MIN", 100, warn)
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 200, warn)

	cfg.HistoryLimit = getEnvInt("HISTORY_LIMIT", MaxHistoryLimit, warn)
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > MaxHistoryLimit {
		warn("HISTORY_LIMIT %d out of range, using %d", cfg.HistoryLimit, MaxHistoryLimit)
		cfg.HistoryLimit = MaxHistoryLimit
	}

	if tz := getEnv("TIMEZONE", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			warn("invalid TIMEZONE %q, using local time: %v", tz, err)
		} else {
			cfg.Location = loc
		}
	}

	for _, origin := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if cfg.DatabaseURL == "" {
		return cfg, warnings, ErrMissingDatabaseURL
	}
	return cfg, warnings, nil
}

// Now returns the current time in the configured location
func (c *Config) Now() time.Time {
	return time.Now().In(c.Location)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int, warn func(string, ...interface{})) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		warn("invalid %s value '%s', using default %d", key, raw, defaultValue)
		return defaultValue
	}
	return n
}
