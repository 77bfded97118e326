// README: Config loader with env defaults for HTTP, storage, generation backends and logging.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type SessionConfig struct {
	TTL time.Duration
	// LockLease bounds how long a crashed replica can hold a conversation.
	LockLease time.Duration
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Session SessionConfig
	Log     struct {
		Level  string
		Format string
	}
	AI struct {
		GeminiKey    string
		GeminiModel  string
		OpenAIKey    string
		OpenAIModel  string
		MonthlyQuota int
	}
	Maps struct {
		APIKey string
	}
	Firebase struct {
		ProjectID       string
		CredentialsFile string
	}
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
// Malformed or negative numeric settings are reported together.
func Load() (Config, error) {
	_ = godotenv.Load()

	var (
		cfg  Config
		errs []error
	)
	cfg.HTTP.Addr = envOrDefault("TRIPMATE_HTTP_ADDR", ":8080")
	cfg.DB.DSN = os.Getenv("TRIPMATE_DB_DSN")
	cfg.Redis.Addr = os.Getenv("TRIPMATE_REDIS_ADDR")
	cfg.Session.TTL = envDuration("TRIPMATE_SESSION_TTL", 24*time.Hour, &errs)
	cfg.Session.LockLease = envDuration("TRIPMATE_SESSION_LOCK_LEASE", 2*time.Minute, &errs)
	cfg.Log.Level = envOrDefault("TRIPMATE_LOG_LEVEL", "info")
	cfg.Log.Format = envOrDefault("TRIPMATE_LOG_FORMAT", "json")
	cfg.AI.GeminiKey = os.Getenv("GEMINI_API_KEY")
	cfg.AI.GeminiModel = envOrDefault("TRIPMATE_GEMINI_MODEL", "gemini-2.0-flash-lite")
	cfg.AI.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AI.OpenAIModel = envOrDefault("TRIPMATE_OPENAI_MODEL", "gpt-4o-mini")
	cfg.AI.MonthlyQuota = envInt("TRIPMATE_MONTHLY_QUOTA", 100, &errs)
	cfg.Maps.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.Firebase.ProjectID = os.Getenv("TRIPMATE_FIREBASE_PROJECT_ID")
	cfg.Firebase.CredentialsFile = os.Getenv("TRIPMATE_FIREBASE_CREDENTIALS")

	if cfg.Log.Format != "json" && cfg.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("TRIPMATE_LOG_FORMAT: want json or console, got %q", cfg.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		*errs = append(*errs, fmt.Errorf("%s: want a non-negative integer, got %q", key, v))
		return def
	}
	return n
}

func envDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		*errs = append(*errs, fmt.Errorf("%s: want a non-negative duration, got %q", key, v))
		return def
	}
	return d
}
