package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	ModeTUI  = "tui"
	ModeHTTP = "http"
)

type Config struct {
	AppMode    string
	HTTPAddr   string
	CORSOrigin string

	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	LogLevel string
	LogFile  string

	UploadDir string
	SeedCount int
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads .env (if any) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		AppMode:    get("APP_MODE", ModeTUI),
		HTTPAddr:   get("HTTP_ADDR", ":8080"),
		CORSOrigin: get("CORS_ORIGIN", "http://localhost:3000"),

		DBDriver:   get("DB_DRIVER", "sqlite"),
		DBPath:     get("DB_PATH", "database.db"),
		DBHost:     get("DB_HOST", "localhost"),
		DBPort:     get("DB_PORT", "5432"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: get("DB_PASSWORD", ""),
		DBName:     get("DB_NAME", "studentdb"),
		DBSSLMode:  get("DB_SSLMODE", "disable"),

		LogLevel:  get("LOG_LEVEL", "info"),
		LogFile:   os.Getenv("LOG_FILE"),
		UploadDir: get("UPLOAD_DIR", "uploads"),
	}

	seed, err := strconv.Atoi(get("SEED_COUNT", "20"))
	if err != nil || seed < 0 {
		return nil, fmt.Errorf("invalid SEED_COUNT %q", os.Getenv("SEED_COUNT"))
	}
	cfg.SeedCount = seed

	if cfg.AppMode != ModeTUI && cfg.AppMode != ModeHTTP {
		return nil, fmt.Errorf("invalid APP_MODE %q", cfg.AppMode)
	}
	if cfg.AppMode == ModeTUI && cfg.LogFile == "" {
		cfg.LogFile = "app.log"
	}
	return cfg, nil
}

// PostgresDSN builds the libpq-style DSN used by the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}
