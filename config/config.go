package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the service reads from the environment
type Config struct {
	Env  string
	Port string

	LogLevel  string
	LogFormat string

	DBDriver    string
	DatabaseURL string

	ChromePath    string
	PDFTimeout    time.Duration
	PDFRateLimit  int
	LoaderWorkers int

	IllustrationsDir     string
	DriveCredentialsPath string
	DriveFolderID        string
	IllustrationCacheTTL time.Duration
	ViewerSessionTTL     time.Duration
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr returns the listen address. Listens on all interfaces so containers can reach it.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

// DatabaseConfigured reports whether a user data store is configured
func (c *Config) DatabaseConfigured() bool {
	return c.DatabaseURL != ""
}

// LoadDotEnv loads a .env file outside production.
// Values from the file override the process environment; a missing file is not an error.
func LoadDotEnv(path string) (bool, error) {
	if os.Getenv("ENV") == "production" {
		return false, nil
	}
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}
	if err := godotenv.Overload(path); err != nil {
		return false, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return true, nil
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env:                  getenv("ENV", "development"),
		Port:                 strings.TrimPrefix(getenv("PORT", "8080"), ":"),
		LogLevel:             getenv("LOG_LEVEL", "info"),
		LogFormat:            getenv("LOG_FORMAT", ""),
		DBDriver:             getenv("DB_DRIVER", "pgx"),
		ChromePath:           os.Getenv("CHROME_PATH"),
		IllustrationsDir:     os.Getenv("ILLUSTRATIONS_DIR"),
		DriveCredentialsPath: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		DriveFolderID:        os.Getenv("ILLUSTRATIONS_DRIVE_FOLDER_ID"),
	}

	var err error
	if cfg.PDFTimeout, err = durationEnv("PDF_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ViewerSessionTTL, err = durationEnv("VIEWER_SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.IllustrationCacheTTL, err = durationEnv("ILLUSTRATION_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.LoaderWorkers, err = intEnv("LOADER_WORKERS", 8); err != nil {
		return nil, err
	}
	if cfg.PDFRateLimit, err = intEnv("PDF_RATE_LIMIT", 10); err != nil {
		return nil, err
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
		if cfg.IsProduction() {
			cfg.LogFormat = "json"
		}
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = buildPostgresDSN()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.LoaderWorkers < 1 {
		return fmt.Errorf("LOADER_WORKERS must be at least 1, got %d", c.LoaderWorkers)
	}
	if c.PDFRateLimit < 1 {
		return fmt.Errorf("PDF_RATE_LIMIT must be at least 1, got %d", c.PDFRateLimit)
	}
	if c.PDFTimeout <= 0 {
		return fmt.Errorf("PDF_TIMEOUT must be positive")
	}
	if c.DBDriver != "pgx" && c.DBDriver != "sqlite" {
		return fmt.Errorf("DB_DRIVER must be pgx or sqlite, got %q", c.DBDriver)
	}
	if c.DriveFolderID != "" && c.DriveCredentialsPath == "" {
		return fmt.Errorf("ILLUSTRATIONS_DRIVE_FOLDER_ID requires GOOGLE_APPLICATION_CREDENTIALS")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// buildPostgresDSN builds a connection string from individual variables.
// Returns "" when the required ones are missing.
func buildPostgresDSN() string {
	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	dbname := os.Getenv("DB_NAME")
	if host == "" || user == "" || dbname == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, getenv("DB_PORT", "5432"), user, os.Getenv("DB_PASSWORD"), dbname, getenv("DB_SSLMODE", "disable"))
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}
