package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the pipeline. Every environment
// variable is read here and nowhere else.
type Config struct {
	Env string // development, staging, production

	// Sources
	Data DataConfig

	// Artifacts
	OutputDir string

	// Quality gate
	Validation ValidationConfig

	// Warehouse targets (optional; CSV-only runs need neither)
	Warehouse WarehouseConfig

	// Scheduled runs
	Schedule string

	// Logging
	LogLevel  string
	LogFormat string
}

// DataConfig locates the four raw extracts.
type DataConfig struct {
	Dir          string
	IdentityFile string
	MetadataFile string
	ReviewsFile  string
	SurveysFile  string
}

// ValidationConfig holds quality gate thresholds.
type ValidationConfig struct {
	Threshold           float64 // per-dimension pass threshold
	DistributionCeiling float64 // max share of a single value
	DateMin             time.Time
	DateMax             time.Time
}

// WarehouseConfig holds the downstream load targets.
type WarehouseConfig struct {
	DatabaseURL string
	SQLitePath  string

	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Load reads configuration from environment variables, consulting .env
// files the way the deployment layouts place them.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Data: DataConfig{
			Dir:          getEnv("CX_DATA_DIR", "data"),
			IdentityFile: getEnv("CX_IDENTITY_FILE", "id-business.csv"),
			MetadataFile: getEnv("CX_METADATA_FILE", "full-shop-infos.csv"),
			ReviewsFile:  getEnv("CX_REVIEWS_FILE", "google-reviews.csv"),
			SurveysFile:  getEnv("CX_SURVEYS_FILE", "sms-surveys.csv"),
		},

		OutputDir: getEnv("CX_OUTPUT_DIR", "clean_output"),

		Validation: ValidationConfig{
			Threshold:           getEnvAsFloat("CX_THRESHOLD", 0.95),
			DistributionCeiling: getEnvAsFloat("CX_DISTRIBUTION_CEILING", 0.99),
			DateMin:             getEnvAsDate("CX_DATE_MIN", "2025-01-01"),
			DateMax:             endOfDay(getEnvAsDate("CX_DATE_MAX", "2025-12-31")),
		},

		Warehouse: WarehouseConfig{
			DatabaseURL:     getEnv("DATABASE_URL", ""),
			SQLitePath:      getEnv("CX_SQLITE_PATH", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Schedule: getEnv("CX_SCHEDULE", "0 0 6 * * *"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}
	if c.Validation.Threshold <= 0 || c.Validation.Threshold > 1 {
		return fmt.Errorf("CX_THRESHOLD must be in (0, 1], got %v", c.Validation.Threshold)
	}
	if c.Validation.DistributionCeiling <= 0 || c.Validation.DistributionCeiling > 1 {
		return fmt.Errorf("CX_DISTRIBUTION_CEILING must be in (0, 1], got %v", c.Validation.DistributionCeiling)
	}
	if c.Validation.DateMax.Before(c.Validation.DateMin) {
		return fmt.Errorf("CX_DATE_MAX precedes CX_DATE_MIN")
	}
	return nil
}

// SourceFiles maps the logical source names used by the pipeline to file
// names inside the data directory.
func (c *Config) SourceFiles() map[string]string {
	return map[string]string{
		"id_business":     c.Data.IdentityFile,
		"full_shop_infos": c.Data.MetadataFile,
		"google_reviews":  c.Data.ReviewsFile,
		"sms_surveys":     c.Data.SurveysFile,
	}
}

// loadEnvFile tries to load .env from the usual locations.
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

// endOfDay extends a calendar date to its last second, so the window upper
// bound admits timestamps from the whole final day.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func getEnvAsDate(key string, defaultValue string) time.Time {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	t, err := time.ParseInLocation("2006-01-02", valueStr, time.UTC)
	if err != nil {
		t, _ = time.ParseInLocation("2006-01-02", defaultValue, time.UTC)
	}
	return t
}
