package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Verification VerificationConfig `yaml:"verification"`
	WFH          WFHConfig          `yaml:"wfh"`
	AutoRelease  AutoReleaseConfig  `yaml:"auto_release"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Env  string `yaml:"env"`
	// JWTSecret signs and verifies bearer tokens. Empty disables signature
	// validation, for local development only.
	JWTSecret string `yaml:"jwt_secret"`
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // "sqlite" or "postgres"
	DSN  string `yaml:"dsn"`
	Path string `yaml:"path"` // For SQLite: file path
}

// VerificationConfig tunes check-in arbitration.
type VerificationConfig struct {
	// AccuracyCeilingMeters caps the reported GPS accuracy added to the
	// geofence radius, so a claimed low accuracy cannot expand it unboundedly.
	AccuracyCeilingMeters float64 `yaml:"accuracy_ceiling_meters"`
	// OverrideConfidence is the confidence recorded for manual overrides.
	OverrideConfidence float64 `yaml:"override_confidence"`
}

// WFHConfig tunes work-from-home eligibility.
type WFHConfig struct {
	DefaultMonthlyMax int `yaml:"default_monthly_max"`
	// QuotaWarningAt emits a quota-warning event when remaining days fall to
	// this value or below.
	QuotaWarningAt int `yaml:"quota_warning_at"`
}

// AutoReleaseConfig tunes the no-show sweep.
type AutoReleaseConfig struct {
	SweepInterval    time.Duration `yaml:"sweep_interval"`
	GracePeriod      time.Duration `yaml:"grace_period"`
	ReleaseThreshold time.Duration `yaml:"release_threshold"`
	// DefaultOfficeID locates the operating-hours window parking release is
	// measured from.
	DefaultOfficeID string `yaml:"default_office_id"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dbType := getEnv("DB_TYPE", "sqlite")
	dsn, dbPath := buildDSN(dbType)

	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "0.0.0.0"),
			Port:      getEnv("SERVER_PORT", "8080"),
			Env:       getEnv("ENV", "development"),
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Type: dbType,
			DSN:  dsn,
			Path: dbPath,
		},
		Verification: VerificationConfig{
			AccuracyCeilingMeters: getEnvFloat("ACCURACY_CEILING_METERS", 50),
			OverrideConfidence:    getEnvFloat("OVERRIDE_CONFIDENCE", 0.5),
		},
		WFH: WFHConfig{
			DefaultMonthlyMax: getEnvInt("WFH_DEFAULT_MONTHLY_MAX", 10),
			QuotaWarningAt:    getEnvInt("WFH_QUOTA_WARNING_AT", 2),
		},
		AutoRelease: AutoReleaseConfig{
			SweepInterval:    getEnvDuration("AUTO_RELEASE_SWEEP_INTERVAL", 5*time.Minute),
			GracePeriod:      getEnvDuration("AUTO_RELEASE_GRACE_PERIOD", 15*time.Minute),
			ReleaseThreshold: getEnvDuration("AUTO_RELEASE_THRESHOLD", 30*time.Minute),
			DefaultOfficeID:  getEnv("AUTO_RELEASE_DEFAULT_OFFICE_ID", ""),
		},
	}

	// Optional YAML overlay takes precedence over env defaults.
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Verification.AccuracyCeilingMeters < 0 {
		return fmt.Errorf("accuracy ceiling must be non-negative")
	}
	if c.Verification.OverrideConfidence < 0 || c.Verification.OverrideConfidence > 1 {
		return fmt.Errorf("override confidence must be within [0,1]")
	}
	if c.AutoRelease.GracePeriod > c.AutoRelease.ReleaseThreshold {
		return fmt.Errorf("grace period must not exceed release threshold")
	}
	return nil
}

func buildDSN(dbType string) (string, string) {
	if dbType == "postgres" {
		dbHost := getEnv("DB_HOST", "localhost")
		dbPort := getEnv("DB_PORT", "5432")
		dbUser := getEnv("DB_USER", "postgres")
		dbPassword := getEnv("DB_PASSWORD", "postgres")
		dbName := getEnv("DB_NAME", "attendly")
		sslMode := getEnv("DB_SSLMODE", "disable")

		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			dbHost, dbPort, dbUser, dbPassword, dbName, sslMode,
		)
		return dsn, ""
	}

	// SQLite configuration (default for development)
	dbPath := getEnv("SQLITE_PATH", "./data/attendly.db")
	dsn := dbPath + "?mode=rwc&cache=shared&timeout=5000"
	return dsn, dbPath
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
