package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/mvallespi/dupscan/internal/configs/env"
)

// Config holds all configuration for the application
type Config struct {
	// Batch input/output
	SubmissionsDir string
	OutputDir      string
	Mode           string
	Extensions     string
	IncludeTests   bool

	// Mongo mirror (optional)
	MongoURI     string
	MongoDBName  string
	StoreBackend string

	// Redis (serve mode)
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	StatusTTL               time.Duration
	StreamRetentionDuration time.Duration

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentRuns int
	RunTimeout        time.Duration

	// Logging
	LogLevel string

	// Server
	ServerPort string
}

// Conversion modes, mirroring the original consolidation tool
const (
	ModeJavaOnly = "java"
	ModeFull     = "full"
	ModeCustom   = "custom"
)

// Record store backends for serve mode
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

func Load() (*Config, error) {
	cfg := &Config{}

	// Batch
	cfg.SubmissionsDir = env.GetEnv("SUBMISSIONS_DIR", "entregas")
	cfg.OutputDir = env.GetEnv("OUTPUT_DIR", "consolidado")
	cfg.Mode = env.GetEnv("CONVERSION_MODE", ModeFull)
	cfg.Extensions = env.GetEnv("CUSTOM_EXTENSIONS", "")
	cfg.IncludeTests = env.GetEnvBool("INCLUDE_TESTS", true)

	// Mongo
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "dupscan")
	cfg.StoreBackend = env.GetEnv("STORE_BACKEND", StoreFile)

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "dupscan:submissions")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "dupscan:group")
	statusHours := env.GetEnvInt("STATUS_TTL_HOURS", 12)
	cfg.StatusTTL = time.Duration(statusHours) * time.Hour
	retentionHours := env.GetEnvInt("STREAM_RETENTION_DURATION", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "dupscan")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentRuns = env.GetEnvInt("MAX_CONCURRENT_RUNS", 2)
	timeoutMinutes := env.GetEnvInt("RUN_TIMEOUT_MINUTES", 30)
	cfg.RunTimeout = time.Duration(timeoutMinutes) * time.Minute

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")

	return cfg, nil
}

// StorePath is where the cross-session hash database lives
func (c *Config) StorePath() string {
	return filepath.Join(c.OutputDir, "hashes_database.json")
}

// ReportPath is where the similarity report is written
func (c *Config) ReportPath() string {
	return filepath.Join(c.OutputDir, "reporte_similitud.json")
}

func (c *Config) Validate() error {
	if c.SubmissionsDir == "" {
		return fmt.Errorf("SUBMISSIONS_DIR is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	switch c.Mode {
	case ModeJavaOnly, ModeFull:
	case ModeCustom:
		if c.Extensions == "" {
			return fmt.Errorf("CUSTOM_EXTENSIONS is required when CONVERSION_MODE is %q", ModeCustom)
		}
	default:
		return fmt.Errorf("unknown CONVERSION_MODE: %q", c.Mode)
	}
	return nil
}

// ValidateServe checks the extra requirements of serve mode
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.MaxConcurrentRuns <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_RUNS must be greater than 0")
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("RUN_TIMEOUT_MINUTES must be greater than 0")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_DURATION must be greater than 0")
	}
	switch c.StoreBackend {
	case StoreFile, StoreMongo:
	default:
		return fmt.Errorf("unknown STORE_BACKEND: %q", c.StoreBackend)
	}
	return nil
}
