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

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	LogLevel  string
	LogFile   string

	DB      DatabaseConfig
	Redis   RedisConfig
	Gemini  GeminiConfig
	AWS     AWSConfig
	S3      S3Config
	Catalog CatalogConfig
	Upload  UploadConfig
	Worker  WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// GeminiConfig contains credentials for the receipt analysis model.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// AWSConfig contains AWS configuration for the receipt text pre-check.
type AWSConfig struct {
	Region           string
	TextCheckEnabled bool
}

// S3Config contains the receipt image archive bucket. An empty Bucket
// disables archiving. Without static keys the default AWS credential chain is used.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// CatalogConfig contains product matching parameters.
type CatalogConfig struct {
	TargetCity     string
	MatchThreshold float64
}

// UploadConfig limits receipt uploads per user.
type UploadConfig struct {
	MaxBytes        int64
	RatePerMinute   int
	BadUploadLimit  int
	BadUploadWindow time.Duration
	PenaltyPoints   int
}

// WorkerConfig contains background worker settings.
type WorkerConfig struct {
	RewardQueueSize int
	RewardTimeout   time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET_KEY", "")
	cfg.LogLevel = getEnv("LOG_LEVEL", "")
	cfg.LogFile = getEnv("LOG_FILE", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Gemini
	cfg.Gemini = GeminiConfig{
		APIKey:  getEnv("GEMINI_API_KEY", ""),
		Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		BaseURL: getEnv("GEMINI_BASE_URL", ""),
	}

	// AWS (Rekognition text pre-check)
	cfg.AWS = AWSConfig{
		Region:           getEnv("AWS_REGION", "ap-northeast-1"),
		TextCheckEnabled: getEnvBool("AWS_TEXT_CHECK_ENABLED", false),
	}

	// S3 (receipt image archive)
	cfg.S3 = S3Config{
		Bucket:          getEnv("S3_BUCKET", ""),
		Region:          getEnv("S3_REGION", cfg.AWS.Region),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
	}

	// Catalog
	cfg.Catalog = CatalogConfig{
		TargetCity:     getEnv("TARGET_CITY", "Sapporo"),
		MatchThreshold: getEnvFloat("MATCH_THRESHOLD", 0.85),
	}

	// Uploads
	cfg.Upload = UploadConfig{
		MaxBytes:       int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		RatePerMinute:  getEnvInt("UPLOAD_RATE_PER_MINUTE", 6),
		BadUploadLimit: getEnvInt("BAD_UPLOAD_LIMIT", 3),
		PenaltyPoints:  getEnvInt("BAD_UPLOAD_PENALTY", 5),
	}

	cfg.Worker.RewardQueueSize = getEnvInt("REWARD_QUEUE_SIZE", 256)

	// Durations
	var err error
	if cfg.Upload.BadUploadWindow, err = parseDurationEnv("BAD_UPLOAD_WINDOW", "24h"); err != nil {
		return nil, fmt.Errorf("invalid BAD_UPLOAD_WINDOW: %w", err)
	}
	if cfg.Gemini.Timeout, err = parseDurationEnv("GEMINI_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid GEMINI_TIMEOUT: %w", err)
	}
	if cfg.Worker.RewardTimeout, err = parseDurationEnv("REWARD_TIMEOUT", "10s"); err != nil {
		return nil, fmt.Errorf("invalid REWARD_TIMEOUT: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
		return errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET_KEY must be set for authentication")
	}
	if c.Catalog.MatchThreshold <= 0 || c.Catalog.MatchThreshold > 1 {
		return fmt.Errorf("MATCH_THRESHOLD must be in (0, 1], got %v", c.Catalog.MatchThreshold)
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	if c.Worker.RewardQueueSize <= 0 {
		return errors.New("REWARD_QUEUE_SIZE must be positive")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvFloat returns the value of an environment variable as a float or a default if empty/invalid.
func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
