package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"pagesmith-backend/internal/infrastructure/database"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App      AppConfig
	Database *database.DBConfig
	Redis    RedisConfig
	MinIO    MinIOConfig
	LLM      LLMConfig
	CDN      CDNConfig
	Site     SiteConfig
	Jobs     JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
	// BusinessTTL bounds how long a business record stays cached.
	BusinessTTL time.Duration
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	// CacheControl is set on every uploaded page artifact.
	CacheControl string
}

// =====================================================
// LLM CONFIGURATION
// =====================================================

type LLMConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// =====================================================
// CDN CONFIGURATION
// =====================================================

type CDNConfig struct {
	// PurgeURL is the purge endpoint. Empty disables purging.
	PurgeURL  string
	Token     string
	Timeout   time.Duration
	RateLimit float64 // purge requests per second
	Burst     int
}

type SiteConfig struct {
	Name      string
	Host      string // primary public host, e.g. "pages.example.com"
	AliasHost string // secondary host purged alongside the primary
	Scheme    string
	// TimeZone applies to businesses whose record carries no zone.
	TimeZone string
}

// Location resolves TimeZone, falling back to UTC.
func (s SiteConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// BaseURL is scheme://host with no trailing slash.
func (s SiteConfig) BaseURL() string {
	return s.Scheme + "://" + s.Host
}

type JobConfig struct {
	RedisAddr         string
	Concurrency       int
	AutoPublishCron   string // empty disables the schedule
	GenerateQueue     string
	PublishQueue      string
	TaskTimeout       time.Duration
	ShutdownTimeout   time.Duration
	GenerationWorkers int
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	dbCfg, err := LoadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	redisHost := getEnv("REDIS_HOST", "localhost:6379")

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Pagesmith API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: dbCfg,
		Redis: RedisConfig{
			Host:        redisHost,
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			BusinessTTL: getEnvDuration("REDIS_BUSINESS_TTL", 10*time.Minute),
		},
		MinIO: MinIOConfig{
			Endpoint:     getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:    getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:    getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:       getEnv("MINIO_BUCKET", "pages"),
			UseSSL:       getEnvBool("MINIO_USE_SSL", false),
			Region:       getEnv("MINIO_REGION", "us-east-1"),
			CacheControl: getEnv("MINIO_CACHE_CONTROL", "public, max-age=300"),
		},
		LLM: LLMConfig{
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			BaseURL:   getEnv("ANTHROPIC_BASE_URL", ""),
			Model:     getEnv("LLM_MODEL", "claude-sonnet-4-5"),
			MaxTokens: getEnvInt("LLM_MAX_TOKENS", 600),
			Timeout:   getEnvDuration("LLM_TIMEOUT", 20*time.Second),
		},
		CDN: CDNConfig{
			PurgeURL:  getEnv("CDN_PURGE_URL", ""),
			Token:     getEnv("CDN_PURGE_TOKEN", ""),
			Timeout:   getEnvDuration("CDN_TIMEOUT", 10*time.Second),
			RateLimit: getEnvFloat("CDN_RATE_LIMIT", 10),
			Burst:     getEnvInt("CDN_BURST", 5),
		},
		Site: SiteConfig{
			Name:      getEnv("SITE_NAME", "Local Updates"),
			Host:      getEnv("SITE_HOST", "localhost:8080"),
			AliasHost: getEnv("SITE_ALIAS_HOST", ""),
			Scheme:    getEnv("SITE_SCHEME", "https"),
			TimeZone:  getEnv("SITE_TIME_ZONE", "UTC"),
		},
		Jobs: JobConfig{
			RedisAddr:         getEnv("JOBS_REDIS_ADDR", redisHost),
			Concurrency:       getEnvInt("JOBS_CONCURRENCY", 10),
			AutoPublishCron:   getEnv("AUTO_PUBLISH_CRON", ""),
			GenerateQueue:     getEnv("JOBS_GENERATE_QUEUE", "default"),
			PublishQueue:      getEnv("JOBS_PUBLISH_QUEUE", "critical"),
			TaskTimeout:       getEnvDuration("JOBS_TASK_TIMEOUT", 5*time.Minute),
			ShutdownTimeout:   getEnvDuration("JOBS_SHUTDOWN_TIMEOUT", 30*time.Second),
			GenerationWorkers: getEnvInt("GENERATION_WORKERS", 6),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks settings that would make the service misbehave.
func (c *Config) Validate() error {
	if c.Site.Scheme != "http" && c.Site.Scheme != "https" {
		return fmt.Errorf("SITE_SCHEME must be http or https, got %q", c.Site.Scheme)
	}
	if strings.Contains(c.Site.Host, "/") {
		return fmt.Errorf("SITE_HOST must be a bare host, got %q", c.Site.Host)
	}
	if _, err := time.LoadLocation(c.Site.TimeZone); err != nil {
		return fmt.Errorf("SITE_TIME_ZONE is not a known zone: %w", err)
	}
	if c.CDN.PurgeURL != "" && c.CDN.RateLimit <= 0 {
		return fmt.Errorf("CDN_RATE_LIMIT must be positive when CDN_PURGE_URL is set")
	}

	if c.App.Environment == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.Site.Host == "" || strings.HasPrefix(c.Site.Host, "localhost") {
			return fmt.Errorf("SITE_HOST must be set in production")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
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

func getEnvFloat(key string, defaultValue float64) float64 {
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

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
