package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the whole application configuration,
// populated from environment variables.
type Config struct {
	App   AppConfig
	Redis RedisConfig
	JWT   JWTConfig
	AI    AIConfig
	MinIO MinIOConfig
	Demo  DemoConfig
	Jobs  JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  int // minutes
	RefreshTokenExpiry int // hours
}

// AIConfig carries provider credentials for the generation facade.
// Keys are validated per request, not at startup: a deployment may run
// with either provider alone.
type AIConfig struct {
	OpenAIKey     string
	OpenRouterKey string
	DefaultModel  string
	BaseURLOpenAI string
	BaseURLRouter string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// DemoConfig identifies the shared demo account. The acting user for
// unauthenticated requests resolves to this account.
type DemoConfig struct {
	UserEmail string
}

// JobConfig tunes the generation worker.
type JobConfig struct {
	ChapterBatchSize      int // chapters generated concurrently in parallel mode
	TerminalRetentionDays int // purge window for finished jobs
}

// Load reads config from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "PowerWrite API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry:  getEnvInt("JWT_ACCESS_EXPIRY", 15),
			RefreshTokenExpiry: getEnvInt("JWT_REFRESH_EXPIRY", 72),
		},
		AI: AIConfig{
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenRouterKey: getEnv("OPENROUTER_API_KEY", ""),
			DefaultModel:  getEnv("AI_DEFAULT_MODEL", "gpt-4o-mini"),
			BaseURLOpenAI: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			BaseURLRouter: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "powerwrite"),
			UseSSL:    false,
		},
		Demo: DemoConfig{
			UserEmail: getEnv("DEMO_USER_EMAIL", "demo@powerwrite.app"),
		},
		Jobs: JobConfig{
			ChapterBatchSize:      getEnvInt("JOB_CHAPTER_BATCH_SIZE", 3),
			TerminalRetentionDays: getEnvInt("JOB_TERMINAL_RETENTION_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that config is usable
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.AI.OpenAIKey == "" && c.AI.OpenRouterKey == "" {
			fmt.Println("WARNING: no AI provider key set - generation endpoints will fail")
		}
	}

	if c.Jobs.ChapterBatchSize < 1 {
		return fmt.Errorf("JOB_CHAPTER_BATCH_SIZE must be >= 1")
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
