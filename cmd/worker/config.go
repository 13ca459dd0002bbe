package main

import (
	"log"

	"powerwrite-backend/internal/shared/utils"
)

// Config holds worker-local configuration. Everything else comes from
// the shared container config.
type Config struct {
	RedisAddr   string
	Concurrency int
}

// loadConfig loads configuration from environment variables
func loadConfig() *Config {
	cfg := &Config{
		RedisAddr:   utils.GetEnvVariable("REDIS_HOST", "localhost:6379"),
		Concurrency: utils.GetEnvVariableInt("WORKER_CONCURRENCY", 10),
	}

	log.Printf("[Config] Redis: %s, Concurrency: %d", cfg.RedisAddr, cfg.Concurrency)

	return cfg
}
