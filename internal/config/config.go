package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries the process configuration, read from the environment.
// A .env file is loaded by main before this runs.
type Config struct {
	ListenAddr    string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string

	// ConnIdleTTL bounds how long a silent connection stays registered
	// before the hub's sweep drops it.
	ConnIdleTTL time.Duration
}

// Load reads the configuration from the environment with defaults that
// match local development.
func Load() *Config {
	return &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		PostgresDSN:   getEnv("DATABASE_DSN", "host=localhost user=user password=password dbname=chatware port=5432 sslmode=disable"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		JWTSecret:     getEnv("JWT_SECRET", "dev-only-secret"),
		ConnIdleTTL:   getEnvDuration("CONN_IDLE_TTL", 2*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
