// Package config provides configuration management functionality.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     int
	LogLevel string
	DevMode  bool

	// FMPAPIKey is the bond reference-price provider credential. It may be
	// empty; the bond pricing service reports a configuration error at call
	// time when it is missing, not at startup.
	FMPAPIKey string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Port:      getEnvInt("PORT", 8090),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		DevMode:   getEnvBool("DEV_MODE", false),
		FMPAPIKey: getEnv("FMP_API_KEY", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
