// Package config loads service settings from the environment and format
// sheets from YAML.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the service settings.
type Config struct {
	HTTPAddr       string
	NATSUrl        string
	AllowedOrigins []string
	FormatsPath    string
	DB             DatabaseConfig
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// FromEnv reads configuration from environment variables (with defaults).
func FromEnv() Config {
	return Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		NATSUrl:        getEnv("NATS_URL", "nats://localhost:4222"),
		AllowedOrigins: splitNonEmpty(getEnv("ALLOWED_ORIGINS", "")),
		FormatsPath:    getEnv("FORMATS_PATH", "configs/formats.yaml"),
		DB:             dbFromEnv(),
	}
}

func dbFromEnv() DatabaseConfig {
	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		port = 5432
	}

	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		Database: getEnv("DB_NAME", "draftdex"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

// DSN returns the Postgres connection URL.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitNonEmpty(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
