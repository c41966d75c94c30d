package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Gateway  GatewayConfig
	Report   ReportConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds the table-store connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL.
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// GatewayConfig bounds the retry loop around remote table calls.
type GatewayConfig struct {
	RetryMaxAttempts uint64
	RetryInterval    time.Duration
}

type ReportConfig struct {
	RecentLeadsLimit int
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "leadboard"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Gateway: GatewayConfig{
			RetryMaxAttempts: uint64(getEnvAsInt("GATEWAY_RETRY_MAX_ATTEMPTS", 3)),
			RetryInterval:    getEnvAsDuration("GATEWAY_RETRY_INTERVAL", 100*time.Millisecond),
		},
		Report: ReportConfig{
			RecentLeadsLimit: getEnvAsInt("REPORT_RECENT_LEADS_LIMIT", 15),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
