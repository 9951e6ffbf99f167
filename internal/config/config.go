package config

import (
	"fmt"
	"os"
)

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN)
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// Maximum database connection pool size
	MaxDBConnections int

	// Enable debug logging
	Debug bool

	// IdentityCacheSize bounds the resolver's identity LRU cache
	IdentityCacheSize int

	// Observability configuration
	Observability ObservabilityConfig
}

// ObservabilityConfig holds OpenTelemetry export settings. An empty
// OTLPEndpoint disables telemetry entirely.
type ObservabilityConfig struct {
	OTLPEndpoint   string
	OTLPInsecure   bool
	ServiceName    string
	ServiceVersion string
	Environment    string
}

// Load reads configuration from environment variables with fallback defaults
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", "file:ram.db"),
		ServerAddr:        getEnv("SERVER_ADDR", "localhost:8080"),
		MaxDBConnections:  getEnvInt("MAX_DB_CONNECTIONS", 25),
		Debug:             getEnvBool("DEBUG", false),
		IdentityCacheSize: getEnvInt("IDENTITY_CACHE_SIZE", 1024),
		Observability: ObservabilityConfig{
			OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OTLPInsecure:   getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "ramapi"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ServerAddr == "" {
		return nil, fmt.Errorf("SERVER_ADDR is required")
	}
	if cfg.MaxDBConnections <= 0 {
		return nil, fmt.Errorf("MAX_DB_CONNECTIONS must be positive")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
