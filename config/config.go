// Package config loads and validates the service configuration from
// environment variables.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime settings.
type Config struct {
	Port              string
	Address           string
	Env               string
	LogLevel          string
	LogRetentionWeeks int
	MaxLogFileSize    int64 // bytes
	MaxRequestBody    int64 // bytes
	MaxHeaderSize     int64 // bytes
	DatabasePath      string
	ImportBatchSize   int // rows per bulk insert during imports
}

// Load reads the environment, applies defaults and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              envOr("PORT", "8000"),
		Address:           envOr("ADDRESS", "127.0.0.1"),
		Env:               envOr("ENV", "dev"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		LogRetentionWeeks: intEnvOr("LOG_RETENTION_WEEKS", 4),
		MaxLogFileSize:    int64EnvOr("MAX_LOG_FILE_SIZE", 100*1024*1024),
		MaxRequestBody:    int64EnvOr("MAX_REQUEST_BODY", 1024*1024),
		MaxHeaderSize:     int64EnvOr("MAX_HEADER_SIZE", 1024*1024),
		DatabasePath:      envOr("DATABASE_PATH", "data/terminology.db"),
		ImportBatchSize:   intEnvOr("IMPORT_BATCH_SIZE", 500),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if err := validatePort(cfg.Port); err != nil {
		return err
	}
	if err := validateAddress(cfg.Address); err != nil {
		return err
	}
	if err := oneOf("ENV", cfg.Env, "dev", "staging", "prod", "test"); err != nil {
		return err
	}
	if err := oneOf("LOG_LEVEL", cfg.LogLevel, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	if err := sizeInRange("MAX_REQUEST_BODY", cfg.MaxRequestBody, 1, 100*1024*1024); err != nil {
		return err
	}
	if err := sizeInRange("MAX_HEADER_SIZE", cfg.MaxHeaderSize, 1, 100*1024*1024); err != nil {
		return err
	}
	if err := sizeInRange("MAX_LOG_FILE_SIZE", cfg.MaxLogFileSize, 1024*1024, 1024*1024*1024); err != nil {
		return err
	}
	if cfg.LogRetentionWeeks <= 0 || cfg.LogRetentionWeeks > 52 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be between 1 and 52, got: %d", cfg.LogRetentionWeeks)
	}
	if strings.TrimSpace(cfg.DatabasePath) == "" {
		return fmt.Errorf("DATABASE_PATH cannot be empty")
	}
	// SQLite caps bound variables per statement; large batches would exceed
	// it once multiplied by column count.
	if cfg.ImportBatchSize <= 0 || cfg.ImportBatchSize > 5000 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be between 1 and 5000, got: %d", cfg.ImportBatchSize)
	}
	return nil
}

func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}
	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}
	return nil
}

// validateAddress accepts loopback names and private IPs. The service sits
// behind a reverse proxy; binding a public address directly is a deploy
// mistake worth failing fast on.
func validateAddress(address string) error {
	if address == "127.0.0.1" || address == "::1" || address == "localhost" {
		return nil
	}
	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}
	if !ip.IsLoopback() && !ip.IsPrivate() {
		return fmt.Errorf("ADDRESS %s is a public IP, bind a private address behind the proxy", address)
	}
	return nil
}

func oneOf(name, value string, allowed ...string) error {
	value = strings.ToLower(value)
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got: %s", name, allowed, value)
}

func sizeInRange(name string, size, min, max int64) error {
	if size < min || size > max {
		return fmt.Errorf("%s must be between %d and %d bytes, got: %d", name, min, max, size)
	}
	return nil
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnvOr(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func int64EnvOr(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvVars lists every environment variable the service reads.
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"DATABASE_PATH",
		"IMPORT_BATCH_SIZE",
	}
}
