package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"hcpdash/internal/errors"
	"hcpdash/internal/hub"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Data      DataConfig
	Hub       HubConfig
	Charts    ChartConfig
	Profiling ProfilingConfig
}

// DatabaseConfig holds database connection settings. An empty URL keeps the upload
// history in memory.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string
	GinMode     string
	MaxUploadMB int
}

// MaxUploadBytes is the upload size limit in bytes
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// DataConfig holds the dataset loaded at start and the schema overrides
type DataConfig struct {
	File          string
	SchemaFile    string
	Watch         bool
	WatchDebounce time.Duration
}

// HubConfig holds notification settings
type HubConfig struct {
	NotifyPolicy string
}

// ChartConfig holds SVG canvas sizes
type ChartConfig struct {
	Width  int
	Height int
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database:  *loadDatabaseConfig(),
		Server:    *loadServerConfig(),
		Data:      *loadDataConfig(),
		Hub:       *loadHubConfig(),
		Charts:    *loadChartConfig(),
		Profiling: *loadProfilingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL: os.Getenv("DATABASE_URL"),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		GinMode:     getEnvOrDefault("GIN_MODE", "debug"),
		MaxUploadMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 32),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		File:          getEnvOrDefault("DATA_FILE", ""),
		SchemaFile:    getEnvOrDefault("SCHEMA_FILE", ""),
		Watch:         getEnvBoolOrDefault("WATCH_ENABLED", false),
		WatchDebounce: getEnvDurationOrDefault("WATCH_DEBOUNCE", 250*time.Millisecond),
	}
}

func loadHubConfig() *HubConfig {
	return &HubConfig{
		NotifyPolicy: getEnvOrDefault("NOTIFY_POLICY", "isolate"),
	}
}

func loadChartConfig() *ChartConfig {
	return &ChartConfig{
		Width:  getEnvIntOrDefault("CHART_WIDTH", 640),
		Height: getEnvIntOrDefault("CHART_HEIGHT", 420),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Charts.Width <= 0 || config.Charts.Height <= 0 {
		return errors.ConfigInvalid("CHART_WIDTH and CHART_HEIGHT must be positive")
	}
	policy, err := hub.ParsePolicy(config.Hub.NotifyPolicy)
	if err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("NOTIFY_POLICY %q must be isolate or failfast", config.Hub.NotifyPolicy))
	}
	config.Hub.NotifyPolicy = policy.String()
	if config.Data.Watch && config.Data.File == "" {
		return errors.ConfigInvalid("WATCH_ENABLED requires DATA_FILE")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
