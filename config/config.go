package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the attribution pipeline service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Scoring API configuration
	ScoringAPIURL string
	ScoringAPIKey string
	ConvTypeID    string

	// Submission configuration
	ChunkSize int

	// Reporting configuration
	ReportFilePath  string
	NonPaidChannels []string

	// Pipeline scheduling (0 disables the poll loop; runs stay HTTP-triggered)
	PollInterval time.Duration
	RunOnStart   bool

	// HTTP server
	Port string
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret"),
		DBName:     getEnv("DB_NAME", "attribution"),

		// Scoring API defaults
		ScoringAPIURL: getEnv("SCORING_API_URL", "https://api.ihc-attribution.com/v1/compute_ihc"),
		ScoringAPIKey: getEnv("SCORING_API_KEY", ""),
		ConvTypeID:    getEnv("SCORING_CONV_TYPE_ID", "data_challenge"),

		// One request per chunk of this many conversions
		ChunkSize: getIntEnv("CHUNK_SIZE", 100),

		// Reporting defaults
		ReportFilePath:  getEnv("REPORT_FILE_PATH", "output/channel_reporting.csv"),
		NonPaidChannels: getListEnv("NON_PAID_CHANNELS", []string{"Organic Traffic", "Direct Traffic"}),

		// Scheduling defaults
		PollInterval: getDurationEnv("POLL_INTERVAL", 0),
		RunOnStart:   getBoolEnv("RUN_ON_START", false),

		Port: getEnv("PORT", "8080"),
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv gets a boolean environment variable or returns a default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getListEnv gets a comma-separated environment variable or returns a default value
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	if len(list) == 0 {
		return defaultValue
	}
	return list
}
