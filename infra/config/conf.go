package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Validator *validator.Validate
}

// AppConfig represents the application configuration
type AppConfig struct {
	Port             string
	APIKey           string
	Environment      string
	OpenSearchURL    string
	OpenSearchUser   string
	OpenSearchPass   string
	EnableLogging    bool
	LoggingLevel     string
	LogRetentionDays int
	ConfigDBPath     string
}

var (
	instance          *Config
	instanceOnce      sync.Once
	appConfigInstance *AppConfig
	appConfigOnce     sync.Once
)

// App returns the process-wide configuration holder
func App() *Config {
	instanceOnce.Do(func() {
		instance = &Config{
			Validator: validator.New(validator.WithRequiredStructEnabled()),
		}
	})
	return instance
}

// GetAppConfig returns the application configuration
func GetAppConfig() *AppConfig {
	appConfigOnce.Do(func() {
		appConfigInstance = LoadAppConfig()
	})
	return appConfigInstance
}

// LoadAppConfig reads the application configuration from the environment
func LoadAppConfig() *AppConfig {
	return &AppConfig{
		Port:             GetEnv("APP_PORT", "9999"),
		APIKey:           GetEnv("API_KEY", ""),
		Environment:      GetEnv("ENVIRONMENT", "development"),
		OpenSearchURL:    GetEnv("OPENSEARCH_URL", "http://localhost:9200"),
		OpenSearchUser:   GetEnv("OPENSEARCH_USER", ""),
		OpenSearchPass:   GetEnv("OPENSEARCH_PASSWORD", ""),
		EnableLogging:    GetBoolEnv("ENABLE_OPENSEARCH_LOGGING", false),
		LoggingLevel:     GetEnv("LOGGING_LEVEL", "info"),
		LogRetentionDays: GetIntEnv("LOG_RETENTION_DAYS", 30),
		ConfigDBPath:     GetEnv("CONFIG_DB_PATH", "./data/idpay.db"),
	}
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
