package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp(t *testing.T) {
	config1 := App()
	config2 := App()

	require.NotNil(t, config1)
	assert.Same(t, config1, config2, "App() should return singleton instance")
	assert.NotNil(t, config1.Validator, "Validator should be initialized")
}

func TestLoadAppConfig(t *testing.T) {
	keys := []string{
		"APP_PORT", "API_KEY", "ENVIRONMENT", "OPENSEARCH_URL", "OPENSEARCH_USER",
		"OPENSEARCH_PASSWORD", "ENABLE_OPENSEARCH_LOGGING", "LOGGING_LEVEL",
		"LOG_RETENTION_DAYS", "CONFIG_DB_PATH",
	}

	tests := []struct {
		name     string
		envVars  map[string]string
		expected AppConfig
	}{
		{
			name:    "default_values",
			envVars: map[string]string{},
			expected: AppConfig{
				Port:             "9999",
				Environment:      "development",
				OpenSearchURL:    "http://localhost:9200",
				EnableLogging:    false,
				LoggingLevel:     "info",
				LogRetentionDays: 30,
				ConfigDBPath:     "./data/idpay.db",
			},
		},
		{
			name: "custom_values",
			envVars: map[string]string{
				"APP_PORT":                  "8080",
				"API_KEY":                   "service-key",
				"ENVIRONMENT":               "production",
				"OPENSEARCH_URL":            "https://search.example.com:9200",
				"OPENSEARCH_USER":           "testuser",
				"OPENSEARCH_PASSWORD":       "testpass",
				"ENABLE_OPENSEARCH_LOGGING": "true",
				"LOGGING_LEVEL":             "debug",
				"LOG_RETENTION_DAYS":        "60",
				"CONFIG_DB_PATH":            "/tmp/idpay.db",
			},
			expected: AppConfig{
				Port:             "8080",
				APIKey:           "service-key",
				Environment:      "production",
				OpenSearchURL:    "https://search.example.com:9200",
				OpenSearchUser:   "testuser",
				OpenSearchPass:   "testpass",
				EnableLogging:    true,
				LoggingLevel:     "debug",
				LogRetentionDays: 60,
				ConfigDBPath:     "/tmp/idpay.db",
			},
		},
		{
			name: "invalid_values_fall_back",
			envVars: map[string]string{
				"ENABLE_OPENSEARCH_LOGGING": "maybe",
				"LOG_RETENTION_DAYS":        "invalid",
			},
			expected: AppConfig{
				Port:             "9999",
				Environment:      "development",
				OpenSearchURL:    "http://localhost:9200",
				EnableLogging:    false,
				LoggingLevel:     "info",
				LogRetentionDays: 30,
				ConfigDBPath:     "./data/idpay.db",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range keys {
				t.Setenv(key, "")
			}
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			config := LoadAppConfig()
			require.NotNil(t, config)
			assert.Equal(t, tt.expected, *config)
		})
	}
}

func TestGetAppConfig_Singleton(t *testing.T) {
	assert.Same(t, GetAppConfig(), GetAppConfig())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("IDPAY_TEST_STRING", "custom")
	t.Setenv("IDPAY_TEST_BOOL", "true")
	t.Setenv("IDPAY_TEST_INT", "42")
	t.Setenv("IDPAY_TEST_BAD_INT", "forty-two")

	assert.Equal(t, "custom", GetEnv("IDPAY_TEST_STRING", "default"))
	assert.Equal(t, "default", GetEnv("IDPAY_TEST_MISSING", "default"))
	assert.True(t, GetBoolEnv("IDPAY_TEST_BOOL", false))
	assert.True(t, GetBoolEnv("IDPAY_TEST_MISSING", true))
	assert.Equal(t, 42, GetIntEnv("IDPAY_TEST_INT", 0))
	assert.Equal(t, 7, GetIntEnv("IDPAY_TEST_BAD_INT", 7))
}
