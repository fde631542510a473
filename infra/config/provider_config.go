package config

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// DefaultMerchantID is the merchant that env-provided configuration is registered under
const DefaultMerchantID = "default"

// ConfigStorage persists merchant configurations
type ConfigStorage interface {
	SaveMerchantConfig(merchantID, providerName string, config map[string]string) error
	LoadMerchantConfig(merchantID, providerName string) (map[string]string, error)
	LoadAllMerchantConfigs() (map[string]map[string]string, error)
	DeleteMerchantConfig(merchantID, providerName string) error
	GetStats() (map[string]any, error)
}

// ProviderConfig manages payment provider configurations per merchant
type ProviderConfig struct {
	configs map[string]map[string]string
	storage ConfigStorage
	mu      sync.RWMutex
}

// NewProviderConfig creates a provider configuration backed by storage.
// A nil storage keeps configurations in memory only.
func NewProviderConfig(storage ConfigStorage) *ProviderConfig {
	c := &ProviderConfig{
		configs: make(map[string]map[string]string),
		storage: storage,
	}

	if storage != nil {
		configs, err := storage.LoadAllMerchantConfigs()
		if err != nil {
			zap.L().Warn("failed to load stored merchant configs", zap.Error(err))
		} else {
			maps.Copy(c.configs, configs)
		}
	}

	return c
}

// merchantKey matches ids exactly, the same way storage rows and cached providers do
func merchantKey(merchantID, providerName string) string {
	return fmt.Sprintf("%s_%s", merchantID, providerName)
}

// LoadEnvironmentConfig registers the IDPAY_* environment variables as the default
// merchant's idpay configuration. Nothing is registered when IDPAY_API_KEY is unset.
func (c *ProviderConfig) LoadEnvironmentConfig() bool {
	apiKey := GetEnv("IDPAY_API_KEY", "")
	if apiKey == "" {
		return false
	}

	cfg := map[string]string{
		"apiKey":      apiKey,
		"environment": GetEnv("IDPAY_ENVIRONMENT", "production"),
	}
	if timeout := GetIntEnv("IDPAY_TIMEOUT_MS", 0); timeout > 0 {
		cfg["timeout"] = strconv.Itoa(timeout)
	}
	if proxy := GetEnv("IDPAY_PROXY_URL", ""); proxy != "" {
		cfg["proxy"] = proxy
	}

	c.mu.Lock()
	c.configs[merchantKey(DefaultMerchantID, "idpay")] = cfg
	c.mu.Unlock()

	return true
}

// SetMerchantConfig stores the configuration of a merchant for a provider
func (c *ProviderConfig) SetMerchantConfig(merchantID, providerName string, config map[string]string) error {
	if merchantID == "" {
		return fmt.Errorf("merchant ID cannot be empty")
	}
	if providerName == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if len(config) == 0 {
		return fmt.Errorf("config cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.storage != nil {
		if err := c.storage.SaveMerchantConfig(merchantID, providerName, config); err != nil {
			return fmt.Errorf("failed to persist config: %w", err)
		}
	}

	c.configs[merchantKey(merchantID, providerName)] = maps.Clone(config)
	return nil
}

// GetMerchantConfig returns a copy of the configuration of a merchant for a provider
func (c *ProviderConfig) GetMerchantConfig(merchantID, providerName string) (map[string]string, error) {
	if merchantID == "" {
		return nil, fmt.Errorf("merchant ID cannot be empty")
	}

	key := merchantKey(merchantID, providerName)

	c.mu.RLock()
	config, exists := c.configs[key]
	c.mu.RUnlock()

	if !exists && c.storage != nil {
		stored, err := c.storage.LoadMerchantConfig(merchantID, providerName)
		if err != nil && !errors.Is(err, ErrConfigNotFound) {
			return nil, err
		}
		if err == nil {
			c.mu.Lock()
			c.configs[key] = stored
			c.mu.Unlock()
			config, exists = stored, true
		}
	}

	if !exists {
		return nil, fmt.Errorf("%w: merchant %s, provider %s", ErrConfigNotFound, merchantID, providerName)
	}

	return maps.Clone(config), nil
}

// DeleteMerchantConfig removes the configuration of a merchant for a provider
func (c *ProviderConfig) DeleteMerchantConfig(merchantID, providerName string) error {
	if merchantID == "" {
		return fmt.Errorf("merchant ID cannot be empty")
	}
	if providerName == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := merchantKey(merchantID, providerName)
	_, found := c.configs[key]

	if c.storage != nil {
		err := c.storage.DeleteMerchantConfig(merchantID, providerName)
		switch {
		case err == nil:
			found = true
		case !errors.Is(err, ErrConfigNotFound):
			return fmt.Errorf("failed to delete stored config: %w", err)
		}
	}

	if !found {
		return fmt.Errorf("%w: merchant %s, provider %s", ErrConfigNotFound, merchantID, providerName)
	}

	delete(c.configs, key)
	return nil
}

// GetStats returns configuration and storage statistics
func (c *ProviderConfig) GetStats() map[string]any {
	stats := make(map[string]any)

	c.mu.RLock()
	stats["memory_configs"] = len(c.configs)
	c.mu.RUnlock()

	if c.storage == nil {
		stats["storage"] = "not_available"
		return stats
	}

	storageStats, err := c.storage.GetStats()
	if err != nil {
		stats["storage_error"] = err.Error()
	} else {
		stats["storage"] = storageStats
	}

	return stats
}
