package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderRegistry_Register(t *testing.T) {
	registry := NewProviderRegistry()

	// Mock provider factory
	mockFactory := func() PaymentProvider { return nil }

	registry.Register("test-provider", mockFactory)

	// Verify provider is registered
	factory, err := registry.Get("test-provider")
	assert.NoError(t, err)
	assert.NotNil(t, factory)
}

func TestProviderRegistry_GetAvailableProviders(t *testing.T) {
	registry := NewProviderRegistry()

	// Initially should be empty
	providers := registry.GetAvailableProviders()
	assert.Empty(t, providers)

	mockFactory := func() PaymentProvider { return nil }
	registry.Register("provider2", mockFactory)
	registry.Register("provider1", mockFactory)

	// Should return both providers, sorted
	providers = registry.GetAvailableProviders()
	assert.Equal(t, []string{"provider1", "provider2"}, providers)
}

func TestProviderRegistry_Get_NotFound(t *testing.T) {
	registry := NewProviderRegistry()

	factory, err := registry.Get("non-existent")
	assert.Error(t, err)
	assert.Nil(t, factory)
	assert.Contains(t, err.Error(), "is not registered")
}

func TestProviderRegistry_CreateProvider(t *testing.T) {
	registry := NewProviderRegistry()
	registry.Register("mock", func() PaymentProvider { return &mockProvider{} })

	p, err := registry.CreateProvider("mock")
	assert.NoError(t, err)
	assert.IsType(t, &mockProvider{}, p)

	_, err = registry.CreateProvider("missing")
	assert.Error(t, err)
}

func TestDefaultRegistry(t *testing.T) {
	mockFactory := func() PaymentProvider { return nil }

	Register("default-test", mockFactory)

	factory, err := Get("default-test")
	assert.NoError(t, err)
	assert.NotNil(t, factory)

	providers := GetAvailableProviders()
	assert.Contains(t, providers, "default-test")
}
