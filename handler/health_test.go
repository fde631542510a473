package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mstgnz/idpay/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStats struct {
	stats map[string]any
	err   error
}

func (s stubStats) GetStats() (map[string]any, error) { return s.stats, s.err }

type stubSink bool

func (s stubSink) IsEnabled() bool { return bool(s) }

type stubCache provider.CacheStats

func (s stubCache) CacheStats() provider.CacheStats { return provider.CacheStats(s) }

func TestHealthHandler_CheckHealth(t *testing.T) {
	registry := provider.NewProviderRegistry()
	registry.Register("idpay", func() provider.PaymentProvider { return nil })

	tests := []struct {
		name        string
		storage     StatsSource
		sink        LogSink
		wantCode    int
		wantStatus  string
		wantLogs    string
		wantStorage string
	}{
		{"all healthy", stubStats{stats: map[string]any{"total_configs": 2}}, stubSink(true), http.StatusOK, "healthy", "enabled", "healthy"},
		{"logging disabled", stubStats{}, stubSink(false), http.StatusOK, "healthy", "disabled", "healthy"},
		{"no log sink", stubStats{}, nil, http.StatusOK, "healthy", "disabled", "healthy"},
		{"storage failing", stubStats{err: errors.New("database is locked")}, stubSink(true), http.StatusServiceUnavailable, "unhealthy", "enabled", "unhealthy"},
		{"no storage", nil, nil, http.StatusServiceUnavailable, "unhealthy", "disabled", "not_configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.storage, tt.sink, stubCache{Size: 3}, registry, "1.0.0", "test")

			rr := httptest.NewRecorder()
			h.CheckHealth(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.wantCode, rr.Code)

			var health HealthStatus
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &health))
			assert.Equal(t, tt.wantStatus, health.Status)
			assert.Equal(t, tt.wantLogs, health.Services["payment_logs"].Status)
			assert.Equal(t, tt.wantStorage, health.Services["config_storage"].Status)
			assert.Equal(t, []string{"idpay"}, health.Providers)
			assert.Equal(t, "1.0.0", health.Version)
			require.NotNil(t, health.Cache)
			assert.Equal(t, 3, health.Cache.Size)
		})
	}
}
