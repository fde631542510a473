package handler

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/mstgnz/idpay/infra/response"
	"github.com/mstgnz/idpay/provider"
)

// StatsSource reports storage statistics; *config.SQLiteStorage satisfies it
type StatsSource interface {
	GetStats() (map[string]any, error)
}

// LogSink reports whether payment logs are indexed; *opensearch.Client satisfies it
type LogSink interface {
	IsEnabled() bool
}

// CacheReporter exposes provider cache counters; *provider.PaymentService satisfies it
type CacheReporter interface {
	CacheStats() provider.CacheStats
}

// HealthHandler handles health check requests
type HealthHandler struct {
	storage     StatsSource
	logSink     LogSink
	cache       CacheReporter
	registry    *provider.ProviderRegistry
	version     string
	environment string
	startTime   time.Time
}

// HealthStatus represents overall system health
type HealthStatus struct {
	Status      string                    `json:"status"`
	Version     string                    `json:"version"`
	Timestamp   time.Time                 `json:"timestamp"`
	Uptime      string                    `json:"uptime"`
	Environment string                    `json:"environment"`
	Providers   []string                  `json:"providers"`
	Services    map[string]*ServiceHealth `json:"services"`
	Cache       *provider.CacheStats      `json:"cache,omitempty"`
	GoRoutines  int                       `json:"goroutines"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string         `json:"status"`
	Healthy bool           `json:"healthy"`
	Details map[string]any `json:"details,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// NewHealthHandler creates a new health handler. Any dependency may be nil.
func NewHealthHandler(storage StatsSource, logSink LogSink, cache CacheReporter, registry *provider.ProviderRegistry, version, environment string) *HealthHandler {
	if registry == nil {
		registry = provider.DefaultRegistry
	}
	return &HealthHandler{
		storage:     storage,
		logSink:     logSink,
		cache:       cache,
		registry:    registry,
		version:     version,
		environment: environment,
		startTime:   time.Now(),
	}
}

// CheckHealth handles GET /health. Only configuration storage decides the status;
// payment log indexing is optional.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	health := &HealthStatus{
		Version:     h.version,
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Environment: h.environment,
		Providers:   h.registry.GetAvailableProviders(),
		Services: map[string]*ServiceHealth{
			"config_storage": h.checkStorage(),
			"payment_logs":   h.checkLogSink(),
		},
		GoRoutines: runtime.NumGoroutine(),
	}
	if h.cache != nil {
		stats := h.cache.CacheStats()
		health.Cache = &stats
	}

	health.Status = "healthy"
	if !health.Services["config_storage"].Healthy {
		health.Status = "unhealthy"
	}

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	_ = response.WriteJSON(w, statusCode, response.Response{
		Code:    statusCode,
		Success: health.Status != "unhealthy",
		Message: fmt.Sprintf("Service is %s", health.Status),
		Data:    health,
	})
}

func (h *HealthHandler) checkStorage() *ServiceHealth {
	if h.storage == nil {
		return &ServiceHealth{Status: "not_configured", Healthy: false}
	}

	stats, err := h.storage.GetStats()
	if err != nil {
		return &ServiceHealth{Status: "unhealthy", Healthy: false, Error: err.Error()}
	}
	return &ServiceHealth{Status: "healthy", Healthy: true, Details: stats}
}

func (h *HealthHandler) checkLogSink() *ServiceHealth {
	if h.logSink == nil || !h.logSink.IsEnabled() {
		return &ServiceHealth{Status: "disabled", Healthy: true}
	}
	return &ServiceHealth{Status: "enabled", Healthy: true}
}
