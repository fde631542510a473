package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/idpay/infra/opensearch"
	"github.com/mstgnz/idpay/infra/response"
)

// LogSearcher queries indexed payment logs; *opensearch.Logger satisfies it
type LogSearcher interface {
	GetOrderLogs(ctx context.Context, merchantID, provider, orderID string) ([]opensearch.PaymentLog, error)
	GetRecentErrorLogs(ctx context.Context, merchantID, provider string, hours int) ([]opensearch.PaymentLog, error)
	GetProviderStats(ctx context.Context, merchantID, provider string, hours int) (map[string]any, error)
}

// LogsHandler handles logs related HTTP requests
type LogsHandler struct {
	logs LogSearcher
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(logs LogSearcher) *LogsHandler {
	return &LogsHandler{logs: logs}
}

// GetOrderLogs handles GET /v1/logs/{orderID}
func (h *LogsHandler) GetOrderLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	merchantID := merchantFromRequest(r)
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		response.Error(w, http.StatusBadRequest, "Order ID is required", nil)
		return
	}

	logs, err := h.logs.GetOrderLogs(ctx, merchantID, defaultProvider, orderID)
	if err != nil {
		writeLogError(w, "Failed to retrieve order logs", err)
		return
	}

	response.Success(w, http.StatusOK, "Logs retrieved successfully", map[string]any{
		"merchantId": merchantID,
		"orderId":    orderID,
		"count":      len(logs),
		"logs":       logs,
	})
}

// GetErrorLogs handles GET /v1/logs/errors?hours=24
func (h *LogsHandler) GetErrorLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	merchantID := merchantFromRequest(r)
	hours := hoursFromQuery(r)

	logs, err := h.logs.GetRecentErrorLogs(ctx, merchantID, defaultProvider, hours)
	if err != nil {
		writeLogError(w, "Failed to retrieve error logs", err)
		return
	}

	response.Success(w, http.StatusOK, "Error logs retrieved successfully", map[string]any{
		"merchantId": merchantID,
		"hours":      hours,
		"count":      len(logs),
		"logs":       logs,
	})
}

// GetStats handles GET /v1/stats?hours=24
func (h *LogsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	merchantID := merchantFromRequest(r)
	hours := hoursFromQuery(r)

	stats, err := h.logs.GetProviderStats(ctx, merchantID, defaultProvider, hours)
	if err != nil {
		writeLogError(w, "Failed to retrieve statistics", err)
		return
	}

	response.Success(w, http.StatusOK, "Statistics retrieved successfully", map[string]any{
		"merchantId": merchantID,
		"hours":      hours,
		"stats":      stats,
	})
}

func writeLogError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, opensearch.ErrLoggingDisabled) {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}
	response.Error(w, http.StatusInternalServerError, message, err)
}

// hoursFromQuery reads ?hours=, defaulting to 24 and capped at 7 days
func hoursFromQuery(r *http.Request) int {
	hours := 24
	if h, err := strconv.Atoi(r.URL.Query().Get("hours")); err == nil && h > 0 && h <= 168 {
		hours = h
	}
	return hours
}
