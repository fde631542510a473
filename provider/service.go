package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mstgnz/idpay/infra/logger"
	"github.com/mstgnz/idpay/infra/opensearch"
)

// ConfigSource resolves the stored configuration of a merchant for a provider.
// *config.ProviderConfig satisfies it.
type ConfigSource interface {
	GetMerchantConfig(merchantID, providerName string) (map[string]string, error)
}

var (
	globalProviderCache ProviderCache
	cacheOnce           sync.Once
)

// GetProviderCache returns the process-wide provider cache, swept every 15 minutes
func GetProviderCache() ProviderCache {
	cacheOnce.Do(func() {
		globalProviderCache = NewProviderCache(1000, time.Hour)

		go func() {
			ticker := time.NewTicker(15 * time.Minute)
			defer ticker.Stop()

			for range ticker.C {
				globalProviderCache.Cleanup()
			}
		}()
	})
	return globalProviderCache
}

// PaymentService runs payment operations for merchants through registered providers
type PaymentService struct {
	configs  ConfigSource
	registry *ProviderRegistry
	cache    ProviderCache
	logger   PaymentLogger
}

// ServiceOption customizes a PaymentService
type ServiceOption func(*PaymentService)

// WithRegistry makes the service build providers from registry instead of DefaultRegistry
func WithRegistry(registry *ProviderRegistry) ServiceOption {
	return func(s *PaymentService) { s.registry = registry }
}

// WithCache makes the service keep providers in cache instead of the global cache
func WithCache(cache ProviderCache) ServiceOption {
	return func(s *PaymentService) { s.cache = cache }
}

// NewPaymentService creates a new payment service. A nil logger disables payment logs.
func NewPaymentService(configs ConfigSource, paymentLogger PaymentLogger, opts ...ServiceOption) *PaymentService {
	if paymentLogger == nil {
		paymentLogger = NopPaymentLogger{}
	}

	s := &PaymentService{
		configs:  configs,
		registry: DefaultRegistry,
		logger:   paymentLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = GetProviderCache()
	}

	return s
}

// GetProvider returns an initialized provider for the merchant, reusing a cached instance.
// Instances are cached per configuration, so one built from a configuration that has
// since changed is never handed out again.
func (s *PaymentService) GetProvider(merchantID, providerName string) (PaymentProvider, error) {
	cfg, err := s.configs.GetMerchantConfig(merchantID, providerName)
	if err != nil {
		return nil, err
	}

	environment := cfg["environment"]
	variant := configVariant(cfg)
	if cached := s.cache.Get(merchantID, providerName, variant); cached != nil {
		return cached, nil
	}

	p, err := s.registry.CreateProvider(providerName)
	if err != nil {
		return nil, err
	}
	if err := p.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if err := p.Initialize(cfg); err != nil {
		return nil, err
	}

	s.cache.Set(merchantID, providerName, variant, p)
	logger.Debug("provider initialized", logger.LogContext{
		MerchantID: merchantID,
		Provider:   providerName,
		Fields:     map[string]any{"environment": environment},
	})

	return p, nil
}

// configVariant is the environment followed by a digest of the whole configuration
func configVariant(cfg map[string]string) string {
	h := sha256.New()
	for _, k := range slices.Sorted(maps.Keys(cfg)) {
		fmt.Fprintf(h, "%d:%s=%d:%s;", len(k), k, len(cfg[k]), cfg[k])
	}
	return cfg["environment"] + "-" + hex.EncodeToString(h.Sum(nil)[:8])
}

// InvalidateProvider drops cached instances so the next call picks up changed configuration
func (s *PaymentService) InvalidateProvider(merchantID, providerName string) {
	s.cache.DeleteByMerchantAndProvider(merchantID, providerName)
}

// CacheStats reports the provider cache counters
func (s *PaymentService) CacheStats() CacheStats {
	return s.cache.Stats()
}

// CreatePayment registers a payment with the merchant's provider
func (s *PaymentService) CreatePayment(ctx context.Context, merchantID, providerName string, request CreatePaymentRequest) (*FormattedResponse[CreatePaymentResponse], error) {
	p, err := s.GetProvider(merchantID, providerName)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := p.CreatePayment(ctx, request)
	elapsed := time.Since(start)

	entry := s.newLogEntry(ctx, merchantID, providerName, "Creating Payment", request, elapsed)
	entry.PaymentInfo = opensearch.PaymentInfo{OrderID: request.OrderID, Amount: request.Amount}
	if resp != nil {
		entry.Response.StatusCode = resp.StatusCode
		entry.Response.Body = string(resp.Raw)
		entry.PaymentInfo.PaymentID = resp.Body.ID
	}
	s.record(ctx, entry, err)

	return resp, err
}

// VerifyPayment confirms a payment with the merchant's provider
func (s *PaymentService) VerifyPayment(ctx context.Context, merchantID, providerName string, request VerifyPaymentRequest) (*FormattedResponse[VerifyPaymentResponse], error) {
	p, err := s.GetProvider(merchantID, providerName)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := p.VerifyPayment(ctx, request)
	elapsed := time.Since(start)

	entry := s.newLogEntry(ctx, merchantID, providerName, "Verifying Payment", request, elapsed)
	entry.PaymentInfo = opensearch.PaymentInfo{OrderID: request.OrderID, PaymentID: request.ID}
	if resp != nil {
		entry.Response.StatusCode = resp.StatusCode
		entry.Response.Body = string(resp.Raw)
		entry.PaymentInfo.TrackID = resp.Body.TrackID.String()
		entry.PaymentInfo.Status = strconv.Itoa(int(resp.Body.Status))
		if amount, convErr := strconv.ParseInt(resp.Body.Amount.String(), 10, 64); convErr == nil {
			entry.PaymentInfo.Amount = amount
		}
	}
	s.record(ctx, entry, err)

	return resp, err
}

func (s *PaymentService) newLogEntry(ctx context.Context, merchantID, providerName, action string, request any, elapsed time.Duration) opensearch.PaymentLog {
	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	body, _ := json.Marshal(request)

	return opensearch.PaymentLog{
		Timestamp:  time.Now(),
		MerchantID: merchantID,
		Provider:   providerName,
		Action:     action,
		RequestID:  requestID,
		Request:    opensearch.RequestLog{Body: string(body)},
		Response:   opensearch.ResponseLog{ProcessingTimeMs: elapsed.Milliseconds()},
	}
}

// record writes the payment log and a system log line; failures to log never affect the caller
func (s *PaymentService) record(ctx context.Context, entry opensearch.PaymentLog, callErr error) {
	logCtx := logger.LogContext{
		MerchantID: entry.MerchantID,
		Provider:   entry.Provider,
		RequestID:  entry.RequestID,
		Fields: map[string]any{
			"action":        entry.Action,
			"order_id":      entry.PaymentInfo.OrderID,
			"processing_ms": entry.Response.ProcessingTimeMs,
		},
	}

	if callErr != nil {
		kind, code := DescribeError(callErr)
		entry.Error = &opensearch.ErrorInfo{Kind: kind, Code: code, Message: callErr.Error()}
		var gatewayErr GatewayError
		if entry.Response.StatusCode == 0 && errors.As(callErr, &gatewayErr) {
			entry.Response.StatusCode = gatewayErr.HTTPStatus()
		}
		logCtx.Fields["kind"] = kind
		logger.Warn(fmt.Sprintf("%s failed", entry.Action), logCtx)
	} else {
		logCtx.Fields["status_code"] = entry.Response.StatusCode
		logger.Info(fmt.Sprintf("%s succeeded", entry.Action), logCtx)
	}

	if err := s.logger.LogPaymentRequest(ctx, entry); err != nil {
		logger.Warn("failed to write payment log", logger.LogContext{
			MerchantID: entry.MerchantID,
			Provider:   entry.Provider,
			RequestID:  entry.RequestID,
			Fields:     map[string]any{"error": err.Error()},
		})
	}
}
