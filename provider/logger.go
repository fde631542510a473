package provider

import (
	"context"

	"github.com/mstgnz/idpay/infra/opensearch"
)

// PaymentLogger records gateway calls made through PaymentService.
// *opensearch.Logger satisfies it.
type PaymentLogger interface {
	LogPaymentRequest(ctx context.Context, log opensearch.PaymentLog) error
}

// NopPaymentLogger discards payment logs
type NopPaymentLogger struct{}

func (NopPaymentLogger) LogPaymentRequest(context.Context, opensearch.PaymentLog) error {
	return nil
}

type requestIDKey struct{}

// WithRequestID attaches a request id that payment logs are recorded under
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id attached by WithRequestID
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
