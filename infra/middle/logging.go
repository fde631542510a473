package middle

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mstgnz/idpay/infra/logger"
	"github.com/mstgnz/idpay/provider"
)

const requestIDHeader = "X-Request-ID"

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

// RequestIDMiddleware attaches a request id to the request context and the response.
// A caller supplied X-Request-ID is kept; otherwise a new UUID is generated.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" || len(requestID) > 64 {
				requestID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, requestID)
			next.ServeHTTP(w, r.WithContext(provider.WithRequestID(r.Context(), requestID)))
		})
	}
}

// RequestLoggingMiddleware writes one system log line per request
func RequestLoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			ctx := logger.LogContext{
				RequestID: provider.RequestIDFromContext(r.Context()),
				Fields: map[string]any{
					"method":        r.Method,
					"path":          r.URL.Path,
					"status":        rw.statusCode,
					"bytes":         rw.written,
					"client_ip":     GetClientIP(r),
					"processing_ms": time.Since(start).Milliseconds(),
				},
			}

			switch {
			case rw.statusCode >= http.StatusInternalServerError:
				logger.Warn("Request failed", ctx)
			default:
				logger.Info("Request handled", ctx)
			}
		})
	}
}
