package middle

import (
	"net"
	"net/http"
	"strings"

	"github.com/mstgnz/idpay/infra/response"
)

// maxBodyBytes bounds request bodies; payment requests are a few hundred bytes
const maxBodyBytes = 1 << 20

// SecurityHeadersMiddleware adds security headers to responses
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// RequestValidationMiddleware checks the content type and size of request bodies.
// The gateway posts callbacks as forms or JSON, so /callback accepts both.
func RequestValidationMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBodyBytes {
				response.Error(w, http.StatusRequestEntityTooLarge, "Request body too large", nil)
				return
			}

			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
				contentType := r.Header.Get("Content-Type")
				isCallback := strings.HasPrefix(r.URL.Path, "/callback")

				switch {
				case isCallback && contentType != "" &&
					!strings.Contains(contentType, "application/json") &&
					!strings.Contains(contentType, "application/x-www-form-urlencoded"):
					response.Error(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json or application/x-www-form-urlencoded", nil)
					return
				case !isCallback && contentType == "":
					response.Error(w, http.StatusBadRequest, "Content-Type header is required", nil)
					return
				case !isCallback && !strings.Contains(contentType, "application/json"):
					response.Error(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
					return
				}

				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetClientIP extracts the real client IP
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "::1" || host == "[::1]" {
		return "127.0.0.1"
	}
	return host
}
