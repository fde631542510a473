package middle

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/mstgnz/idpay/infra/logger"
	"github.com/mstgnz/idpay/infra/response"
	"github.com/mstgnz/idpay/provider"
)

// PanicRecoveryMiddleware handles panics and converts them to HTTP 500 errors
func PanicRecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("Panic recovered", fmt.Errorf("%v", rec), logger.LogContext{
					RequestID: provider.RequestIDFromContext(r.Context()),
					Fields: map[string]any{
						"method": r.Method,
						"url":    r.URL.Path,
						"stack":  string(debug.Stack()),
					},
				})

				w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
				response.Error(w, http.StatusInternalServerError, "Internal server error", fmt.Errorf("an unexpected error occurred"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
