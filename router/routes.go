package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mstgnz/idpay/handler"
	"github.com/mstgnz/idpay/infra/middle"
	"github.com/mstgnz/idpay/infra/response"
	v1 "github.com/mstgnz/idpay/router/v1"

	// Import for side-effect registration
	_ "github.com/mstgnz/idpay/provider/idpay"
)

// Options wires the handlers and settings of the HTTP facade
type Options struct {
	// APIKey guards /v1 with "Authorization: Bearer <APIKey>"
	APIKey      string
	RateLimiter *middle.RateLimiter
	Health      *handler.HealthHandler
	V1          v1.Handlers
}

// New builds the service router
func New(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middle.RequestIDMiddleware())
	r.Use(middleware.RealIP)
	r.Use(middle.RequestLoggingMiddleware())
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middleware.Timeout(90 * time.Second))
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.RequestValidationMiddleware())
	if opts.RateLimiter != nil {
		r.Use(middle.RateLimitMiddleware(opts.RateLimiter))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Merchant-ID", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Preflight cache time (second)
	}))

	if opts.Health != nil {
		r.Get("/health", opts.Health.CheckHealth)
	}

	// The gateway returns the payer here, so no auth
	if opts.V1.Payments != nil {
		r.HandleFunc("/callback/idpay", opts.V1.Payments.HandleCallback)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middle.AuthMiddleware(opts.APIKey))
		v1.Routes(r, opts.V1)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found", nil)
	})

	return r
}
