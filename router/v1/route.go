package v1

import (
	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/idpay/handler"
)

// Handlers groups the handlers served under /v1. Routes of a nil handler are not
// registered, e.g. Logs when payment logs are not indexed.
type Handlers struct {
	Payments *handler.PaymentHandler
	Configs  *handler.ConfigHandler
	Logs     *handler.LogsHandler
}

// Routes registers all API routes
func Routes(r chi.Router, h Handlers) {
	if h.Payments != nil {
		r.Route("/payments", func(r chi.Router) {
			r.Post("/", h.Payments.CreatePayment)
			r.Post("/verify", h.Payments.VerifyPayment)
		})
	}

	r.Route("/error-codes", func(r chi.Router) {
		r.Get("/", handler.ListErrorCodes)
		r.Get("/{code}", handler.GetErrorCode)
	})

	if h.Configs != nil {
		r.Route("/config/{provider}", func(r chi.Router) {
			r.Put("/", h.Configs.SetConfig)
			r.Get("/", h.Configs.GetConfig)
			r.Delete("/", h.Configs.DeleteConfig)
		})
	}

	if h.Logs != nil {
		r.Get("/logs/errors", h.Logs.GetErrorLogs)
		r.Get("/logs/{orderID}", h.Logs.GetOrderLogs)
		r.Get("/stats", h.Logs.GetStats)
	}
}
