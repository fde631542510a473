package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/idpay/infra/config"
	"github.com/mstgnz/idpay/infra/response"
	"github.com/mstgnz/idpay/provider"
	"github.com/mstgnz/idpay/provider/idpay"
)

const (
	// MerchantHeader selects the merchant whose configuration a request uses
	MerchantHeader = "X-Merchant-ID"

	defaultProvider = "idpay"

	// gateway calls are bounded by the client timeout; this only caps the request as a whole
	requestTimeout = 60 * time.Second
)

// PaymentServiceInterface defines the interface for payment operations
type PaymentServiceInterface interface {
	CreatePayment(ctx context.Context, merchantID, providerName string, request provider.CreatePaymentRequest) (*provider.FormattedResponse[provider.CreatePaymentResponse], error)
	VerifyPayment(ctx context.Context, merchantID, providerName string, request provider.VerifyPaymentRequest) (*provider.FormattedResponse[provider.VerifyPaymentResponse], error)
	InvalidateProvider(merchantID, providerName string)
}

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	paymentService PaymentServiceInterface
	validate       *validator.Validate
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService PaymentServiceInterface, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validate:       validate,
	}
}

// VerifyResult is returned by verification endpoints
type VerifyResult struct {
	*provider.FormattedResponse[provider.VerifyPaymentResponse]
	PaymentStatus provider.PaymentStatus `json:"paymentStatus"`
}

// CreatePayment handles POST /v1/payments
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req provider.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	resp, err := h.paymentService.CreatePayment(ctx, merchantFromRequest(r), providerFromRequest(r), req)
	if err != nil {
		writeServiceError(w, "Payment creation failed", err)
		return
	}

	response.Success(w, http.StatusCreated, "Payment created", resp)
}

// VerifyPayment handles POST /v1/payments/verify
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req provider.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	resp, err := h.paymentService.VerifyPayment(ctx, merchantFromRequest(r), providerFromRequest(r), req)
	if err != nil {
		writeServiceError(w, "Payment verification failed", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment verified", VerifyResult{
		FormattedResponse: resp,
		PaymentStatus:     idpay.TransactionStatusOf(resp.Body),
	})
}

// HandleCallback handles the payer's return from the gateway. The gateway sends
// status, track_id, id and order_id as a form or JSON POST or as GET query parameters; the
// merchant is carried in the "merchant" query parameter of the callback URL.
// Only status 10 (paid, waiting for verification) triggers a verify call.
func (h *PaymentHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	values, err := callbackValues(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid callback payload", err)
		return
	}

	cb, err := idpay.ParseCallback(values)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid callback payload", err)
		return
	}

	merchantID := r.URL.Query().Get("merchant")
	if merchantID == "" {
		merchantID = config.DefaultMerchantID
	}

	if !cb.ReadyToVerify() {
		status, _ := idpay.LookupTransactionStatus(cb.Status)
		paymentStatus := provider.StatusFailed
		if status.Status != "" {
			paymentStatus = status.Status
		}
		response.Success(w, http.StatusOK, "Payment was not completed", map[string]any{
			"callback":      cb,
			"paymentStatus": paymentStatus,
			"description":   status.PersianMessage,
		})
		return
	}

	resp, err := h.paymentService.VerifyPayment(ctx, merchantID, defaultProvider, cb.VerifyRequest())
	if err != nil {
		writeServiceError(w, "Payment verification failed", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment verified", VerifyResult{
		FormattedResponse: resp,
		PaymentStatus:     idpay.TransactionStatusOf(resp.Body),
	})
}

// callbackValues collects the callback fields from a form or JSON body, falling back
// to query parameters for fields the body does not carry
func callbackValues(r *http.Request) (map[string]string, error) {
	values := make(map[string]string)

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]provider.Text
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, err
		}
		for key, v := range body {
			values[key] = v.String()
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}

	// r.Form holds the body values first, then the query values; empty for JSON bodies
	for key, v := range r.Form {
		if _, ok := values[key]; !ok && len(v) > 0 {
			values[key] = v[0]
		}
	}
	for key, v := range r.URL.Query() {
		if _, ok := values[key]; !ok && len(v) > 0 {
			values[key] = v[0]
		}
	}

	return values, nil
}

// writeServiceError maps a payment service error onto an HTTP status
func writeServiceError(w http.ResponseWriter, message string, err error) {
	kind, code := provider.DescribeError(err)

	var idpayErr *idpay.Error
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		response.GatewayError(w, http.StatusNotFound, "Merchant is not configured", err, "not_configured", "", nil)
	case errors.As(err, &idpayErr) && idpayErr.Rejected():
		status := idpayErr.StatusCode
		if status < 400 || status > 499 {
			status = http.StatusBadRequest
		}
		var body any
		if json.Valid(idpayErr.Body) {
			body = idpayErr.Body
		}
		response.GatewayError(w, status, message, err, kind, code, body)
	case errors.Is(err, idpay.ErrInvalidConfig):
		response.GatewayError(w, http.StatusInternalServerError, message, err, kind, code, nil)
	case errors.Is(err, provider.ErrTimeout):
		response.GatewayError(w, http.StatusGatewayTimeout, message, err, kind, code, nil)
	case errors.Is(err, provider.ErrTransport):
		response.GatewayError(w, http.StatusBadGateway, message, err, kind, code, nil)
	default:
		response.GatewayError(w, http.StatusInternalServerError, message, err, kind, code, nil)
	}
}

func merchantFromRequest(r *http.Request) string {
	if merchantID := r.Header.Get(MerchantHeader); merchantID != "" {
		return merchantID
	}
	return config.DefaultMerchantID
}

func providerFromRequest(r *http.Request) string {
	if name := chi.URLParam(r, "provider"); name != "" {
		return name
	}
	return defaultProvider
}
