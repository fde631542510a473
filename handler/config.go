package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/idpay/infra/config"
	"github.com/mstgnz/idpay/infra/response"
	"github.com/mstgnz/idpay/provider"
)

// ConfigStore persists merchant configurations; *config.ProviderConfig satisfies it
type ConfigStore interface {
	SetMerchantConfig(merchantID, providerName string, cfg map[string]string) error
	GetMerchantConfig(merchantID, providerName string) (map[string]string, error)
	DeleteMerchantConfig(merchantID, providerName string) error
}

// ConfigHandler handles configuration related HTTP requests
type ConfigHandler struct {
	store          ConfigStore
	paymentService PaymentServiceInterface
	registry       *provider.ProviderRegistry
	validate       *validator.Validate
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(store ConfigStore, paymentService PaymentServiceInterface, registry *provider.ProviderRegistry, validate *validator.Validate) *ConfigHandler {
	if registry == nil {
		registry = provider.DefaultRegistry
	}
	return &ConfigHandler{
		store:          store,
		paymentService: paymentService,
		registry:       registry,
		validate:       validate,
	}
}

// SetConfigRequest carries a merchant's gateway settings
type SetConfigRequest struct {
	APIKey      string `json:"apiKey" validate:"required"`
	Environment string `json:"environment" validate:"omitempty,oneof=sandbox test production"`
	TimeoutMs   int    `json:"timeoutMs" validate:"gte=0"`
	Proxy       string `json:"proxy,omitempty" validate:"omitempty,url"`
}

func (req SetConfigRequest) toMap() map[string]string {
	cfg := map[string]string{
		"apiKey":      req.APIKey,
		"environment": req.Environment,
	}
	if cfg["environment"] == "" {
		cfg["environment"] = "production"
	}
	if req.TimeoutMs > 0 {
		cfg["timeout"] = strconv.Itoa(req.TimeoutMs)
	}
	if req.Proxy != "" {
		cfg["proxy"] = req.Proxy
	}
	return cfg
}

// SetConfig handles PUT /v1/config/{provider}
func (h *ConfigHandler) SetConfig(w http.ResponseWriter, r *http.Request) {
	merchantID := merchantFromRequest(r)
	providerName := providerFromRequest(r)

	var req SetConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	p, err := h.registry.CreateProvider(providerName)
	if err != nil {
		response.Error(w, http.StatusNotFound, "Unknown provider", err)
		return
	}

	cfg := req.toMap()
	if err := p.ValidateConfig(cfg); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid provider configuration", err)
		return
	}

	if err := h.store.SetMerchantConfig(merchantID, providerName, cfg); err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to save configuration", err)
		return
	}
	h.paymentService.InvalidateProvider(merchantID, providerName)

	response.Success(w, http.StatusOK, "Configuration saved", maskConfig(cfg))
}

// GetConfig handles GET /v1/config/{provider}
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.GetMerchantConfig(merchantFromRequest(r), providerFromRequest(r))
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			response.Error(w, http.StatusNotFound, "Configuration not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "Failed to load configuration", err)
		return
	}

	response.Success(w, http.StatusOK, "Configuration retrieved", maskConfig(cfg))
}

// DeleteConfig handles DELETE /v1/config/{provider}
func (h *ConfigHandler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	merchantID := merchantFromRequest(r)
	providerName := providerFromRequest(r)

	if err := h.store.DeleteMerchantConfig(merchantID, providerName); err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			response.Error(w, http.StatusNotFound, "Configuration not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "Failed to delete configuration", err)
		return
	}
	h.paymentService.InvalidateProvider(merchantID, providerName)

	response.Success(w, http.StatusOK, "Configuration deleted", nil)
}

// maskConfig hides all but the last four characters of the API key
func maskConfig(cfg map[string]string) map[string]string {
	masked := make(map[string]string, len(cfg))
	for k, v := range cfg {
		masked[k] = v
	}
	if key := []rune(masked["apiKey"]); len(key) > 4 {
		masked["apiKey"] = "****" + string(key[len(key)-4:])
	}
	return masked
}
