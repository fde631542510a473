package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/idpay/infra/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfigRouter(t *testing.T) (http.Handler, *config.ProviderConfig, *mockPaymentService) {
	t.Helper()

	storage, err := config.NewSQLiteStorage(filepath.Join(t.TempDir(), "config.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	store := config.NewProviderConfig(storage)
	svc := &mockPaymentService{}
	h := NewConfigHandler(store, svc, nil, validator.New())

	r := chi.NewRouter()
	r.Route("/v1/config/{provider}", func(r chi.Router) {
		r.Put("/", h.SetConfig)
		r.Get("/", h.GetConfig)
		r.Delete("/", h.DeleteConfig)
	})
	return r, store, svc
}

func TestConfigHandler_Lifecycle(t *testing.T) {
	router, store, svc := newConfigRouter(t)
	headers := map[string]string{MerchantHeader: "SHOP1"}

	req := postJSON("/v1/config/idpay", `{"apiKey":"`+testAPIKey+`","environment":"sandbox","timeoutMs":5000}`, headers)
	req.Method = http.MethodPut
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var saved map[string]string
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &saved))
	assert.Equal(t, "****53a4", saved["apiKey"])
	assert.Equal(t, "5000", saved["timeout"])
	assert.Equal(t, []string{"SHOP1/idpay"}, svc.invalidated)

	stored, err := store.GetMerchantConfig("SHOP1", "idpay")
	require.NoError(t, err)
	assert.Equal(t, testAPIKey, stored["apiKey"])
	assert.Equal(t, "sandbox", stored["environment"])

	getReq := httptest.NewRequest(http.MethodGet, "/v1/config/idpay", nil)
	getReq.Header.Set(MerchantHeader, "SHOP1")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, getReq)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), testAPIKey)

	delReq := httptest.NewRequest(http.MethodDelete, "/v1/config/idpay", nil)
	delReq.Header.Set(MerchantHeader, "SHOP1")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, delReq)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, getReq)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, delReq)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestConfigHandler_SetConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		body     string
		want     int
	}{
		{"malformed json", "idpay", `{"apiKey":`, http.StatusBadRequest},
		{"missing api key", "idpay", `{"environment":"sandbox"}`, http.StatusBadRequest},
		{"short api key", "idpay", `{"apiKey":"short"}`, http.StatusBadRequest},
		{"bad environment", "idpay", `{"apiKey":"` + testAPIKey + `","environment":"staging"}`, http.StatusBadRequest},
		{"bad proxy", "idpay", `{"apiKey":"` + testAPIKey + `","proxy":"not a url"}`, http.StatusBadRequest},
		{"unknown provider", "zarinpal", `{"apiKey":"` + testAPIKey + `"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _, svc := newConfigRouter(t)

			req := postJSON("/v1/config/"+tt.provider, tt.body, nil)
			req.Method = http.MethodPut
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			assert.Empty(t, svc.invalidated)
		})
	}
}

func TestMaskConfig(t *testing.T) {
	cfg := map[string]string{"apiKey": "abcd", "environment": "sandbox"}
	assert.Equal(t, cfg, maskConfig(cfg))

	masked := maskConfig(map[string]string{"apiKey": "123456789"})
	assert.Equal(t, "****6789", masked["apiKey"])
}
