package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListErrorCodes(t *testing.T) {
	rr := httptest.NewRecorder()
	ListErrorCodes(rr, httptest.NewRequest(http.MethodGet, "/v1/error-codes", nil))

	assert.Equal(t, http.StatusOK, rr.Code)

	var entries []ErrorCodeEntry
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &entries))
	require.Len(t, entries, 23)
	assert.Equal(t, "11", entries[0].Code)
	assert.Equal(t, "54", entries[len(entries)-1].Code)
	assert.Equal(t, 403, entries[0].StatusCode)
}

func TestGetErrorCode(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/v1/error-codes/{code}", GetErrorCode)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/error-codes/34", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	var entry ErrorCodeEntry
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &entry))
	assert.Equal(t, 406, entry.StatusCode)
	assert.Contains(t, entry.PersianMessage, "{min-amount}")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/error-codes/99", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
