package handler

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/idpay/infra/response"
	"github.com/mstgnz/idpay/provider/idpay"
)

// ErrorCodeEntry is one row of the gateway error code table
type ErrorCodeEntry struct {
	Code           string `json:"code"`
	StatusCode     int    `json:"statusCode"`
	PersianMessage string `json:"persianMessage"`
}

// ListErrorCodes handles GET /v1/error-codes
func ListErrorCodes(w http.ResponseWriter, r *http.Request) {
	codes := idpay.ErrorCodes()

	entries := make([]ErrorCodeEntry, 0, len(codes))
	for code, info := range codes {
		entries = append(entries, ErrorCodeEntry{Code: code, StatusCode: info.StatusCode, PersianMessage: info.PersianMessage})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, _ := strconv.Atoi(entries[i].Code)
		b, _ := strconv.Atoi(entries[j].Code)
		return a < b
	})

	response.Success(w, http.StatusOK, "Error codes retrieved", entries)
}

// GetErrorCode handles GET /v1/error-codes/{code}
func GetErrorCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	info, ok := idpay.LookupErrorCode(code)
	if !ok {
		response.Error(w, http.StatusNotFound, "Unknown error code", nil)
		return
	}

	response.Success(w, http.StatusOK, "Error code retrieved", ErrorCodeEntry{
		Code:           code,
		StatusCode:     info.StatusCode,
		PersianMessage: info.PersianMessage,
	})
}
