package opensearch

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_LogPaymentRequest(t *testing.T) {
	f := newFakeOpenSearch(t)
	logger := NewLogger(newTestClient(t, f, true))

	err := logger.LogPaymentRequest(context.Background(), PaymentLog{
		MerchantID: "SHOP1",
		Provider:   "idpay",
		Action:     "Creating Payment",
		Request: RequestLog{
			Body: `{"order_id":"101","amount":10000,"phone":"09120000000","mail":"a@b.ir"}`,
		},
		Response: ResponseLog{
			StatusCode:       201,
			Body:             `{"id":"d2e353189823079e1e4181772cff5292","link":"https://idpay.ir/p/ws-sandbox/d2e353189823079e1e4181772cff5292"}`,
			ProcessingTimeMs: 42,
		},
		PaymentInfo: PaymentInfo{OrderID: "101", Amount: 10000},
	})
	require.NoError(t, err)

	indexed := f.recorded(http.MethodPost, "/idpay-shop1-idpay-logs/_doc")
	require.Len(t, indexed, 1)

	var doc PaymentLog
	require.NoError(t, json.Unmarshal([]byte(indexed[0].Body), &doc))
	assert.NotEmpty(t, doc.RequestID, "request id should be generated")
	assert.False(t, doc.Timestamp.IsZero(), "timestamp should be set")
	assert.Equal(t, "Creating Payment", doc.Action)
	assert.NotContains(t, doc.Request.Body, "09120000000")
	assert.NotContains(t, doc.Request.Body, "a@b.ir")
	assert.Contains(t, doc.Request.Body, `"order_id":"101"`)
	assert.Nil(t, doc.Error)
}

func TestLogger_DisabledLogging(t *testing.T) {
	f := newFakeOpenSearch(t)
	logger := NewLogger(newTestClient(t, f, false))
	ctx := context.Background()

	assert.NoError(t, logger.LogPaymentRequest(ctx, PaymentLog{Provider: "idpay"}))
	assert.NoError(t, logger.LogSystemEvent(ctx, map[string]string{"message": "ignored"}))

	_, err := logger.SearchLogs(ctx, "", "idpay", map[string]any{"match_all": map[string]any{}})
	assert.ErrorIs(t, err, ErrLoggingDisabled)

	_, err = logger.GetProviderStats(ctx, "", "idpay", 24)
	assert.ErrorIs(t, err, ErrLoggingDisabled)

	assert.Empty(t, f.recorded(http.MethodPost, "/_doc"))
}

func TestLogger_LogSystemEvent(t *testing.T) {
	f := newFakeOpenSearch(t)
	logger := NewLogger(newTestClient(t, f, true))

	require.NoError(t, logger.LogSystemEvent(context.Background(), map[string]string{"message": "started"}))
	assert.Len(t, f.recorded(http.MethodPost, "/idpay-system-logs/_doc"), 1)
}

func TestLogger_GetOrderLogs(t *testing.T) {
	f := newFakeOpenSearch(t)
	f.search = `{"hits":{"hits":[
		{"_source":{"provider":"idpay","action":"Verifying Payment","payment_info":{"order_id":"101"}}},
		{"_source":{"provider":"idpay","action":"Creating Payment","payment_info":{"order_id":"101"}}}
	]}}`
	logger := NewLogger(newTestClient(t, f, true))

	logs, err := logger.GetOrderLogs(context.Background(), "SHOP1", "idpay", "101")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Verifying Payment", logs[0].Action)

	searches := f.recorded(http.MethodPost, "/idpay-shop1-idpay-logs/_search")
	require.Len(t, searches, 1)
	assert.Contains(t, searches[0].Body, `"payment_info.order_id":"101"`)
}

func TestLogger_GetRecentErrorLogs(t *testing.T) {
	f := newFakeOpenSearch(t)
	f.search = `{"hits":{"hits":[{"_source":{"provider":"idpay","error":{"kind":"rejected_known_code","code":"34"}}}]}}`
	logger := NewLogger(newTestClient(t, f, true))

	logs, err := logger.GetRecentErrorLogs(context.Background(), "", "idpay", 6)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].Error)
	assert.Equal(t, "34", logs[0].Error.Code)
}

func TestLogger_GetProviderStats(t *testing.T) {
	f := newFakeOpenSearch(t)
	f.search = `{"aggregations":{"avg_processing_time":{"value":12.5}}}`
	logger := NewLogger(newTestClient(t, f, true))

	stats, err := logger.GetProviderStats(context.Background(), "", "idpay", 24)
	require.NoError(t, err)
	assert.Contains(t, stats, "aggregations")
}

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		contains    []string
		notContains []string
	}{
		{
			name:        "json_api_key_header",
			input:       `{"X-API-KEY":"6a7f99eb-7c20-4412-a972-6dfb7cd253a4","X-SANDBOX":"1"}`,
			contains:    []string{`"x-api-key":"***REDACTED***"`, `"X-SANDBOX":"1"`},
			notContains: []string{"6a7f99eb"},
		},
		{
			name:        "payer_contact",
			input:       `{"name":"Ali","phone":"09382198592","mail":"my@site.com"}`,
			contains:    []string{`"name":"Ali"`, `"phone":"***REDACTED***"`},
			notContains: []string{"09382198592", "my@site.com"},
		},
		{
			name:        "card_numbers",
			input:       `{"card_no":"123456******1234","hashed_card_no":"E59FA6241C94B8836E3D03120DF33E80FD988888BBA0A122240C2E7D23B48295"}`,
			notContains: []string{"123456******1234", "E59FA6241C94"},
		},
		{
			name:        "query_string",
			input:       "api_key=secret&order_id=101",
			contains:    []string{"api_key=***REDACTED***", "order_id=101"},
			notContains: []string{"secret"},
		},
		{
			name:     "no_sensitive_data",
			input:    `{"order_id":"101","amount":10000}`,
			contains: []string{`{"order_id":"101","amount":10000}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeForLog(tt.input)
			for _, s := range tt.contains {
				assert.Contains(t, result, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, result, s)
			}
		})
	}
}
