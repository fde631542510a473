package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// ErrLoggingDisabled is returned by read operations when OpenSearch logging is off
var ErrLoggingDisabled = errors.New("logging is disabled")

// PaymentLog represents a structured payment log entry
type PaymentLog struct {
	Timestamp   time.Time   `json:"timestamp"`
	MerchantID  string      `json:"merchant_id,omitempty"`
	Provider    string      `json:"provider"`
	Action      string      `json:"action"`
	RequestID   string      `json:"request_id"`
	ClientIP    string      `json:"client_ip,omitempty"`
	Request     RequestLog  `json:"request"`
	Response    ResponseLog `json:"response"`
	PaymentInfo PaymentInfo `json:"payment_info,omitempty"`
	Error       *ErrorInfo  `json:"error,omitempty"`
}

// RequestLog represents request details
type RequestLog struct {
	Body string `json:"body,omitempty"`
}

// ResponseLog represents response details
type ResponseLog struct {
	StatusCode       int    `json:"status_code"`
	Body             string `json:"body,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// PaymentInfo represents payment-specific information
type PaymentInfo struct {
	PaymentID string `json:"payment_id,omitempty"`
	OrderID   string `json:"order_id,omitempty"`
	TrackID   string `json:"track_id,omitempty"`
	Amount    int64  `json:"amount,omitempty"`
	Status    string `json:"status,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Kind    string `json:"kind,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Logger handles OpenSearch logging operations
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// LogPaymentRequest indexes a payment log under the merchant's provider index
func (l *Logger) LogPaymentRequest(ctx context.Context, log PaymentLog) error {
	if !l.client.IsEnabled() {
		return nil
	}

	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}
	if log.RequestID == "" {
		log.RequestID = uuid.New().String()
	}
	log.Request.Body = SanitizeForLog(log.Request.Body)
	log.Response.Body = SanitizeForLog(log.Response.Body)

	return l.index(ctx, l.client.GetLogIndexName(log.MerchantID, log.Provider), log)
}

// LogSystemEvent indexes a system log document
func (l *Logger) LogSystemEvent(ctx context.Context, log any) error {
	if !l.client.IsEnabled() {
		return nil
	}

	return l.index(ctx, systemLogsIndex, log)
}

func (l *Logger) index(ctx context.Context, indexName string, doc any) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader(docJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}

// SearchLogs searches payment logs of a merchant's provider, newest first
func (l *Logger) SearchLogs(ctx context.Context, merchantID, provider string, query map[string]any) ([]PaymentLog, error) {
	if !l.client.IsEnabled() {
		return nil, ErrLoggingDisabled
	}

	searchQuery := map[string]any{
		"query": query,
		"sort": []map[string]any{
			{"timestamp": map[string]string{"order": "desc"}},
		},
		"size": 100,
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source PaymentLog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := l.search(ctx, l.client.GetLogIndexName(merchantID, provider), searchQuery, &searchResult); err != nil {
		return nil, err
	}

	logs := make([]PaymentLog, len(searchResult.Hits.Hits))
	for i, hit := range searchResult.Hits.Hits {
		logs[i] = hit.Source
	}

	return logs, nil
}

// GetOrderLogs retrieves the logs recorded for an order id
func (l *Logger) GetOrderLogs(ctx context.Context, merchantID, provider, orderID string) ([]PaymentLog, error) {
	query := map[string]any{
		"term": map[string]any{
			"payment_info.order_id": orderID,
		},
	}

	return l.SearchLogs(ctx, merchantID, provider, query)
}

// GetRecentErrorLogs retrieves logs with an error recorded during the last hours
func (l *Logger) GetRecentErrorLogs(ctx context.Context, merchantID, provider string, hours int) ([]PaymentLog, error) {
	query := map[string]any{
		"bool": map[string]any{
			"must": []map[string]any{
				{"range": map[string]any{"timestamp": map[string]any{"gte": fmt.Sprintf("now-%dh", hours)}}},
				{"exists": map[string]any{"field": "error.kind"}},
			},
		},
	}

	return l.SearchLogs(ctx, merchantID, provider, query)
}

// GetProviderStats aggregates request counts, error kinds and latency for the last hours
func (l *Logger) GetProviderStats(ctx context.Context, merchantID, provider string, hours int) (map[string]any, error) {
	if !l.client.IsEnabled() {
		return nil, ErrLoggingDisabled
	}

	aggQuery := map[string]any{
		"query": map[string]any{
			"range": map[string]any{"timestamp": map[string]any{"gte": fmt.Sprintf("now-%dh", hours)}},
		},
		"aggs": map[string]any{
			"by_action":           map[string]any{"terms": map[string]any{"field": "action"}},
			"error_kinds":         map[string]any{"terms": map[string]any{"field": "error.kind"}},
			"error_codes":         map[string]any{"terms": map[string]any{"field": "error.code", "size": 25}},
			"avg_processing_time": map[string]any{"avg": map[string]any{"field": "response.processing_time_ms"}},
		},
		"size": 0,
	}

	var result map[string]any
	if err := l.search(ctx, l.client.GetLogIndexName(merchantID, provider), aggQuery, &result); err != nil {
		return nil, err
	}

	return result, nil
}

func (l *Logger) search(ctx context.Context, indexName string, query map[string]any, out any) error {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{indexName},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch search error: %s", res.String())
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode search results: %w", err)
	}

	return nil
}

var sensitiveFields = []string{
	"apiKey", "api_key", "x-api-key", "authorization", "token", "password",
	"phone", "phoneNumber", "mail", "emailAddress", "card_no", "hashed_card_no",
}

var sensitivePatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(sensitiveFields)*2)
	for _, field := range sensitiveFields {
		quoted := regexp.QuoteMeta(field)
		patterns = append(patterns,
			regexp.MustCompile(`(?i)"`+quoted+`"\s*:\s*"[^"]*"`),
			regexp.MustCompile(`(?i)\b`+quoted+`=[^&\s"]+`),
		)
	}
	return patterns
}()

// SanitizeForLog masks credentials and payer contact data in a JSON or query-string payload
func SanitizeForLog(data string) string {
	result := data
	for i, re := range sensitivePatterns {
		field := sensitiveFields[i/2]
		if i%2 == 0 {
			result = re.ReplaceAllString(result, `"`+field+`":"***REDACTED***"`)
		} else {
			result = re.ReplaceAllString(result, field+`=***REDACTED***`)
		}
	}
	return result
}
