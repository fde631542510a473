package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mstgnz/idpay/infra/logger"
)

// HTTPClientConfig represents configuration for HTTP client
type HTTPClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	DefaultHeaders map[string]string
	Proxy          *ProxyConfig
	// Transport overrides the round tripper, mostly for tests. Proxy is ignored when set.
	Transport http.RoundTripper
}

// HTTPRequest represents a standardized HTTP request
type HTTPRequest struct {
	Method   string
	Endpoint string
	Headers  map[string]string
	Body     any
	// Action is a human description of the call, used in errors and logs
	Action string
}

// HTTPResponse represents a standardized HTTP response
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// ProviderHTTPClient provides standardized HTTP operations for payment providers.
// Any status below 500 is returned as a response so that gateway error bodies can be
// inspected; 500 and above is reported as a TransportError.
type ProviderHTTPClient struct {
	config *HTTPClientConfig
	client *http.Client
}

// NewProviderHTTPClient creates a new provider HTTP client
func NewProviderHTTPClient(config *HTTPClientConfig) (*ProviderHTTPClient, error) {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	transport := config.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.Proxy = http.ProxyFromEnvironment
		if config.Proxy != nil {
			proxyURL, err := config.Proxy.URL()
			if err != nil {
				return nil, fmt.Errorf("invalid proxy config: %w", err)
			}
			t.Proxy = http.ProxyURL(proxyURL)
		}
		transport = t
	}

	client := &http.Client{
		Timeout:   config.Timeout,
		Transport: transport,
	}

	return &ProviderHTTPClient{
		config: config,
		client: client,
	}, nil
}

// Timeout returns the timeout bounding each call
func (c *ProviderHTTPClient) Timeout() time.Duration {
	return c.config.Timeout
}

// SendJSON sends a JSON request and returns the response
func (c *ProviderHTTPClient) SendJSON(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	fullURL := joinURL(c.config.BaseURL, req.Endpoint)

	var body io.Reader
	if req.Body != nil {
		jsonData, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON body: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	startTime := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, c.transportError(req, fullURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(req, fullURL, fmt.Errorf("failed to read response body: %w", err))
	}

	logger.Debug("Gateway call finished", logger.LogContext{
		Fields: map[string]any{
			"method":        req.Method,
			"url":           fullURL,
			"action":        req.Action,
			"status":        resp.StatusCode,
			"processing_ms": time.Since(startTime).Milliseconds(),
		},
	})

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &TransportError{
			Action:     req.Action,
			Method:     req.Method,
			URL:        fullURL,
			StatusCode: resp.StatusCode,
			Body:       respBody,
			Err:        ErrServerError,
		}
	}

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

// transportError wraps a failed round trip, marking timeouts so they can be told apart
func (c *ProviderHTTPClient) transportError(req *HTTPRequest, fullURL string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		err = fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return &TransportError{
		Action: req.Action,
		Method: req.Method,
		URL:    fullURL,
		Err:    err,
	}
}

func joinURL(base, endpoint string) string {
	if strings.HasSuffix(base, "/") && strings.HasPrefix(endpoint, "/") {
		return base + endpoint[1:]
	}
	if !strings.HasSuffix(base, "/") && !strings.HasPrefix(endpoint, "/") {
		return base + "/" + endpoint
	}
	return base + endpoint
}

// ParseJSONResponse parses the response body as JSON into the target interface
func (c *ProviderHTTPClient) ParseJSONResponse(response *HTTPResponse, target any) error {
	return json.Unmarshal(response.Body, target)
}
