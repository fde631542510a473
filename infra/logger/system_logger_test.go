package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	events chan any
	err    error
}

func (s *captureSink) LogSystemEvent(_ context.Context, log any) error {
	s.events <- log
	return s.err
}

func newBufferedLogger(minLevel LogLevel) (*SystemLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewSystemLogger(nil, SystemLoggerConfig{
		EnableConsole: true,
		MinLevel:      minLevel,
		Service:       "test-service",
		Version:       "1.0.0",
		Environment:   "test",
		Output:        buf,
		NoColor:       true,
	}), buf
}

func TestNewSystemLogger(t *testing.T) {
	config := SystemLoggerConfig{
		EnableConsole:    true,
		EnableOpenSearch: true,
		MinLevel:         LevelWarn,
		Service:          "test-service",
		Version:          "1.0.0",
		Environment:      "test",
	}

	logger := NewSystemLogger(nil, config)

	require.NotNil(t, logger)
	assert.True(t, logger.enableConsole)
	assert.False(t, logger.enableOpenSearch, "opensearch needs a sink")
	assert.Equal(t, LevelWarn, logger.minLevel)
	assert.Equal(t, "test-service", logger.service)
	assert.NotNil(t, logger.Zap())
}

func TestNewSystemLogger_DefaultLevel(t *testing.T) {
	logger := NewSystemLogger(nil, SystemLoggerConfig{})
	assert.Equal(t, LevelInfo, logger.minLevel)
}

func TestSystemLogger_ConsoleOutput(t *testing.T) {
	logger, buf := newBufferedLogger(LevelDebug)

	logger.Info("payment created", LogContext{
		MerchantID: "SHOP1",
		Provider:   "idpay",
		RequestID:  "req-123",
		Fields:     map[string]any{"order_id": "101"},
	})
	logger.Error("verify failed", errors.New("gateway said no"))

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "payment created")
	assert.Contains(t, out, `"merchant": "SHOP1"`)
	assert.Contains(t, out, `"provider": "idpay"`)
	assert.Contains(t, out, `"order_id": "101"`)
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "gateway said no")
}

func TestSystemLogger_ShouldLog(t *testing.T) {
	tests := []struct {
		minLevel LogLevel
		level    LogLevel
		expected bool
	}{
		{LevelDebug, LevelDebug, true},
		{LevelInfo, LevelDebug, false},
		{LevelInfo, LevelWarn, true},
		{LevelWarn, LevelInfo, false},
		{LevelError, LevelWarn, false},
		{LevelError, LevelFatal, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.minLevel)+"_"+string(tt.level), func(t *testing.T) {
			logger := NewSystemLogger(nil, SystemLoggerConfig{MinLevel: tt.minLevel})
			assert.Equal(t, tt.expected, logger.shouldLog(tt.level))
		})
	}
}

func TestSystemLogger_FiltersBelowMinLevel(t *testing.T) {
	logger, buf := newBufferedLogger(LevelWarn)

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("visible warn")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible warn")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}

func TestExtractComponent(t *testing.T) {
	tests := []struct {
		file     string
		expected string
	}{
		{"/home/dev/idpay/provider/idpay/idpay.go", "provider/idpay"},
		{"/home/dev/idpay/handler/payment.go", "handler"},
		{"/some/other/place/file.go", "place"},
		{"file.go", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractComponent(tt.file))
		})
	}
}

func TestSystemLogger_OpenSearchSink(t *testing.T) {
	sink := &captureSink{events: make(chan any, 1)}
	logger := NewSystemLogger(sink, SystemLoggerConfig{
		EnableOpenSearch: true,
		MinLevel:         LevelInfo,
		Service:          "idpay",
		Environment:      "test",
	})

	logger.Warn("slow gateway", LogContext{MerchantID: "SHOP1"})

	select {
	case event := <-sink.events:
		entry, ok := event.(SystemLog)
		require.True(t, ok)
		assert.Equal(t, LevelWarn, entry.Level)
		assert.Equal(t, "slow gateway", entry.Message)
		assert.Equal(t, "SHOP1", entry.MerchantID)
		assert.Equal(t, "idpay", entry.Service)
	case <-time.After(2 * time.Second):
		t.Fatal("system log was not delivered to the sink")
	}
}

func TestContextLogger(t *testing.T) {
	logger, buf := newBufferedLogger(LevelDebug)

	cl := logger.WithContext(LogContext{}).
		SetMerchantID("SHOP2").
		SetProvider("idpay").
		SetRequestID("req-9").
		AddField("amount", 10000)

	assert.Equal(t, "SHOP2", cl.context.MerchantID)
	assert.Equal(t, "idpay", cl.context.Provider)
	assert.Equal(t, "req-9", cl.context.RequestID)
	assert.Equal(t, 10000, cl.context.Fields["amount"])

	cl.Debug("debug line")
	cl.Info("info line")
	cl.Warn("warn line")
	cl.Error("error line", errors.New("boom"))

	out := buf.String()
	for _, s := range []string{"debug line", "info line", "warn line", "error line", "boom", `"merchant": "SHOP2"`} {
		assert.Contains(t, out, s)
	}
}
