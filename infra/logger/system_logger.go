package logger

import (
	"context"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity level of a log entry
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
	LevelFatal LogLevel = "fatal"
)

var levelOrder = map[LogLevel]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
	LevelFatal: 4,
}

// ParseLevel converts a level name to a LogLevel, falling back to info
func ParseLevel(s string) LogLevel {
	level := LogLevel(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := levelOrder[level]; ok {
		return level
	}
	return LevelInfo
}

// SystemLog represents a structured system log entry
type SystemLog struct {
	Timestamp   time.Time      `json:"timestamp"`
	Level       LogLevel       `json:"level"`
	Message     string         `json:"message"`
	Component   string         `json:"component"`
	Function    string         `json:"function"`
	File        string         `json:"file"`
	Line        int            `json:"line"`
	MerchantID  string         `json:"merchant_id,omitempty"`
	Provider    string         `json:"provider,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
	Error       string         `json:"error,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
	Environment string         `json:"environment"`
	Service     string         `json:"service"`
	Version     string         `json:"version"`
}

// EventSink receives system log documents; *opensearch.Logger satisfies it
type EventSink interface {
	LogSystemEvent(ctx context.Context, log any) error
}

// SystemLoggerConfig represents configuration for system logger
type SystemLoggerConfig struct {
	EnableConsole    bool
	EnableOpenSearch bool
	MinLevel         LogLevel
	Service          string
	Version          string
	Environment      string
	// Output receives console lines; defaults to stdout
	Output io.Writer
	// NoColor disables ANSI level colors on the console
	NoColor bool
}

// SystemLogger writes structured logs to a zap console core and, optionally, to OpenSearch
type SystemLogger struct {
	sink             EventSink
	console          *zap.Logger
	enableConsole    bool
	enableOpenSearch bool
	minLevel         LogLevel
	service          string
	version          string
	environment      string
}

// NewSystemLogger creates a new system logger
func NewSystemLogger(sink EventSink, config SystemLoggerConfig) *SystemLogger {
	if config.MinLevel == "" {
		config.MinLevel = LevelInfo
	}

	return &SystemLogger{
		sink:             sink,
		console:          newConsoleLogger(config.Output, config.NoColor),
		enableConsole:    config.EnableConsole,
		enableOpenSearch: config.EnableOpenSearch && sink != nil,
		minLevel:         config.MinLevel,
		service:          config.Service,
		version:          config.Version,
		environment:      config.Environment,
	}
}

func newConsoleLogger(out io.Writer, noColor bool) *zap.Logger {
	if out == nil {
		out = os.Stdout
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if noColor {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	// Level filtering happens in shouldLog.
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(out), zapcore.DebugLevel)
	return zap.New(core)
}

// Zap exposes the console logger for libraries that take a *zap.Logger
func (sl *SystemLogger) Zap() *zap.Logger {
	return sl.console
}

// LogContext holds contextual information for logging
type LogContext struct {
	MerchantID string
	Provider   string
	RequestID  string
	Fields     map[string]any
}

// Debug logs a debug message
func (sl *SystemLogger) Debug(message string, ctx ...LogContext) {
	sl.log(LevelDebug, message, nil, ctx...)
}

// Info logs an info message
func (sl *SystemLogger) Info(message string, ctx ...LogContext) {
	sl.log(LevelInfo, message, nil, ctx...)
}

// Warn logs a warning message
func (sl *SystemLogger) Warn(message string, ctx ...LogContext) {
	sl.log(LevelWarn, message, nil, ctx...)
}

// Error logs an error message
func (sl *SystemLogger) Error(message string, err error, ctx ...LogContext) {
	sl.log(LevelError, message, err, ctx...)
}

// Fatal logs a fatal message and exits
func (sl *SystemLogger) Fatal(message string, err error, ctx ...LogContext) {
	sl.log(LevelFatal, message, err, ctx...)
	_ = sl.console.Sync()
	os.Exit(1)
}

// Sync flushes the console sink
func (sl *SystemLogger) Sync() error {
	return sl.console.Sync()
}

func (sl *SystemLogger) log(level LogLevel, message string, err error, ctx ...LogContext) {
	if !sl.shouldLog(level) {
		return
	}

	function, file, line := "unknown", "unknown", 0
	if pc, f, l, ok := runtime.Caller(3); ok {
		file, line = f, l
		if fn := runtime.FuncForPC(pc); fn != nil {
			function = fn.Name()
			if idx := strings.LastIndex(function, "."); idx != -1 {
				function = function[idx+1:]
			}
		}
	}

	entry := SystemLog{
		Timestamp:   time.Now().UTC(),
		Level:       level,
		Message:     message,
		Component:   extractComponent(file),
		Function:    function,
		File:        file,
		Line:        line,
		Environment: sl.environment,
		Service:     sl.service,
		Version:     sl.version,
	}

	if len(ctx) > 0 {
		entry.MerchantID = ctx[0].MerchantID
		entry.Provider = ctx[0].Provider
		entry.RequestID = ctx[0].RequestID
		entry.Fields = ctx[0].Fields
	}
	if err != nil {
		entry.Error = err.Error()
	}

	if sl.enableConsole {
		sl.logToConsole(entry)
	}

	if sl.enableOpenSearch {
		go sl.logToOpenSearch(entry)
	}
}

func (sl *SystemLogger) shouldLog(level LogLevel) bool {
	return levelOrder[level] >= levelOrder[sl.minLevel]
}

// extractComponent turns /path/to/idpay/provider/idpay/idpay.go into provider/idpay
func extractComponent(file string) string {
	parts := strings.Split(file, "/")

	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] == "idpay" && i+2 < len(parts) {
			if i+3 < len(parts) {
				return parts[i+1] + "/" + parts[i+2]
			}
			return parts[i+1]
		}
	}

	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}

	return "unknown"
}

func (sl *SystemLogger) logToConsole(entry SystemLog) {
	fields := make([]zap.Field, 0, len(entry.Fields)+5)
	fields = append(fields, zap.String("component", entry.Component))
	if entry.MerchantID != "" {
		fields = append(fields, zap.String("merchant", entry.MerchantID))
	}
	if entry.Provider != "" {
		fields = append(fields, zap.String("provider", entry.Provider))
	}
	if entry.RequestID != "" {
		fields = append(fields, zap.String("req_id", entry.RequestID))
	}
	if entry.Error != "" {
		fields = append(fields, zap.String("error", entry.Error))
	}
	for key, value := range entry.Fields {
		fields = append(fields, zap.Any(key, value))
	}

	switch entry.Level {
	case LevelDebug:
		sl.console.Debug(entry.Message, fields...)
	case LevelInfo:
		sl.console.Info(entry.Message, fields...)
	case LevelWarn:
		sl.console.Warn(entry.Message, fields...)
	default:
		// Fatal is written at error level; the caller handles the exit.
		sl.console.Error(entry.Message, fields...)
	}
}

func (sl *SystemLogger) logToOpenSearch(entry SystemLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sl.sink.LogSystemEvent(ctx, entry); err != nil {
		sl.console.Warn("failed to log to opensearch", zap.Error(err))
	}
}

// WithContext creates a new logger with context
func (sl *SystemLogger) WithContext(ctx LogContext) *ContextLogger {
	return &ContextLogger{
		systemLogger: sl,
		context:      ctx,
	}
}

// ContextLogger wraps SystemLogger with context
type ContextLogger struct {
	systemLogger *SystemLogger
	context      LogContext
}

func (cl *ContextLogger) Debug(message string) {
	cl.systemLogger.Debug(message, cl.context)
}

func (cl *ContextLogger) Info(message string) {
	cl.systemLogger.Info(message, cl.context)
}

func (cl *ContextLogger) Warn(message string) {
	cl.systemLogger.Warn(message, cl.context)
}

func (cl *ContextLogger) Error(message string, err error) {
	cl.systemLogger.Error(message, err, cl.context)
}

// AddField adds a field to the context
func (cl *ContextLogger) AddField(key string, value any) *ContextLogger {
	if cl.context.Fields == nil {
		cl.context.Fields = make(map[string]any)
	}
	cl.context.Fields[key] = value
	return cl
}

// SetMerchantID sets the merchant ID in context
func (cl *ContextLogger) SetMerchantID(merchantID string) *ContextLogger {
	cl.context.MerchantID = merchantID
	return cl
}

// SetProvider sets the provider in context
func (cl *ContextLogger) SetProvider(provider string) *ContextLogger {
	cl.context.Provider = provider
	return cl
}

// SetRequestID sets the request ID in context
func (cl *ContextLogger) SetRequestID(requestID string) *ContextLogger {
	cl.context.RequestID = requestID
	return cl
}
