package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mstgnz/idpay/handler"
	"github.com/mstgnz/idpay/infra/config"
	"github.com/mstgnz/idpay/infra/logger"
	"github.com/mstgnz/idpay/infra/middle"
	"github.com/mstgnz/idpay/infra/opensearch"
	"github.com/mstgnz/idpay/infra/validate"
	"github.com/mstgnz/idpay/provider"
	"github.com/mstgnz/idpay/router"
	v1 "github.com/mstgnz/idpay/router/v1"
)

// Injected at build time via ldflags
var version = "dev"

func main() {
	// Load .env file if present
	_ = godotenv.Load(".env")

	// init conf
	_ = config.App()
	validate.CustomValidate()
	cfg := config.GetAppConfig()

	// Initialize OpenSearch client and logger
	var (
		osClient  *opensearch.Client
		osLogger  *opensearch.Logger
		logSink   logger.EventSink
		payLogger provider.PaymentLogger
	)
	if cfg.EnableLogging {
		client, err := opensearch.NewClient(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize OpenSearch client, continuing without it: %v\n", err)
		} else {
			osClient = client
			osLogger = opensearch.NewLogger(client)
			logSink = osLogger
			payLogger = osLogger
		}
	}
	logger.InitGlobalLogger(logSink)
	defer func() { _ = logger.GetGlobalLogger().Sync() }()

	if cfg.APIKey == "" {
		logger.Warn("API_KEY is not set, /v1 will answer 500 until it is")
	}

	// Merchant configuration storage
	if err := os.MkdirAll(filepath.Dir(cfg.ConfigDBPath), 0o755); err != nil {
		logger.Fatal("Failed to create config directory", err)
	}
	storage, err := config.NewSQLiteStorage(cfg.ConfigDBPath)
	if err != nil {
		logger.Fatal("Failed to open config storage", err, logger.LogContext{
			Fields: map[string]any{"path": cfg.ConfigDBPath},
		})
	}
	defer func() { _ = storage.Close() }()

	providerConfig := config.NewProviderConfig(storage)
	if providerConfig.LoadEnvironmentConfig() {
		logger.Info("Default merchant configured from environment", logger.LogContext{
			MerchantID: config.DefaultMerchantID,
			Provider:   "idpay",
		})
	}

	paymentService := provider.NewPaymentService(providerConfig, payLogger)
	v := config.App().Validator

	handlers := v1.Handlers{
		Payments: handler.NewPaymentHandler(paymentService, v),
		Configs:  handler.NewConfigHandler(providerConfig, paymentService, nil, v),
	}
	if osLogger != nil {
		handlers.Logs = handler.NewLogsHandler(osLogger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rateLimiter := middle.NewRateLimiter(config.GetIntEnv("RATE_LIMIT_PER_MINUTE", 100), time.Minute)
	go rateLimiter.Run(ctx)

	var healthSink handler.LogSink
	if osClient != nil {
		healthSink = osClient
	}
	r := router.New(router.Options{
		APIKey:      cfg.APIKey,
		RateLimiter: rateLimiter,
		Health:      handler.NewHealthHandler(storage, healthSink, paymentService, nil, version, cfg.Environment),
		V1:          handlers,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", err)
		}
	}()

	logger.Info("API is running", logger.LogContext{
		Fields: map[string]any{"port": cfg.Port, "version": version, "environment": cfg.Environment},
	})

	// Block until a signal is received
	<-ctx.Done()

	logger.Info("Shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
	}
}
