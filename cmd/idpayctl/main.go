// Command idpayctl creates and verifies IDPay payments from the shell
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mstgnz/idpay/provider"
	"github.com/mstgnz/idpay/provider/idpay"
)

// Injected at build time via ldflags
var version = "dev"

const (
	ExitOK        = 0
	ExitGeneral   = 1
	ExitUsage     = 2
	ExitConfig    = 3
	ExitRejected  = 4
	ExitTransport = 5
	ExitInterrupt = 130
)

func main() {
	// Load .env file if present (ignore error if missing)
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd(defaultEnv())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupt
	case errors.Is(err, errUsage), isCobraUsageError(err):
		return ExitUsage
	case errors.Is(err, idpay.ErrInvalidConfig):
		return ExitConfig
	case errors.Is(err, idpay.ErrRejected):
		return ExitRejected
	case errors.Is(err, provider.ErrTransport):
		return ExitTransport
	}
	return ExitGeneral
}

// Cobra doesn't expose typed errors for flag and argument parsing
var cobraUsageErrorPatterns = []string{
	"required flag",
	"unknown flag",
	"unknown shorthand",
	"flag needs an argument",
	"invalid argument",
	"accepts ",
	"unknown command",
}

func isCobraUsageError(err error) bool {
	msg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
