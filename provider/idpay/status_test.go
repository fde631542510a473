package idpay

import (
	"testing"

	"github.com/mstgnz/idpay/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionStatusOf(t *testing.T) {
	tests := []struct {
		code int
		want provider.PaymentStatus
	}{
		{StatusNotPaid, provider.StatusFailed},
		{StatusFailed, provider.StatusFailed},
		{StatusError, provider.StatusFailed},
		{StatusBlocked, provider.StatusFailed},
		{StatusReturnedToPayer, provider.StatusRefunded},
		{StatusReversedBySystem, provider.StatusRefunded},
		{StatusCancelledByPayer, provider.StatusCancelled},
		{StatusRedirectedToBank, provider.StatusProcessing},
		{StatusAwaitingVerify, provider.StatusPending},
		{StatusVerified, provider.StatusSuccessful},
		{StatusAlreadyVerified, provider.StatusSuccessful},
		{StatusSettledToRecipient, provider.StatusSuccessful},
		{9, provider.StatusFailed},
		{0, provider.StatusFailed},
	}

	for _, tt := range tests {
		resp := provider.VerifyPaymentResponse{Status: provider.Int(tt.code)}
		assert.Equal(t, tt.want, TransactionStatusOf(resp), "status %d", tt.code)
	}
}

func TestLookupTransactionStatus(t *testing.T) {
	status, ok := LookupTransactionStatus(StatusVerified)
	require.True(t, ok)
	assert.Equal(t, 100, status.Code)
	assert.Equal(t, "پرداخت تایید شده است.", status.PersianMessage)

	_, ok = LookupTransactionStatus(9)
	assert.False(t, ok)
}
