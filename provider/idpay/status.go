package idpay

import "github.com/mstgnz/idpay/provider"

// Transaction status codes reported by verify and posted to the callback
const (
	StatusNotPaid            = 1
	StatusFailed             = 2
	StatusError              = 3
	StatusBlocked            = 4
	StatusReturnedToPayer    = 5
	StatusReversedBySystem   = 6
	StatusCancelledByPayer   = 7
	StatusRedirectedToBank   = 8
	StatusAwaitingVerify     = 10
	StatusVerified           = 100
	StatusAlreadyVerified    = 101
	StatusSettledToRecipient = 200
)

// TransactionStatus describes one gateway transaction status
type TransactionStatus struct {
	Code           int                    `json:"code"`
	PersianMessage string                 `json:"persianMessage"`
	Status         provider.PaymentStatus `json:"status"`
}

var transactionStatuses = map[int]TransactionStatus{
	StatusNotPaid:            {StatusNotPaid, "پرداخت انجام نشده است.", provider.StatusFailed},
	StatusFailed:             {StatusFailed, "پرداخت ناموفق بوده است.", provider.StatusFailed},
	StatusError:              {StatusError, "خطا رخ داده است.", provider.StatusFailed},
	StatusBlocked:            {StatusBlocked, "بلوکه شده.", provider.StatusFailed},
	StatusReturnedToPayer:    {StatusReturnedToPayer, "برگشت به پرداخت کننده.", provider.StatusRefunded},
	StatusReversedBySystem:   {StatusReversedBySystem, "برگشت خورده سیستمی.", provider.StatusRefunded},
	StatusCancelledByPayer:   {StatusCancelledByPayer, "انصراف از پرداخت.", provider.StatusCancelled},
	StatusRedirectedToBank:   {StatusRedirectedToBank, "به درگاه پرداخت منتقل شد.", provider.StatusProcessing},
	StatusAwaitingVerify:     {StatusAwaitingVerify, "در انتظار تایید پرداخت.", provider.StatusPending},
	StatusVerified:           {StatusVerified, "پرداخت تایید شده است.", provider.StatusSuccessful},
	StatusAlreadyVerified:    {StatusAlreadyVerified, "پرداخت قبلا تایید شده است.", provider.StatusSuccessful},
	StatusSettledToRecipient: {StatusSettledToRecipient, "به دریافت کننده واریز شد.", provider.StatusSuccessful},
}

// LookupTransactionStatus returns the description of a transaction status code
func LookupTransactionStatus(code int) (TransactionStatus, bool) {
	status, ok := transactionStatuses[code]
	return status, ok
}

// TransactionStatusOf maps a verification record to a payment status.
// Codes outside the table are reported as failed.
func TransactionStatusOf(resp provider.VerifyPaymentResponse) provider.PaymentStatus {
	if status, ok := transactionStatuses[int(resp.Status)]; ok {
		return status.Status
	}
	return provider.StatusFailed
}
