package idpay

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mstgnz/idpay/provider"
)

// Callback is what the gateway sends to the callback address once the payer is done,
// either as a form POST or as query parameters of a GET redirect.
type Callback struct {
	Status  int    `json:"status"`
	TrackID string `json:"track_id"`
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
}

// ParseCallback reads a callback from its form or query values
func ParseCallback(values map[string]string) (*Callback, error) {
	cb := &Callback{
		TrackID: strings.TrimSpace(values["track_id"]),
		ID:      strings.TrimSpace(values["id"]),
		OrderID: strings.TrimSpace(values["order_id"]),
	}

	rawStatus := strings.TrimSpace(values["status"])
	if rawStatus == "" {
		return nil, fmt.Errorf("idpay callback: status is missing")
	}
	status, err := strconv.Atoi(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("idpay callback: invalid status %q", rawStatus)
	}
	cb.Status = status

	if cb.ID == "" {
		return nil, fmt.Errorf("idpay callback: id is missing")
	}
	if cb.OrderID == "" {
		return nil, fmt.Errorf("idpay callback: order_id is missing")
	}

	return cb, nil
}

// ReadyToVerify reports whether the payer paid and the transaction waits for verification
func (c *Callback) ReadyToVerify() bool {
	return c.Status == StatusAwaitingVerify
}

// VerifyRequest builds the verification request for this callback
func (c *Callback) VerifyRequest() provider.VerifyPaymentRequest {
	return provider.VerifyPaymentRequest{ID: c.ID, OrderID: c.OrderID}
}
