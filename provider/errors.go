package provider

import (
	"errors"
	"fmt"
	"strconv"
)

// Transport failures. These are never classified further; callers decide on retries.
var (
	// ErrTransport indicates the gateway could not be reached or the call was aborted.
	ErrTransport = errors.New("transport failure")

	// ErrTimeout indicates the call did not complete within the configured timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrServerError indicates the gateway answered with a status of 500 or above.
	ErrServerError = errors.New("gateway server error")
)

// TransportError describes a failed HTTP exchange with a gateway
type TransportError struct {
	Action     string
	Method     string
	URL        string
	StatusCode int    // set only for ErrServerError
	Body       []byte // response body of a 5xx answer, kept for diagnostics
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case errors.Is(e.Err, ErrTimeout):
		return fmt.Sprintf("%s %s: request did not receive a response within allowed time frame (%s)", e.Method, e.URL, e.Action)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s %s: gateway responded with status %d (%s)", e.Method, e.URL, e.StatusCode, e.Action)
	default:
		return fmt.Sprintf("%s %s: %v (%s)", e.Method, e.URL, e.Err, e.Action)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports ErrTransport for every transport error so callers can match the whole family
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Timeout reports whether the failure was a timeout
func (e *TransportError) Timeout() bool {
	return errors.Is(e.Err, ErrTimeout)
}

// GatewayError is implemented by errors carrying the gateway's verdict on a request
type GatewayError interface {
	error
	// ErrorKind names the failure class, e.g. "rejected_known_code"
	ErrorKind() string
	// ErrorCode is the gateway error code, empty when the gateway sent none
	ErrorCode() string
	// HTTPStatus is the status code the gateway answered with, 0 when no answer was involved
	HTTPStatus() int
}

// DescribeError returns the failure class and gateway code of err for logs and API answers
func DescribeError(err error) (kind, code string) {
	var gatewayErr GatewayError
	var transportErr *TransportError

	switch {
	case err == nil:
		return "", ""
	case errors.As(err, &gatewayErr):
		return gatewayErr.ErrorKind(), gatewayErr.ErrorCode()
	case errors.As(err, &transportErr) && transportErr.Timeout():
		return "timeout", ""
	case errors.As(err, &transportErr) && transportErr.StatusCode > 0:
		return "server_error", strconv.Itoa(transportErr.StatusCode)
	case errors.Is(err, ErrTransport):
		return "transport", ""
	default:
		return "internal", ""
	}
}
