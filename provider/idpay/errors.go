package idpay

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies the failures reported by this package
type Kind int

const (
	// KindInvalidConfig means the client could not be built from the given settings.
	KindInvalidConfig Kind = iota + 1
	// KindRejectedNoCode means a 4xx answer carried no error code.
	KindRejectedNoCode
	// KindRejectedUnknownCode means a 4xx answer carried a code missing from the table.
	KindRejectedUnknownCode
	// KindRejectedKnownCode means a 4xx answer carried a documented code.
	KindRejectedKnownCode
)

func (k Kind) String() string {
	switch k {
	case KindInvalidConfig:
		return "invalid_config"
	case KindRejectedNoCode:
		return "rejected_no_code"
	case KindRejectedUnknownCode:
		return "rejected_unknown_code"
	case KindRejectedKnownCode:
		return "rejected_known_code"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidConfig       = errors.New("invalid idpay configuration")
	ErrRejected            = errors.New("request rejected by idpay")
	ErrRejectedNoCode      = errors.New("request rejected without error code")
	ErrRejectedUnknownCode = errors.New("request rejected with unknown error code")
	ErrRejectedKnownCode   = errors.New("request rejected with known error code")
)

// Error is returned for invalid configuration and for every request the gateway rejected
// with a status between 400 and 499. Match it with errors.Is against the sentinels above
// or errors.As for the details.
type Error struct {
	Kind Kind
	// StatusCode is the HTTP status of the rejecting answer.
	StatusCode int
	// Code is the gateway error code in decimal string form; empty for KindRejectedNoCode.
	Code string
	// PersianMessage is the documented message of Code, placeholders untouched.
	PersianMessage string
	URL            string
	Action         string
	// Body is the response body exactly as received.
	Body json.RawMessage

	message string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidConfig:
		return e.message
	case KindRejectedNoCode:
		return fmt.Sprintf("Response with status of %d without error code and persian message was received when '%s' with url of '%s', body is available at .Body",
			e.StatusCode, e.Action, e.URL)
	case KindRejectedUnknownCode:
		return fmt.Sprintf("Response with status of %d and invalid error code of %s without persian message was received when '%s' with url of '%s', body is available at .Body",
			e.StatusCode, e.Code, e.Action, e.URL)
	case KindRejectedKnownCode:
		return fmt.Sprintf("Response with status of %d and error code of %s with persian message of %s received when '%s' with url of '%s', body is available at .Body",
			e.StatusCode, e.Code, e.PersianMessage, e.Action, e.URL)
	default:
		return "idpay: unknown error"
	}
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidConfig:
		return e.Kind == KindInvalidConfig
	case ErrRejected:
		return e.Rejected()
	case ErrRejectedNoCode:
		return e.Kind == KindRejectedNoCode
	case ErrRejectedUnknownCode:
		return e.Kind == KindRejectedUnknownCode
	case ErrRejectedKnownCode:
		return e.Kind == KindRejectedKnownCode
	}
	return false
}

// Rejected reports whether the gateway rejected the request
func (e *Error) Rejected() bool {
	return e.Kind == KindRejectedNoCode || e.Kind == KindRejectedUnknownCode || e.Kind == KindRejectedKnownCode
}

func (e *Error) ErrorKind() string { return e.Kind.String() }
func (e *Error) ErrorCode() string { return e.Code }
func (e *Error) HTTPStatus() int   { return e.StatusCode }

func invalidConfig(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidConfig, message: fmt.Sprintf(format, args...)}
}
