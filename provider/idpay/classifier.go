package idpay

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// classifyResponse turns an answer with a status of 400 or above into an *Error.
// Answers below 400 are successes whatever their body looks like. Answers of 500 and
// above never get here; the transport reports them.
func classifyResponse(statusCode int, body []byte, url, action string) error {
	if statusCode < 400 {
		return nil
	}

	rejection := &Error{
		StatusCode: statusCode,
		URL:        url,
		Action:     action,
		Body:       bytes.Clone(body),
	}

	code, ok := extractErrorCode(body)
	if !ok {
		rejection.Kind = KindRejectedNoCode
		return rejection
	}
	rejection.Code = code

	info, known := errorCodes[code]
	if !known {
		rejection.Kind = KindRejectedUnknownCode
		return rejection
	}

	rejection.Kind = KindRejectedKnownCode
	rejection.PersianMessage = info.PersianMessage
	return rejection
}

// extractErrorCode reads error_code from a JSON object body. A missing field or a body
// that is not a JSON object yields ok == false. A null field is present and reads "null".
func extractErrorCode(body []byte) (code string, ok bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", false
	}

	raw := bytes.TrimSpace(fields["error_code"])
	if len(raw) == 0 {
		return "", false
	}

	switch {
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw), true
		}
		return s, true
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
		return normalizeNumber(string(raw)), true
	default:
		// null, booleans, arrays and objects keep their JSON text
		return string(raw), true
	}
}

// normalizeNumber renders a JSON number in its shortest decimal form, so 34, 34.0 and 3.4e1 all give "34"
func normalizeNumber(raw string) string {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return raw
}
