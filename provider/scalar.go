package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Text is a string field that the gateway may send either quoted or as a bare number
type Text string

// UnmarshalJSON accepts strings, numbers and null
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("cannot decode %s as text", data)
		}
		*t = Text(n.String())
	}
	return nil
}

// String returns the underlying value
func (t Text) String() string {
	return string(t)
}

// Int is an integer field that the gateway may send either quoted or as a bare number
type Int int

// UnmarshalJSON accepts integers, quoted integers and null
func (i *Int) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("cannot decode %s as integer", data)
	}
	*i = Int(n)
	return nil
}
