// Package jsondata decodes data files and serializes context values.
// It uses goccy/go-json as a drop-in replacement for encoding/json.
package jsondata

import (
	"bytes"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
)

// Decode parses a JSON document into generic values: objects become
// map[string]interface{}, arrays []interface{}, numbers float64.
func Decode(data []byte) (interface{}, error) {
	var v interface{}
	if err := gojson.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Marshal serializes v compactly without escaping HTML characters or
// non-ASCII text.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := gojson.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalIndent is like Marshal but pretty-prints with two-space indentation.
func MarshalIndent(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes v to w, indented, followed by a newline.
func Encode(w io.Writer, v interface{}) error {
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
