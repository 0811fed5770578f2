// Package command defines the request/response contract shared by every
// editor automation tool: a loosely-typed parameter bag, a two-variant
// response envelope, and a per-tool action router.
package command

import (
	"fmt"
	"strconv"
	"strings"
)

// Params is the unordered bag of named parameters carried by a command
// request. Values are loosely typed (string, bool, number, nested object)
// as decoded from JSON.
type Params map[string]any

// String returns the first non-empty string value among the given keys,
// with surrounding whitespace trimmed. Multiple keys allow a logical
// parameter to be accepted under more than one naming convention.
func (p Params) String(keys ...string) string {
	for _, k := range keys {
		v, ok := p[k]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// Bool returns the boolean value for key, or def when absent or not a
// boolean. String forms "true"/"false" are accepted for client resilience.
func (p Params) Bool(key string, def bool) bool {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
	}
	return def
}

// Int returns the integer value for key, or def when absent or not numeric.
// JSON numbers decode as float64, so that form is accepted too.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return def
}

// Strings returns the value for key as a string slice. A single string
// value is treated as a one-element slice, matching how clients sometimes
// send a bare string where a list is expected.
func (p Params) Strings(key string) []string {
	v, ok := p[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Response is the uniform result envelope for a command invocation.
// Exactly one variant is ever produced: success (message plus optional
// structured payload) or error (message only).
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Successf builds a success response with a formatted message.
func Successf(format string, args ...any) Response {
	return Response{Success: true, Message: fmt.Sprintf(format, args...)}
}

// SuccessData builds a success response carrying a structured payload.
func SuccessData(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

// Errorf builds an error response with a formatted message.
func Errorf(format string, args ...any) Response {
	return Response{Success: false, Error: fmt.Sprintf(format, args...)}
}
