package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TransportError wraps a failure to reach the membership API at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx reply. Structured is true when the body was JSON.
type APIError struct {
	Status     int
	Message    string
	Structured bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// IsClientError reports whether err is a 4xx reply from the API.
func IsClientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
}

const maxErrorBody = 4 << 10

// newAPIError prefers the body's "error" field, then the whole JSON body,
// then short plain text, then the status text.
func newAPIError(status int, body []byte) *APIError {
	body = bytes.TrimSpace(body)

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil && payload != nil {
		if msg, ok := payload["error"].(string); ok && msg != "" {
			return &APIError{Status: status, Message: msg, Structured: true}
		}
		return &APIError{Status: status, Message: string(body), Structured: true}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" || len(msg) > 200 || strings.HasPrefix(msg, "<") {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = "unexpected response"
	}
	return &APIError{Status: status, Message: msg}
}
