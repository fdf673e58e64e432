package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// AuthError is returned when the backend rejects credentials or the session token.
type AuthError struct {
	StatusCode int
	Detail     string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (%d): %s", e.StatusCode, e.Detail)
}

// ServerError is returned for any other rejected or malformed response.
type ServerError struct {
	// Zero when the failure was reported inside a stream.
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("server error: %s", e.Detail)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Detail)
}

// NetworkError is returned when the request never produced a response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// errorFromResponse classifies a non-2xx response.
func errorFromResponse(statusCode int, body []byte) error {
	detail := parseDetail(body)
	if detail == "" {
		detail = http.StatusText(statusCode)
	}
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{StatusCode: statusCode, Detail: detail}
	default:
		return &ServerError{StatusCode: statusCode, Detail: detail}
	}
}

// parseDetail extracts FastAPI's "detail" field, which is either a string or a list of validation errors.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		return detail
	}
	var validationErrors []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &validationErrors); err == nil && len(validationErrors) > 0 {
		msgs := make([]string, 0, len(validationErrors))
		for _, validationError := range validationErrors {
			msgs = append(msgs, validationError.Msg)
		}
		return strings.Join(msgs, "; ")
	}
	return string(payload.Detail)
}
