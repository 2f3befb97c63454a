package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ──────────────────────────────────────────────────────────────────────────────
// Validation error (returned during argument and request checks)
// ──────────────────────────────────────────────────────────────────────────────

type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// ──────────────────────────────────────────────────────────────────────────────
// ToolError: the failure half of an invocation outcome
// ──────────────────────────────────────────────────────────────────────────────

// ErrorKind is the machine-distinguishable class of an invocation failure.
type ErrorKind string

const (
	KindUnknownTool      ErrorKind = "unknown_tool"
	KindInvalidArguments ErrorKind = "invalid_arguments"
	KindNotConfigured    ErrorKind = "not_configured"
	KindUpstream         ErrorKind = "upstream_error"
	KindTimeout          ErrorKind = "timeout"
	KindInternal         ErrorKind = "internal_error"
)

// ToolError is returned by handlers and produced by the dispatcher. Message is
// what the orchestrator sees; Detail and Cause are for logs only.
type ToolError struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Status    int       `json:"status,omitempty"`
	Detail    string    `json:"-"`
	Cause     error     `json:"-"`
}

func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if msg == "" {
		return string(e.Kind)
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// AsToolError normalizes any error into a *ToolError. Errors that are not
// already classified become KindInternal carrying err.Error() as message.
func AsToolError(err error) *ToolError {
	if err == nil {
		return nil
	}
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ErrInvalidArguments(ve)
	}
	return &ToolError{Kind: KindInternal, Message: err.Error(), Cause: err}
}

// ──────────────────────────────────────────────────────────────────────────────
// ToolError constructors
// ──────────────────────────────────────────────────────────────────────────────

func ErrUnknownTool(name string) *ToolError {
	return &ToolError{Kind: KindUnknownTool, Message: fmt.Sprintf("unknown tool: %s", name)}
}

func ErrInvalidArguments(ve *ValidationError) *ToolError {
	return &ToolError{
		Kind:    KindInvalidArguments,
		Message: fmt.Sprintf("invalid arguments: %s %s", ve.Field, ve.Reason),
		Cause:   ve,
	}
}

// ErrNotConfigured names the missing settings, never their values.
func ErrNotConfigured(provider string, missing ...string) *ToolError {
	msg := fmt.Sprintf("%s is not configured", provider)
	if len(missing) > 0 {
		msg += ": missing " + strings.Join(missing, ", ")
	}
	return &ToolError{Kind: KindNotConfigured, Message: msg}
}

// ErrUpstream reports a provider failure. status is zero for transport
// errors, which are retryable like 429 and 5xx responses.
func ErrUpstream(provider string, status int, message string, cause error) *ToolError {
	retryable := status == 0 || status == http.StatusTooManyRequests || status >= 500
	if message == "" {
		if status > 0 {
			message = fmt.Sprintf("%s API error: %d %s", provider, status, http.StatusText(status))
		} else {
			message = fmt.Sprintf("%s API request failed", provider)
		}
	}
	return &ToolError{
		Kind:      KindUpstream,
		Message:   message,
		Retryable: retryable,
		Status:    status,
		Cause:     cause,
	}
}

func ErrTimeout(msg string) *ToolError {
	return &ToolError{Kind: KindTimeout, Message: msg, Retryable: true}
}

func ErrInternal(err error) *ToolError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ToolError{Kind: KindInternal, Message: msg, Cause: err}
}

// ──────────────────────────────────────────────────────────────────────────────
// APIError: structured HTTP transport error (request never reached dispatch)
// ──────────────────────────────────────────────────────────────────────────────

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Details   any    `json:"details,omitempty"`
	HTTPCode  int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WriteJSON writes the error as JSON to the response writer.
func (e *APIError) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.HTTPCode)
	_ = json.NewEncoder(w).Encode(e)
}

func ErrBadRequest(msg string) *APIError {
	return &APIError{Code: "BAD_REQUEST", Message: msg, HTTPCode: http.StatusBadRequest}
}

func ErrValidation(err error) *APIError {
	return &APIError{Code: "VALIDATION_ERROR", Message: err.Error(), HTTPCode: http.StatusUnprocessableEntity}
}

func ErrUnauthorized(msg string) *APIError {
	return &APIError{Code: "UNAUTHORIZED", Message: msg, HTTPCode: http.StatusUnauthorized}
}

func ErrNotReady() *APIError {
	return &APIError{Code: "NOT_READY", Message: "adapter is not ready", Retryable: true, HTTPCode: http.StatusServiceUnavailable}
}

func ErrRateLimited() *APIError {
	return &APIError{Code: "RATE_LIMITED", Message: "too many requests", Retryable: true, HTTPCode: http.StatusTooManyRequests}
}
