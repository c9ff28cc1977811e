package domain

import (
	"fmt"
	"time"
)

const maxErrorBody = 512

// ArgumentError is a validation failure whose Message is safe to show to callers.
type ArgumentError struct{ Message string }

func (e *ArgumentError) Error() string { return e.Message }
func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

// InvalidArgument returns an ArgumentError with the given message.
func InvalidArgument(format string, args ...any) error {
	return &ArgumentError{Message: fmt.Sprintf(format, args...)}
}

// GatewayError is a non-2xx response from an upstream service.
type GatewayError struct {
	Service string
	Status  int
	Body    string
}

// NewGatewayError trims body to a loggable size.
func NewGatewayError(service string, status int, body []byte) *GatewayError {
	b := string(body)
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return &GatewayError{Service: service, Status: status, Body: b}
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s responded with status %d: %s", e.Service, e.Status, e.Body)
}

func (e *GatewayError) Unwrap() error { return ErrUpstream }

// Transient reports whether the request may succeed if repeated.
func (e *GatewayError) Transient() bool {
	return e.Status == 429 || e.Status >= 500
}

// MalformedResponseError is a successful upstream response with an unexpected shape.
type MalformedResponseError struct {
	Service string
	Reason  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("unexpected %s response format: %s", e.Service, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return ErrSchemaInvalid }

// SubmissionError means an asynchronous job could not be submitted and is not retried.
type SubmissionError struct{ Reason string }

func (e *SubmissionError) Error() string { return "document submission failed: " + e.Reason }
func (e *SubmissionError) Unwrap() error { return ErrUpstream }

// PollTimeoutError means an asynchronous job did not complete within its attempt or time budget.
type PollTimeoutError struct {
	Attempts   int
	Elapsed    time.Duration
	LastStatus string
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("analysis not finished after %d checks in %s (last status %q)", e.Attempts, e.Elapsed.Round(time.Millisecond), e.LastStatus)
}

func (e *PollTimeoutError) Unwrap() error { return ErrUpstreamTimeout }
