package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// errorBody is the JSON shape of every failed request.
type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus maps an error onto an HTTP status and a stable code.
func errorStatus(err error) (int, string) {
	var (
		gwErr  *domain.GatewayError
		badRes *domain.MalformedResponseError
		subErr *domain.SubmissionError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	case errors.Is(err, domain.ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		return http.StatusInternalServerError, "UPSTREAM_RATE_LIMIT"
	case errors.As(err, &gwErr):
		return http.StatusInternalServerError, "UPSTREAM"
	case errors.As(err, &badRes):
		return http.StatusInternalServerError, "SCHEMA_INVALID"
	case errors.As(err, &subErr):
		return http.StatusInternalServerError, "SUBMISSION_FAILED"
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusInternalServerError, "UPSTREAM"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

// writeError is the single place domain errors become HTTP responses.
// Validation messages are returned verbatim; server errors carry the detail
// behind an "Internal server error: " prefix.
func writeError(w http.ResponseWriter, r *http.Request, err error, details interface{}) {
	status, code := errorStatus(err)
	msg := err.Error()
	var argErr *domain.ArgumentError
	if errors.As(err, &argErr) {
		msg = argErr.Message
	}
	lg := observability.LoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		msg = "Internal server error: " + msg
		lg.Error("request failed", slog.String("code", code), slog.Any("error", err))
	} else {
		lg.Debug("request rejected", slog.String("code", code), slog.Any("error", err))
	}
	writeJSON(w, status, errorBody{Error: msg, Code: code, Details: details})
}
