package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"argument", domain.InvalidArgument("bad"), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not found", fmt.Errorf("wrap: %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", domain.ErrRecognizerClosed, http.StatusConflict, "CONFLICT"},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"poll timeout", &domain.PollTimeoutError{Attempts: 3, Elapsed: time.Second}, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"},
		{"upstream 429", domain.ErrUpstreamRateLimit, http.StatusInternalServerError, "UPSTREAM_RATE_LIMIT"},
		{"gateway", domain.NewGatewayError("gemini", 500, nil), http.StatusInternalServerError, "UPSTREAM"},
		{"malformed", &domain.MalformedResponseError{Service: "gemini", Reason: "x"}, http.StatusInternalServerError, "SCHEMA_INVALID"},
		{"submission", &domain.SubmissionError{Reason: "no location"}, http.StatusInternalServerError, "SUBMISSION_FAILED"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code := errorStatus(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestWriteError_Messages(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	writeError(rec, req, fmt.Errorf("op=x: %w", domain.InvalidArgument("jobTitle is required")), map[string]string{"jobTitle": "required"})
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "jobTitle is required", body.Error)
	assert.NotNil(t, body.Details)

	rec = httptest.NewRecorder()
	writeError(rec, req, errors.New("db down"), nil)
	body = errorBody{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error: db down", body.Error)
	assert.Nil(t, body.Details)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}
