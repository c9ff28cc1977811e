package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrors_Unwrap(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"argument", InvalidArgument("field %q missing", "x"), ErrInvalidArgument},
		{"gateway", NewGatewayError("gemini", 503, []byte("busy")), ErrUpstream},
		{"malformed", &MalformedResponseError{Service: "gemini", Reason: "no candidates"}, ErrSchemaInvalid},
		{"submission", &SubmissionError{Reason: "missing operation-location"}, ErrUpstream},
		{"poll timeout", &PollTimeoutError{Attempts: 3, Elapsed: time.Second}, ErrUpstreamTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.target))
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestArgumentError_MessageIsVerbatim(t *testing.T) {
	err := InvalidArgument("Both jobDescription and cvDetails are required.")
	var ae *ArgumentError
	assert.True(t, errors.As(err, &ae))
	assert.Equal(t, "Both jobDescription and cvDetails are required.", ae.Error())
}

func TestGatewayError(t *testing.T) {
	long := strings.Repeat("x", 2000)
	ge := NewGatewayError("docintel", 500, []byte(long))
	assert.Len(t, ge.Body, maxErrorBody)
	assert.True(t, ge.Transient())
	assert.True(t, NewGatewayError("gemini", 429, nil).Transient())
	assert.False(t, NewGatewayError("gemini", 400, nil).Transient())
	assert.Contains(t, NewGatewayError("gemini", 404, []byte("nope")).Error(), "status 404")
}

func TestRating_Valid(t *testing.T) {
	for _, r := range Ratings {
		assert.True(t, r.Valid())
	}
	assert.False(t, Rating("Outstanding").Valid())
	assert.False(t, Rating("").Valid())
	assert.True(t, InterviewDraft.Valid())
	assert.False(t, InterviewStatus("deleted").Valid())
}
