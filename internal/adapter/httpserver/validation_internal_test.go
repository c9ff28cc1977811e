package httpserver

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

func TestParsePagination(t *testing.T) {
	limit, offset, err := parsePagination(url.Values{})
	require.NoError(t, err)
	assert.Zero(t, limit)
	assert.Zero(t, offset)

	limit, offset, err = parsePagination(url.Values{"limit": {"5"}, "offset": {"10"}})
	require.NoError(t, err)
	assert.Equal(t, 5, limit)
	assert.Equal(t, 10, offset)

	for _, q := range []url.Values{
		{"limit": {"0"}},
		{"limit": {"abc"}},
		{"offset": {"-1"}},
	} {
		_, _, err := parsePagination(q)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, q.Encode())
	}
}

func TestCVDetailsText(t *testing.T) {
	s, err := cvDetailsText(json.RawMessage(`"Go, Kafka"`))
	require.NoError(t, err)
	assert.Equal(t, "Go, Kafka", s)

	s, err = cvDetailsText(json.RawMessage(`{"Hobbies":"chess"}`))
	require.NoError(t, err)
	assert.Equal(t, "Hobbies:\nchess", s)

	s, err = cvDetailsText(nil)
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = cvDetailsText(json.RawMessage(`[1,2]`))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestValidateStruct_Messages(t *testing.T) {
	type req struct {
		Name   string `json:"name" validate:"required"`
		Status string `json:"status" validate:"omitempty,oneof=a b"`
	}
	details, err := validateStruct(req{Status: "c"})
	require.Error(t, err)
	assert.Equal(t, "name is required", err.Error())
	assert.Equal(t, map[string]string{"name": "required", "status": "oneof"}, details)

	_, err = validateStruct(req{Name: "x", Status: "c"})
	assert.EqualError(t, err, "status must be one of: a, b")
}
