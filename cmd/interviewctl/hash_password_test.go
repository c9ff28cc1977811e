package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/httpserver"
)

func TestHashPassword(t *testing.T) {
	params := httpserver.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLen: 8, KeyLen: 16}
	var out bytes.Buffer
	require.NoError(t, hashPassword(strings.NewReader("hunter2\nignored\n"), &out, params))

	hash := strings.TrimSpace(out.String())
	assert.True(t, strings.HasPrefix(hash, "argon2id$"))
	assert.True(t, httpserver.VerifyPassword("hunter2", hash))

	assert.Error(t, hashPassword(strings.NewReader("\n"), &out, params))
}
