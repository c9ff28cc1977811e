package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.IsProd())
	assert.Equal(t, 3*time.Second, cfg.DocIntelPollInterval)
	assert.Equal(t, "prebuilt-layout", cfg.DocIntelModel)
	assert.Equal(t, "2023-07-31", cfg.DocIntelAPIVersion)
	assert.Equal(t, uint64(1), cfg.GeminiMaxRetries)
	assert.Empty(t, cfg.GeminiAPIKey, "secrets must not have defaults")
	assert.Empty(t, cfg.SpeechKey)
	assert.False(t, cfg.LocalSelection())
	assert.False(t, cfg.DBEnabled())
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.KafkaEnabled())
}

func Test_Load_AdminEnabled(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD_HASH", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AdminEnabled())

	require.NoError(t, os.Unsetenv("ADMIN_USERNAME"))
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.AdminEnabled())
}

func Test_Load_KafkaBrokersParsed(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
}

func Test_Load_RejectsUnknownSelection(t *testing.T) {
	t.Setenv("QUESTION_SELECTION", "dice")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=config.Load")
}

func Test_Load_RejectsNonPositivePoll(t *testing.T) {
	t.Setenv("DOCINTEL_POLL_MAX_ATTEMPTS", "0")
	_, err := Load()
	require.Error(t, err)
}

func Test_Load_RequestTimeoutCoversCVAnalysis(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 190*time.Second, cfg.CVAnalyzeBudget())
	assert.GreaterOrEqual(t, cfg.RequestTimeout, cfg.CVAnalyzeBudget())
	assert.Greater(t, cfg.HTTPWriteTimeout, cfg.RequestTimeout)

	t.Setenv("HTTP_REQUEST_TIMEOUT", "110s")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_REQUEST_TIMEOUT")

	t.Setenv("HTTP_REQUEST_TIMEOUT", "0")
	_, err = Load()
	require.NoError(t, err, "a zero request timeout disables the check")

	t.Setenv("HTTP_REQUEST_TIMEOUT", "200s")
	t.Setenv("HTTP_WRITE_TIMEOUT", "120s")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_WRITE_TIMEOUT")
}

func Test_SpeechTokenEndpoint(t *testing.T) {
	cfg := Config{SpeechRegion: "westeurope"}
	assert.Equal(t, "https://westeurope.api.cognitive.microsoft.com/sts/v1.0/issueToken", cfg.SpeechTokenEndpoint())
	cfg.SpeechTokenURL = "http://localhost:1234/token"
	assert.Equal(t, "http://localhost:1234/token", cfg.SpeechTokenEndpoint())
}

func TestLoadInterviewSeeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "interviews.yaml")
	content := `interviews:
  - job_title: "  Senior Engineer "
    job_description: Build and run Go services.
    custom_questions:
      - Tell me about an outage you handled.
      - ""
    status: active
  - job_title: Data Analyst
    job_description: SQL and dashboards.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	seeds, err := LoadInterviewSeeds(path)
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	assert.Equal(t, "Senior Engineer", seeds[0].JobTitle)
	assert.Len(t, seeds[0].CustomQuestions, 2)
	assert.Empty(t, seeds[1].CustomQuestions)
}

func TestLoadInterviewSeeds_Errors(t *testing.T) {
	_, err := LoadInterviewSeeds("non-existent-file.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed file not found")

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("interviews: [\n"), 0o600))
	_, err = LoadInterviewSeeds(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("interviews: []\n"), 0o600))
	_, err = LoadInterviewSeeds(empty)
	require.Error(t, err)

	missing := filepath.Join(dir, "missing.yaml")
	require.NoError(t, os.WriteFile(missing, []byte("interviews:\n  - job_title: X\n"), 0o600))
	_, err = LoadInterviewSeeds(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job_description is required")
}
