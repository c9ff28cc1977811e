// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Question selection modes for the AI-only path.
const (
	SelectionModel = "model"
	SelectionLocal = "local"
)

// Config holds all application configuration parsed from environment variables.
// Secrets have no defaults; an empty key disables the corresponding upstream.
type Config struct {
	AppEnv           string `env:"APP_ENV" envDefault:"dev"`
	Port             int    `env:"PORT" envDefault:"8080"`
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin  int    `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`
	MaxUploadMB      int64  `env:"MAX_UPLOAD_MB" envDefault:"10"`

	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"240s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	// RequestTimeout bounds a single API request. It must cover CVAnalyzeBudget.
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"210s"`

	// Gemini generateContent
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	GeminiBaseURL    string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiModel      string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiTimeout    time.Duration `env:"GEMINI_TIMEOUT" envDefault:"30s"`
	GeminiMaxRetries uint64        `env:"GEMINI_MAX_RETRIES" envDefault:"1"`
	// LLMRatePerMin caps upstream calls across replicas; 0 disables the limiter.
	LLMRatePerMin int `env:"LLM_RATE_PER_MIN" envDefault:"0"`

	QuestionSelection     string `env:"QUESTION_SELECTION" envDefault:"model"`
	QuestionSelectionSeed uint64 `env:"QUESTION_SELECTION_SEED" envDefault:"0"`
	PromptMaxCVTokens     int    `env:"PROMPT_MAX_CV_TOKENS" envDefault:"6000"`

	// Azure Form Recognizer layout analysis
	DocIntelEndpoint        string        `env:"DOCINTEL_ENDPOINT"`
	DocIntelAPIKey          string        `env:"DOCINTEL_API_KEY"`
	DocIntelModel           string        `env:"DOCINTEL_MODEL" envDefault:"prebuilt-layout"`
	DocIntelAPIVersion      string        `env:"DOCINTEL_API_VERSION" envDefault:"2023-07-31"`
	DocIntelPollInterval    time.Duration `env:"DOCINTEL_POLL_INTERVAL" envDefault:"3s"`
	DocIntelPollMaxAttempts int           `env:"DOCINTEL_POLL_MAX_ATTEMPTS" envDefault:"30"`
	DocIntelPollTimeout     time.Duration `env:"DOCINTEL_POLL_TIMEOUT" envDefault:"100s"`
	DocIntelSubmitTimeout   time.Duration `env:"DOCINTEL_SUBMIT_TIMEOUT" envDefault:"30s"`

	// Azure Speech token issuance
	SpeechKey      string `env:"SPEECH_KEY"`
	SpeechRegion   string `env:"SPEECH_REGION"`
	SpeechTokenURL string `env:"SPEECH_TOKEN_URL"`

	// ElevenLabs text-to-speech
	ElevenLabsAPIKey  string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsBaseURL string `env:"ELEVENLABS_BASE_URL" envDefault:"https://api.elevenlabs.io"`
	ElevenLabsVoiceID string `env:"ELEVENLABS_VOICE_ID" envDefault:"21m00Tcm4TlvDq8ikWAM"`
	ElevenLabsModelID string `env:"ELEVENLABS_MODEL_ID" envDefault:"eleven_monolingual_v1"`

	// Storage
	DBURL                string        `env:"DB_URL"`
	RedisURL             string        `env:"REDIS_URL"`
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"6h"`
	AttemptRetentionDays int           `env:"ATTEMPT_RETENTION_DAYS" envDefault:"90"`
	CleanupInterval      time.Duration `env:"CLEANUP_INTERVAL" envDefault:"24h"`

	// Messaging
	KafkaBrokers        []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopicEvaluated string   `env:"KAFKA_TOPIC_EVALUATED" envDefault:"interview.evaluated"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"ai-mock-interview"`

	AdminUsername string `env:"ADMIN_USERNAME"`
	// AdminPasswordHash is an argon2id hash produced by `interviewctl hash-password`.
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch strings.ToLower(c.QuestionSelection) {
	case SelectionModel, SelectionLocal:
	default:
		return fmt.Errorf("QUESTION_SELECTION must be %q or %q, got %q", SelectionModel, SelectionLocal, c.QuestionSelection)
	}
	if c.DocIntelPollInterval <= 0 {
		return fmt.Errorf("DOCINTEL_POLL_INTERVAL must be positive")
	}
	if c.DocIntelPollMaxAttempts <= 0 {
		return fmt.Errorf("DOCINTEL_POLL_MAX_ATTEMPTS must be positive")
	}
	if c.RequestTimeout > 0 && c.RequestTimeout < c.CVAnalyzeBudget() {
		return fmt.Errorf("HTTP_REQUEST_TIMEOUT (%s) is shorter than the CV analysis budget (%s)", c.RequestTimeout, c.CVAnalyzeBudget())
	}
	if c.RequestTimeout > 0 && c.HTTPWriteTimeout > 0 && c.HTTPWriteTimeout <= c.RequestTimeout {
		return fmt.Errorf("HTTP_WRITE_TIMEOUT (%s) must exceed HTTP_REQUEST_TIMEOUT (%s)", c.HTTPWriteTimeout, c.RequestTimeout)
	}
	return nil
}

// CVAnalyzeBudget is the longest /api/cv/analyze can take before its own
// deadlines fire: one submit, the polling window, then a Gemini call with its
// retries. The Gemini calls after polling run in parallel.
func (c Config) CVAnalyzeBudget() time.Duration {
	poll := c.DocIntelPollTimeout
	if poll <= 0 {
		poll = time.Duration(c.DocIntelPollMaxAttempts) * c.DocIntelPollInterval
	}
	return c.DocIntelSubmitTimeout + poll + time.Duration(c.GeminiMaxRetries+1)*c.GeminiTimeout
}

// AdminEnabled returns true if the interviewer endpoints require credentials.
func (c Config) AdminEnabled() bool {
	return c.AdminUsername != "" && c.AdminPasswordHash != ""
}

// DBEnabled reports whether a Postgres URL is configured.
func (c Config) DBEnabled() bool { return c.DBURL != "" }

// RedisEnabled reports whether a Redis URL is configured.
func (c Config) RedisEnabled() bool { return c.RedisURL != "" }

// KafkaEnabled reports whether evaluation events should be published.
func (c Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// LocalSelection reports whether the AI-only path picks questions in-process.
func (c Config) LocalSelection() bool {
	return strings.ToLower(c.QuestionSelection) == SelectionLocal
}

// SpeechTokenEndpoint returns the STS issueToken URL for the configured region.
func (c Config) SpeechTokenEndpoint() string {
	if c.SpeechTokenURL != "" {
		return c.SpeechTokenURL
	}
	return fmt.Sprintf("https://%s.api.cognitive.microsoft.com/sts/v1.0/issueToken", c.SpeechRegion)
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }
