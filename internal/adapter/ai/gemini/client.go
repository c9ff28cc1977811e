// Package gemini implements domain.LLMGateway on the Gemini generateContent API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/ai"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
	"github.com/fairyhunter13/ai-mock-interview/internal/service/ratelimiter"
)

const (
	provider = "gemini"
	// LimiterKey is the token bucket consulted before each upstream call.
	LimiterKey = "llm:gemini"
)

// Client implements domain.LLMGateway. Each call has its own timeout and at
// most MaxRetries extra attempts for transient failures.
type Client struct {
	models     *genai.Models
	model      string
	timeout    time.Duration
	maxRetries uint64
	limiter    ratelimiter.Limiter
	newBackOff func() backoff.BackOff
	validator  *evaluationValidator
}

type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	limiter    ratelimiter.Limiter
	newBackOff func() backoff.BackOff
}

// WithHTTPClient replaces the traced default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

// WithLimiter guards every upstream call with l under LimiterKey.
func WithLimiter(l ratelimiter.Limiter) Option {
	return func(o *clientOptions) { o.limiter = l }
}

// WithBackOff sets the wait policy between the first attempt and the retry.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(o *clientOptions) { o.newBackOff = f }
}

// New constructs a Gemini client from cfg. It fails when no API key is configured.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY missing", domain.ErrInvalidArgument)
	}
	o := clientOptions{
		newBackOff: func() backoff.BackOff {
			expo := backoff.NewExponentialBackOff()
			expo.InitialInterval = 500 * time.Millisecond
			expo.MaxInterval = 2 * time.Second
			return expo
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = observability.NewHTTPClient(cfg.GeminiTimeout)
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.GeminiAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    strings.TrimRight(cfg.GeminiBaseURL, "/") + "/",
			APIVersion: "v1beta",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("op=gemini.new: %w", err)
	}
	v, err := newEvaluationValidator()
	if err != nil {
		return nil, err
	}
	timeout := cfg.GeminiTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		models:     gc.Models,
		model:      cfg.GeminiModel,
		timeout:    timeout,
		maxRetries: cfg.GeminiMaxRetries,
		limiter:    o.limiter,
		newBackOff: o.newBackOff,
		validator:  v,
	}, nil
}

// GenerateQuestions asks for an ARRAY of STRING and drops blank entries.
func (c *Client) GenerateQuestions(ctx domain.Context, prompt string) ([]string, error) {
	text, err := c.generate(ctx, "questions", prompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   questionsSchema(),
	})
	if err != nil {
		return nil, err
	}
	var raw []string
	if err := json.Unmarshal([]byte(ai.CleanJSONResponse(text)), &raw); err != nil {
		return nil, fmt.Errorf("op=gemini.questions: %w", &domain.MalformedResponseError{Service: provider, Reason: "questions are not a JSON string array"})
	}
	out := make([]string, 0, len(raw))
	for _, q := range raw {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("op=gemini.questions: %w", &domain.MalformedResponseError{Service: provider, Reason: "no questions returned"})
	}
	return out, nil
}

// Evaluate asks for the evaluation OBJECT and validates it before decoding.
func (c *Client) Evaluate(ctx domain.Context, prompt string) (domain.Evaluation, error) {
	text, err := c.generate(ctx, "evaluate", prompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   evaluationSchema(),
	})
	if err != nil {
		return domain.Evaluation{}, err
	}
	doc := ai.CleanJSONResponse(text)
	if err := c.validator.Validate(doc); err != nil {
		return domain.Evaluation{}, fmt.Errorf("op=gemini.evaluate: %w", err)
	}
	var ev domain.Evaluation
	if err := json.Unmarshal([]byte(doc), &ev); err != nil {
		return domain.Evaluation{}, fmt.Errorf("op=gemini.evaluate: %w", &domain.MalformedResponseError{Service: provider, Reason: err.Error()})
	}
	return ev, nil
}

// GenerateText sends prompt without a response schema. A blank reply is
// returned as "" and left for the caller to interpret.
func (c *Client) GenerateText(ctx domain.Context, prompt string) (string, error) {
	text, err := c.generate(ctx, "text", prompt, &genai.GenerateContentConfig{ResponseMIMEType: "text/plain"})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) generate(ctx context.Context, op, prompt string, gcfg *genai.GenerateContentConfig) (string, error) {
	tracer := otel.Tracer("ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+op)
	defer span.End()
	span.SetAttributes(attribute.String("ai.model", c.model), attribute.Int("ai.prompt_chars", len(prompt)))
	lg := observability.LoggerFromContext(ctx)

	if c.limiter != nil {
		allowed, retryAfter, err := c.limiter.Allow(ctx, LimiterKey, 1)
		if err != nil {
			lg.Warn("llm limiter unavailable; proceeding", slog.Any("error", err))
		}
		if !allowed {
			observability.ObserveAIRequest(provider, op, "rate_limited", 0)
			return "", fmt.Errorf("op=gemini.%s: %w: retry after %s", op, domain.ErrUpstreamRateLimit, retryAfter.Round(time.Second))
		}
	}

	var text string
	attempt := 0
	call := func() error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		start := time.Now()
		resp, err := c.models.GenerateContent(callCtx, c.model, genai.Text(prompt), gcfg)
		if err != nil {
			cerr := c.classify(ctx, err)
			observability.ObserveAIRequest(provider, op, statusLabel(cerr), time.Since(start))
			if retryable(ctx, cerr) {
				lg.Warn("gemini call failed; may retry",
					slog.String("op", op),
					slog.Int("attempt", attempt),
					slog.Any("error", cerr))
				return cerr
			}
			return backoff.Permanent(cerr)
		}
		t, err := firstText(resp)
		if err == nil && gcfg.ResponseSchema != nil && strings.TrimSpace(t) == "" {
			err = &domain.MalformedResponseError{Service: provider, Reason: "empty text part"}
		}
		if err != nil {
			observability.ObserveAIRequest(provider, op, "malformed", time.Since(start))
			return backoff.Permanent(err)
		}
		observability.ObserveAIRequest(provider, op, "ok", time.Since(start))
		text = t
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(call, bo); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "gemini call failed")
		lg.Error("gemini call failed",
			slog.String("op", op),
			slog.Int("attempts", attempt),
			slog.Any("error", err))
		return "", fmt.Errorf("op=gemini.%s: %w", op, err)
	}
	span.SetAttributes(attribute.Int("ai.attempts", attempt))
	return text, nil
}

// classify maps SDK and transport errors onto domain errors.
func (c *Client) classify(parent context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewGatewayError(provider, apiErr.Code, []byte(apiErr.Message))
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return domain.NewGatewayError(provider, apiErrPtr.Code, []byte(apiErrPtr.Message))
	}
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return fmt.Errorf("%w: gemini call exceeded %s", domain.ErrUpstreamTimeout, c.timeout)
	}
	return fmt.Errorf("%w: gemini transport: %v", domain.ErrUpstream, err)
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

func retryable(parent context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	var ge *domain.GatewayError
	if errors.As(err, &ge) {
		return ge.Transient()
	}
	return errors.Is(err, domain.ErrUpstreamTimeout) || errors.Is(err, domain.ErrUpstream)
}

func statusLabel(err error) string {
	var ge *domain.GatewayError
	switch {
	case errors.As(err, &ge) && ge.Status == http.StatusTooManyRequests:
		return "rate_limited"
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return "timeout"
	default:
		return "error"
	}
}

// firstText returns the first candidate's first text part, which may be blank.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", &domain.MalformedResponseError{Service: provider, Reason: "no candidates"}
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil {
		return "", &domain.MalformedResponseError{Service: provider, Reason: "candidate has no content parts"}
	}
	return content.Parts[0].Text, nil
}
