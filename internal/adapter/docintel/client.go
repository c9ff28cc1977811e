// Package docintel extracts CV text with the Azure Form Recognizer layout model.
//
// Analysis is asynchronous: the document is submitted once, then the
// operation location returned by the service is polled on a fixed interval
// until it succeeds, fails, or the attempt/time budget runs out.
package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
	"github.com/fairyhunter13/ai-mock-interview/pkg/textx"
)

const service = "docintel"

// Analysis statuses reported by the operation location.
const (
	StatusNotStarted = "notStarted"
	StatusRunning    = "running"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
)

// Client implements domain.DocumentAnalyzer.
type Client struct {
	endpoint      string
	apiKey        string
	model         string
	apiVersion    string
	httpClient    *http.Client
	interval      time.Duration
	maxAttempts   int
	pollTimeout   time.Duration
	submitTimeout time.Duration
}

// New constructs a client from cfg. A nil hc uses a traced client.
func New(cfg config.Config, hc *http.Client) *Client {
	if hc == nil {
		hc = observability.NewHTTPClient(0)
	}
	return &Client{
		endpoint:      strings.TrimRight(cfg.DocIntelEndpoint, "/"),
		apiKey:        cfg.DocIntelAPIKey,
		model:         cfg.DocIntelModel,
		apiVersion:    cfg.DocIntelAPIVersion,
		httpClient:    hc,
		interval:      cfg.DocIntelPollInterval,
		maxAttempts:   cfg.DocIntelPollMaxAttempts,
		pollTimeout:   cfg.DocIntelPollTimeout,
		submitTimeout: cfg.DocIntelSubmitTimeout,
	}
}

type operation struct {
	Status        string `json:"status"`
	AnalyzeResult *struct {
		Content string `json:"content"`
	} `json:"analyzeResult"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze submits document and returns the extracted plain text.
func (c *Client) Analyze(ctx context.Context, document []byte, contentType string) (string, error) {
	tracer := otel.Tracer("docintel")
	ctx, span := tracer.Start(ctx, "docintel.Analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("docintel.model", c.model),
		attribute.Int("docintel.bytes", len(document)),
	)

	if c.endpoint == "" || c.apiKey == "" {
		return "", fmt.Errorf("op=docintel.Analyze: %w: document analysis is not configured", domain.ErrInternal)
	}
	if len(document) == 0 {
		return "", domain.InvalidArgument("uploaded file is empty")
	}

	loc, err := c.submit(ctx, document, contentType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit")
		return "", fmt.Errorf("op=docintel.Analyze: %w", err)
	}
	content, err := c.poll(ctx, loc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "poll")
		return "", fmt.Errorf("op=docintel.Analyze: %w", err)
	}
	text := textx.SanitizeText(content)
	span.SetAttributes(attribute.Int("docintel.chars", len(text)))
	return text, nil
}

func (c *Client) submit(ctx context.Context, document []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/formrecognizer/documentModels/%s:analyze?api-version=%s",
		c.endpoint, url.PathEscape(c.model), url.QueryEscape(c.apiVersion))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(document))
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(ctx, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.NewGatewayError(service, resp.StatusCode, body)
	}

	loc := resp.Header.Get("Operation-Location")
	if loc == "" {
		return "", &domain.SubmissionError{Reason: "response has no Operation-Location header"}
	}
	if err := c.sameHost(loc); err != nil {
		return "", err
	}
	return loc, nil
}

// sameHost refuses operation locations outside the configured endpoint, which
// would otherwise receive the subscription key.
func (c *Client) sameHost(loc string) error {
	want, err := url.Parse(c.endpoint)
	if err != nil {
		return &domain.SubmissionError{Reason: "invalid endpoint"}
	}
	got, err := url.Parse(loc)
	if err != nil || !strings.EqualFold(got.Host, want.Host) {
		return &domain.SubmissionError{Reason: "Operation-Location host does not match endpoint"}
	}
	return nil
}

func (c *Client) poll(ctx context.Context, loc string) (string, error) {
	lg := observability.LoggerFromContext(ctx)
	start := time.Now()
	pollCtx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	lastStatus := ""
	timeout := func(attempts int) error {
		return &domain.PollTimeoutError{Attempts: attempts, Elapsed: time.Since(start), LastStatus: lastStatus}
	}

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", timeout(attempt - 1)
		case <-timer.C:
		}

		op, err := c.check(pollCtx, loc)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if pollCtx.Err() != nil {
				return "", timeout(attempt)
			}
			var gw *domain.GatewayError
			if !errors.As(err, &gw) || !gw.Transient() {
				return "", err
			}
			lastStatus = fmt.Sprintf("http_%d", gw.Status)
			observability.ObservePoll(lastStatus)
			lg.Warn("docintel poll throttled", slog.Int("attempt", attempt), slog.Int("status", gw.Status))
			timer.Reset(c.interval)
			continue
		}

		lastStatus = op.Status
		observability.ObservePoll(op.Status)
		switch op.Status {
		case StatusSucceeded:
			if op.AnalyzeResult == nil {
				return "", &domain.MalformedResponseError{Service: service, Reason: "succeeded without analyzeResult"}
			}
			lg.Debug("docintel analysis done", slog.Int("attempts", attempt), slog.Duration("elapsed", time.Since(start)))
			return op.AnalyzeResult.Content, nil
		case StatusFailed:
			msg := "analysis failed"
			if op.Error != nil && op.Error.Message != "" {
				msg = op.Error.Code + ": " + op.Error.Message
			}
			return "", fmt.Errorf("%w: %s: %s", domain.ErrUpstream, service, msg)
		}
		timer.Reset(c.interval)
	}
	return "", timeout(c.maxAttempts)
}

func (c *Client) check(ctx context.Context, loc string) (operation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return operation{}, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return operation{}, transportError(ctx, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return operation{}, transportError(ctx, err)
	}
	if resp.StatusCode != http.StatusOK {
		return operation{}, domain.NewGatewayError(service, resp.StatusCode, body)
	}
	var op operation
	if err := json.Unmarshal(body, &op); err != nil {
		return operation{}, &domain.MalformedResponseError{Service: service, Reason: "invalid JSON: " + err.Error()}
	}
	return op, nil
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", domain.ErrUpstreamTimeout, service, err)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrUpstream, service, err)
}
