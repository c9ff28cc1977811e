// Package speech issues speech tokens and synthesizes audio through hosted
// speech services.
package speech

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// AzureTokenIssuer implements domain.SpeechTokenIssuer against the Azure STS issueToken endpoint.
type AzureTokenIssuer struct {
	key        string
	region     string
	endpoint   string
	httpClient *http.Client
}

// NewAzureTokenIssuer constructs an issuer. A nil hc uses a traced client with a 10s timeout.
func NewAzureTokenIssuer(cfg config.Config, hc *http.Client) *AzureTokenIssuer {
	if hc == nil {
		hc = observability.NewHTTPClient(10 * time.Second)
	}
	return &AzureTokenIssuer{
		key:        cfg.SpeechKey,
		region:     cfg.SpeechRegion,
		endpoint:   cfg.SpeechTokenEndpoint(),
		httpClient: hc,
	}
}

// IssueToken exchanges the subscription key for a short-lived token. Every
// failure wraps domain.ErrUnauthorized; the cause is logged, not returned to clients.
func (a *AzureTokenIssuer) IssueToken(ctx context.Context) (domain.SpeechToken, error) {
	lg := observability.LoggerFromContext(ctx)
	if a.key == "" || a.region == "" {
		lg.Error("speech token requested without SPEECH_KEY/SPEECH_REGION")
		return domain.SpeechToken{}, fmt.Errorf("%w: speech credentials not configured", domain.ErrUnauthorized)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, http.NoBody)
	if err != nil {
		return domain.SpeechToken{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		observability.ObserveAIRequest("azure_speech", "issue_token", "error", time.Since(start))
		lg.Error("speech token request failed", slog.Any("error", err))
		return domain.SpeechToken{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 16<<10))
	observability.ObserveAIRequest("azure_speech", "issue_token", fmt.Sprint(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		gw := domain.NewGatewayError("azure_speech", resp.StatusCode, body)
		lg.Error("speech token rejected", slog.Int("status", resp.StatusCode), slog.String("body", gw.Body))
		return domain.SpeechToken{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, gw)
	}
	token := strings.TrimSpace(string(body))
	if token == "" {
		return domain.SpeechToken{}, fmt.Errorf("%w: empty token", domain.ErrUnauthorized)
	}
	return domain.SpeechToken{Token: token, Region: a.region}, nil
}
