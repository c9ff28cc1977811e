package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

const (
	maxSpeechText  = 5000
	maxAudioBytes  = 20 << 20
	elevenProvider = "elevenlabs"
)

// ElevenLabs implements domain.SpeechSynthesizer with the ElevenLabs text-to-speech API.
type ElevenLabs struct {
	apiKey     string
	baseURL    string
	voiceID    string
	modelID    string
	httpClient *http.Client
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// NewElevenLabs constructs a synthesizer. A nil hc uses a traced client with a 30s timeout.
func NewElevenLabs(cfg config.Config, hc *http.Client) *ElevenLabs {
	if hc == nil {
		hc = observability.NewHTTPClient(30 * time.Second)
	}
	return &ElevenLabs{
		apiKey:     cfg.ElevenLabsAPIKey,
		baseURL:    strings.TrimRight(cfg.ElevenLabsBaseURL, "/"),
		voiceID:    cfg.ElevenLabsVoiceID,
		modelID:    cfg.ElevenLabsModelID,
		httpClient: hc,
	}
}

// Synthesize returns MPEG audio for text.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, error) {
	tracer := otel.Tracer("speech.elevenlabs")
	ctx, span := tracer.Start(ctx, "elevenlabs.Synthesize")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.InvalidArgument(`Request body must contain a non-empty "text" string.`)
	}
	if len([]rune(text)) > maxSpeechText {
		return nil, domain.InvalidArgument("text must be at most %d characters", maxSpeechText)
	}
	if e.apiKey == "" {
		return nil, fmt.Errorf("op=elevenlabs.Synthesize: %w: ELEVENLABS_API_KEY missing", domain.ErrInternal)
	}
	span.SetAttributes(attribute.Int("tts.chars", len(text)), attribute.String("tts.voice", e.voiceID))

	payload, err := json.Marshal(ttsRequest{
		Text:          text,
		ModelID:       e.modelID,
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.5},
	})
	if err != nil {
		return nil, fmt.Errorf("op=elevenlabs.Synthesize: %w", err)
	}
	u := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, url.PathEscape(e.voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("op=elevenlabs.Synthesize: %w", err)
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		observability.ObserveAIRequest(elevenProvider, "synthesize", "error", time.Since(start))
		if ctx.Err() != nil {
			return nil, fmt.Errorf("op=elevenlabs.Synthesize: %w: %v", domain.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("op=elevenlabs.Synthesize: %w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	observability.ObserveAIRequest(elevenProvider, "synthesize", fmt.Sprint(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("op=elevenlabs.Synthesize: %w", domain.NewGatewayError(elevenProvider, resp.StatusCode, body))
	}
	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("op=elevenlabs.Synthesize: %w: %v", domain.ErrUpstream, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("op=elevenlabs.Synthesize: %w", &domain.MalformedResponseError{Service: elevenProvider, Reason: "empty audio"})
	}
	return audio, nil
}
