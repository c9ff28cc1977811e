package httpserver_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/sessionstore/memory"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain/mocks"
	"github.com/fairyhunter13/ai-mock-interview/internal/usecase"
)

type testEnv struct {
	srv        *httpserver.Server
	handler    http.Handler
	llm        *mocks.MockLLMGateway
	analyzer   *mocks.MockDocumentAnalyzer
	speech     *mocks.MockSpeechTokenIssuer
	tts        *mocks.MockSpeechSynthesizer
	interviews *mocks.MockInterviewRepository
	attempts   *mocks.MockAttemptRepository
}

func newTestEnv(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	if cfg.MaxUploadMB == 0 {
		cfg.MaxUploadMB = 1
	}
	e := &testEnv{
		llm:        &mocks.MockLLMGateway{},
		analyzer:   &mocks.MockDocumentAnalyzer{},
		speech:     &mocks.MockSpeechTokenIssuer{},
		tts:        &mocks.MockSpeechSynthesizer{},
		interviews: &mocks.MockInterviewRepository{},
		attempts:   &mocks.MockAttemptRepository{},
	}
	questions := usecase.NewQuestionService(e.llm, usecase.QuestionOptions{})
	evaluator := usecase.NewEvaluationService(e.llm)
	names := usecase.NewNameService(e.llm, 0)
	sessions := usecase.NewSessionService(memory.New(time.Hour), questions, evaluator)
	sessions.Interviews = e.interviews
	sessions.Attempts = e.attempts
	t.Cleanup(func() { _ = sessions.Close() })

	e.srv = &httpserver.Server{
		Cfg:        cfg,
		Questions:  questions,
		Evaluator:  evaluator,
		Names:      names,
		CVIntake:   usecase.NewCVIntakeService(e.analyzer, questions, names),
		Interviews: usecase.NewInterviewService(e.interviews),
		Sessions:   sessions,
		Speech:     e.speech,
		TTS:        e.tts,
	}
	r := chi.NewRouter()
	e.srv.MountAPI(r)
	e.handler = r
	return e
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// jsonReader returns nil for a nil body so GET and DELETE requests stay empty.
func jsonReader(raw []byte, body any) io.Reader {
	if body == nil {
		return nil
	}
	return bytes.NewReader(raw)
}

type errBody struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) errBody {
	t.Helper()
	var b errBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b), rec.Body.String())
	return b
}
