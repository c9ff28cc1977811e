package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
	"github.com/fairyhunter13/ai-mock-interview/internal/usecase"
)

// Server aggregates handlers dependencies.
type Server struct {
	Cfg        config.Config
	Questions  *usecase.QuestionService
	Evaluator  usecase.EvaluationService
	Names      usecase.NameService
	CVIntake   usecase.CVIntakeService
	Interviews usecase.InterviewService
	Sessions   *usecase.SessionService
	Speech     domain.SpeechTokenIssuer
	TTS        domain.SpeechSynthesizer

	// Readiness probes; nil means the dependency is not configured.
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

// MountAPI registers the /api routes on r. Interview management is only
// mounted when a repository is configured and sits behind Basic auth when
// admin credentials are set.
func (s *Server) MountAPI(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-questions", s.GenerateQuestionsHandler())
		r.Post("/evaluate-answers", s.EvaluateAnswersHandler())
		r.Post("/extract-name", s.ExtractNameHandler())
		r.Get("/get-speech-token", s.SpeechTokenHandler())
		r.Post("/text-to-speech", s.TextToSpeechHandler())
		r.Post("/cv/analyze", s.AnalyzeCVHandler())

		if s.Interviews.Repo != nil {
			r.Group(func(r chi.Router) {
				r.Use(BasicAuth(s.Cfg.AdminUsername, s.Cfg.AdminPasswordHash))
				r.Post("/interviews", s.CreateInterviewHandler())
				r.Get("/interviews", s.ListInterviewsHandler())
				r.Get("/interviews/{id}", s.GetInterviewHandler())
				r.Put("/interviews/{id}", s.UpdateInterviewHandler())
				r.Delete("/interviews/{id}", s.DeleteInterviewHandler())
			})
		}

		r.Post("/sessions", s.CreateSessionHandler())
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.GetSessionHandler())
			r.Post("/start", s.StartSessionHandler())
			r.Post("/listen", s.ListenSessionHandler())
			r.Post("/transcript", s.TranscriptHandler())
			r.Post("/next", s.NextSessionHandler())
			r.Post("/evaluate", s.EvaluateSessionHandler())
			r.Get("/attempt", s.AttemptHandler())
		})
	})
}

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler returns a readiness handler that probes the configured stores.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		probes := []struct {
			name string
			fn   func(context.Context) error
		}{{"db", s.DBCheck}, {"redis", s.RedisCheck}}

		checks := make([]check, 0, len(probes))
		ok := true
		for _, p := range probes {
			if p.fn == nil {
				continue
			}
			if err := p.fn(ctx); err != nil {
				ok = false
				checks = append(checks, check{Name: p.name, Details: err.Error()})
				continue
			}
			checks = append(checks, check{Name: p.name, OK: true})
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
