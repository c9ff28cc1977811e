package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
	"github.com/fairyhunter13/ai-mock-interview/internal/usecase"
)

// sessionView is the session as returned to clients: the stored state plus
// the sentence to speak and whether a capture is open.
type sessionView struct {
	domain.Session
	Prompt    string `json:"prompt,omitempty"`
	Listening bool   `json:"listening"`
}

func (s *Server) view(sess domain.Session) sessionView {
	v := sessionView{Session: sess, Listening: s.Sessions.Listening(sess.ID)}
	if sess.State == domain.SessionSpeaking || sess.State == domain.SessionListening {
		v.Prompt = sess.SpokenPrompt()
	}
	return v
}

type createSessionRequest struct {
	InterviewID     string   `json:"interviewId" validate:"omitempty,max=64"`
	JobTitle        string   `json:"jobTitle" validate:"max=200"`
	JobDescription  string   `json:"jobDescription" validate:"max=20000"`
	CVText          string   `json:"cvText" validate:"max=200000"`
	CandidateName   string   `json:"candidateName" validate:"max=200"`
	CustomQuestions []string `json:"customQuestions" validate:"max=20,dive,max=1000"`
}

// CreateSessionHandler generates the question set and opens a session.
func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if details, err := validateStruct(req); err != nil {
			writeError(w, r, err, details)
			return
		}
		sess, err := s.Sessions.Create(r.Context(), usecase.CreateSessionInput{
			InterviewID:     req.InterviewID,
			Job:             domain.JobPosting{Title: req.JobTitle, Description: req.JobDescription},
			CVText:          req.CVText,
			CandidateName:   req.CandidateName,
			CustomQuestions: req.CustomQuestions,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.Header().Set("Location", "/api/sessions/"+sess.ID)
		writeJSON(w, http.StatusCreated, s.view(sess))
	}
}

// sessionAction adapts a session transition to a handler.
func (s *Server) sessionAction(fn func(r *http.Request, id string) (domain.Session, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := fn(r, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, s.view(sess))
	}
}

// GetSessionHandler returns the current session state.
func (s *Server) GetSessionHandler() http.HandlerFunc {
	return s.sessionAction(func(r *http.Request, id string) (domain.Session, error) {
		return s.Sessions.Get(r.Context(), id)
	})
}

// StartSessionHandler moves a new session to speaking the first question.
func (s *Server) StartSessionHandler() http.HandlerFunc {
	return s.sessionAction(func(r *http.Request, id string) (domain.Session, error) {
		return s.Sessions.Start(r.Context(), id)
	})
}

// ListenSessionHandler opens the capture for the current answer.
func (s *Server) ListenSessionHandler() http.HandlerFunc {
	return s.sessionAction(func(r *http.Request, id string) (domain.Session, error) {
		return s.Sessions.Listen(r.Context(), id)
	})
}

// NextSessionHandler closes the capture and records the answer. The body may
// carry an explicit {"answer"} that replaces the captured transcript.
func (s *Server) NextSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answer string `json:"answer" validate:"max=20000"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if details, err := validateStruct(req); err != nil {
			writeError(w, r, err, details)
			return
		}
		s.sessionAction(func(r *http.Request, id string) (domain.Session, error) {
			return s.Sessions.Next(r.Context(), id, req.Answer)
		})(w, r)
	}
}

// EvaluateSessionHandler (re)runs the evaluation of a finished session.
func (s *Server) EvaluateSessionHandler() http.HandlerFunc {
	return s.sessionAction(func(r *http.Request, id string) (domain.Session, error) {
		return s.Sessions.Evaluate(r.Context(), id)
	})
}

// TranscriptHandler relays one recognition result into the open capture.
func (s *Server) TranscriptHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev domain.TranscriptEvent
		if err := decodeJSON(w, r, &ev); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Sessions.PushTranscript(r.Context(), chi.URLParam(r, "id"), ev); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// AttemptHandler returns the persisted attempt of an evaluated session.
func (s *Server) AttemptHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := s.Sessions.Attempt(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}
