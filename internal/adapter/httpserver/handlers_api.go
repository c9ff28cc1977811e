package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
	"github.com/fairyhunter13/ai-mock-interview/internal/usecase"
)

// msgSpeechAuthFailed is returned for any speech token failure.
const msgSpeechAuthFailed = "There was an error authorizing your speech key."

// allowedCVTypes lists the document types the layout service accepts.
var allowedCVTypes = []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"image/png",
	"image/jpeg",
	"image/tiff",
	"image/bmp",
}

type generateQuestionsRequest struct {
	JobDescription  string          `json:"jobDescription"`
	CVDetails       json.RawMessage `json:"cvDetails"`
	CustomQuestions []string        `json:"customQuestions"`
}

// cvDetailsText accepts cvDetails as plain text or as a label to text mapping.
func cvDetailsText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", domain.InvalidArgument("cvDetails must be a string or an object of strings")
		}
		return s, nil
	case '{':
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return "", domain.InvalidArgument("cvDetails must be a string or an object of strings")
		}
		return domain.CVSections(m).Format(), nil
	}
	return "", domain.InvalidArgument("cvDetails must be a string or an object of strings")
}

// GenerateQuestionsHandler returns the question set for a job and a CV.
func (s *Server) GenerateQuestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateQuestionsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		cv, err := cvDetailsText(req.CVDetails)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if strings.TrimSpace(req.JobDescription) == "" || strings.TrimSpace(cv) == "" {
			writeError(w, r, domain.InvalidArgument(usecase.MsgQuestionInputRequired), nil)
			return
		}
		questions, err := s.Questions.Generate(r.Context(), usecase.GenerateInput{
			Job:             domain.JobPosting{Description: req.JobDescription},
			CVText:          cv,
			CustomQuestions: req.CustomQuestions,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, questions)
	}
}

// EvaluateAnswersHandler rates a full transcript.
func (s *Server) EvaluateAnswersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			InterviewData []domain.AnsweredQA `json:"interviewData"`
			JobTitle      string              `json:"jobTitle"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		ev, err := s.Evaluator.Evaluate(r.Context(), usecase.EvaluateInput{JobTitle: req.JobTitle, Answers: req.InterviewData})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, ev)
	}
}

// ExtractNameHandler returns the candidate name found in CV text.
func (s *Server) ExtractNameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		name, err := s.Names.Extract(r.Context(), req.Text)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"name": name})
	}
}

// SpeechTokenHandler issues a short-lived token for the browser speech SDK.
// Every failure is reported as the same 401.
func (s *Server) SpeechTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, err := s.Speech.IssueToken(r.Context())
		if err != nil {
			observability.LoggerFromContext(r.Context()).Warn("speech token failed", slog.Any("error", err))
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: msgSpeechAuthFailed, Code: "UNAUTHORIZED"})
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, tok)
	}
}

// TextToSpeechHandler proxies text to the speech synthesizer and streams back MP3 audio.
func (s *Server) TextToSpeechHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text" validate:"required"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if details, err := validateStruct(req); err != nil {
			writeError(w, r, err, details)
			return
		}
		audio, err := s.TTS.Synthesize(r.Context(), req.Text)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(audio)
	}
}

// AnalyzeCVHandler extracts and classifies an uploaded CV. With a job
// description it also returns the question set.
func (s *Server) AnalyzeCVHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, domain.InvalidArgument("content-type must be multipart/form-data"), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		// Room for the other form fields.
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+maxJSONBody)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
				s.writeTooLarge(w)
				return
			}
			writeError(w, r, domain.InvalidArgument("invalid multipart form: %v", err), nil)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, domain.InvalidArgument("file is required"), map[string]string{"field": "file"})
			return
		}
		defer func() { _ = file.Close() }()
		doc, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, domain.InvalidArgument("file read: %v", err), nil)
			return
		}
		if int64(len(doc)) > maxBytes {
			s.writeTooLarge(w)
			return
		}
		if len(doc) == 0 {
			writeError(w, r, domain.InvalidArgument("file is empty"), nil)
			return
		}

		mt := mimetype.Detect(doc)
		if !mimetype.EqualsAny(mt.String(), allowedCVTypes...) {
			writeJSON(w, http.StatusUnsupportedMediaType, errorBody{
				Error:   "unsupported media type",
				Code:    "UNSUPPORTED_MEDIA_TYPE",
				Details: map[string]any{"mime": mt.String(), "allowed": allowedCVTypes},
			})
			return
		}

		res, err := s.CVIntake.Analyze(r.Context(), usecase.CVIntakeInput{
			Document:        doc,
			ContentType:     mt.String(),
			Job:             domain.JobPosting{Title: r.FormValue("jobTitle"), Description: r.FormValue("jobDescription")},
			CustomQuestions: r.Form["customQuestions"],
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) writeTooLarge(w http.ResponseWriter) {
	writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
		Error:   fmt.Sprintf("file exceeds %d MB", s.Cfg.MaxUploadMB),
		Code:    "PAYLOAD_TOO_LARGE",
		Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
	})
}
