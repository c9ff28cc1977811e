package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
	"github.com/fairyhunter13/ai-mock-interview/internal/usecase"
)

func (s *Server) decodeInterview(w http.ResponseWriter, r *http.Request) (usecase.InterviewInput, bool) {
	var in usecase.InterviewInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, nil)
		return in, false
	}
	if details, err := validateStruct(in); err != nil {
		writeError(w, r, err, details)
		return in, false
	}
	return in, true
}

// CreateInterviewHandler stores a new interview configuration.
func (s *Server) CreateInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := s.decodeInterview(w, r)
		if !ok {
			return
		}
		iv, err := s.Interviews.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.Header().Set("Location", "/api/interviews/"+iv.ID)
		writeJSON(w, http.StatusCreated, iv)
	}
}

// ListInterviewsHandler lists interviews newest first; ?status= filters.
func (s *Server) ListInterviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, offset, err := parsePagination(q)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		items, err := s.Interviews.List(r.Context(), domain.InterviewStatus(q.Get("status")), limit, offset)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// GetInterviewHandler returns one interview.
func (s *Server) GetInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iv, err := s.Interviews.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, iv)
	}
}

// UpdateInterviewHandler replaces the writable fields of an interview.
func (s *Server) UpdateInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := s.decodeInterview(w, r)
		if !ok {
			return
		}
		iv, err := s.Interviews.Update(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, iv)
	}
}

// DeleteInterviewHandler removes an interview.
func (s *Server) DeleteInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Interviews.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
