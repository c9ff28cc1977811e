package domain

import (
	"fmt"
	"strings"
	"time"
)

// SessionState is the position of an interview session in its lifecycle.
type SessionState string

const (
	SessionNotStarted SessionState = "not_started"
	SessionSpeaking   SessionState = "speaking"
	SessionListening  SessionState = "listening"
	SessionEvaluating SessionState = "evaluating"
	SessionSummary    SessionState = "summary"
)

// DefaultCandidateName is used in spoken prompts when no name was extracted.
const DefaultCandidateName = "Candidate"

var spokenPrefixes = [...]string{
	"Alright, let's kick things off. ",
	"Building on that, ",
	"Let's move to the last question. ",
}

// Session is the explicit state of one interview attempt. It is owned by the
// session service; views read it and request transitions through its methods.
// Invariants: len(Answers) <= len(Questions); Answers[i].Question == Questions[i].
type Session struct {
	ID            string       `json:"id"`
	InterviewID   string       `json:"interviewId,omitempty"`
	Job           JobPosting   `json:"job"`
	CandidateName string       `json:"candidateName"`
	Questions     []string     `json:"questions"`
	Current       int          `json:"current"`
	State         SessionState `json:"state"`
	Answers       []AnsweredQA `json:"answers"`
	Evaluation    *Evaluation  `json:"evaluation,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// NewSession builds a not-started session over an immutable question set.
func NewSession(id string, job JobPosting, candidateName string, questions []string, now time.Time) (Session, error) {
	if len(questions) == 0 {
		return Session{}, InvalidArgument("a session needs at least one question")
	}
	if len(questions) > QuestionSetSize {
		return Session{}, InvalidArgument("a session takes at most %d questions", QuestionSetSize)
	}
	if strings.TrimSpace(job.Title) == "" {
		return Session{}, InvalidArgument("job title is required")
	}
	qs := make([]string, len(questions))
	copy(qs, questions)
	return Session{
		ID:            id,
		Job:           job,
		CandidateName: strings.TrimSpace(candidateName),
		Questions:     qs,
		State:         SessionNotStarted,
		Answers:       []AnsweredQA{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (s *Session) transitionError(action string) error {
	return fmt.Errorf("%w: cannot %s a session in state %s", ErrConflict, action, s.State)
}

// Start presents the first question.
func (s *Session) Start(now time.Time) error {
	if s.State != SessionNotStarted {
		return s.transitionError("start")
	}
	s.State = SessionSpeaking
	s.Current = 0
	s.UpdatedAt = now
	return nil
}

// BeginListening marks the end of the spoken question and the start of capture.
func (s *Session) BeginListening(now time.Time) error {
	if s.State != SessionSpeaking {
		return s.transitionError("listen on")
	}
	s.State = SessionListening
	s.UpdatedAt = now
	return nil
}

// CanAdvance reports whether Next/Finish is enabled.
func (s Session) CanAdvance() bool { return s.State == SessionListening }

// IsLastQuestion reports whether the current question is the final one.
func (s Session) IsLastQuestion() bool { return s.Current == len(s.Questions)-1 }

// Advance records the answer for the current question and moves to the next one,
// or to evaluating after the last question.
func (s *Session) Advance(answer string, now time.Time) error {
	if !s.CanAdvance() {
		return s.transitionError("advance")
	}
	if len(s.Answers) >= len(s.Questions) {
		return fmt.Errorf("%w: all questions already answered", ErrConflict)
	}
	s.Answers = append(s.Answers, AnsweredQA{Question: s.Questions[s.Current], Answer: strings.TrimSpace(answer)})
	if s.IsLastQuestion() {
		s.State = SessionEvaluating
	} else {
		s.Current++
		s.State = SessionSpeaking
	}
	s.UpdatedAt = now
	return nil
}

// CompleteEvaluation stores ev, replacing any earlier evaluation.
func (s *Session) CompleteEvaluation(ev Evaluation, now time.Time) error {
	if s.State != SessionEvaluating && s.State != SessionSummary {
		return s.transitionError("evaluate")
	}
	s.Evaluation = &ev
	s.State = SessionSummary
	s.UpdatedAt = now
	return nil
}

// CurrentQuestion returns the question being asked, if any.
func (s Session) CurrentQuestion() (string, bool) {
	if s.State != SessionSpeaking && s.State != SessionListening {
		return "", false
	}
	return s.Questions[s.Current], true
}

// SpokenPrompt is the text read aloud for the current question.
func (s Session) SpokenPrompt() string {
	q, ok := s.CurrentQuestion()
	if !ok {
		return ""
	}
	var prefix string
	switch {
	case s.Current == 0:
		name := s.CandidateName
		if name == "" {
			name = DefaultCandidateName
		}
		prefix = fmt.Sprintf("Hi %s, Welcome to the %s interview. %s", name, s.Job.Title, spokenPrefixes[0])
	case s.IsLastQuestion():
		prefix = spokenPrefixes[2]
	default:
		prefix = spokenPrefixes[1]
	}
	return prefix + q
}
