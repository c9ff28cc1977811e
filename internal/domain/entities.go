package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstream          = errors.New("upstream error")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrSchemaInvalid     = errors.New("schema invalid")
	ErrInternal          = errors.New("internal error")
)

// QuestionSetSize is the number of questions presented in one attempt.
const QuestionSetSize = 3

// Rating is the fixed five-value scale used by evaluations.
type Rating string

const (
	RatingExcellent    Rating = "Excellent"
	RatingGood         Rating = "Good"
	RatingAverage      Rating = "Average"
	RatingBelowAverage Rating = "Below Average"
	RatingPoor         Rating = "Poor"
)

// Ratings lists every valid rating from best to worst.
var Ratings = []Rating{RatingExcellent, RatingGood, RatingAverage, RatingBelowAverage, RatingPoor}

// Valid reports whether r is one of Ratings.
func (r Rating) Valid() bool {
	for _, v := range Ratings {
		if r == v {
			return true
		}
	}
	return false
}

// JobPosting is immutable for the lifetime of a session.
type JobPosting struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AnsweredQA pairs a question with the finalized transcript of its answer.
type AnsweredQA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type QuestionEvaluation struct {
	Question string `json:"question"`
	Summary  string `json:"summary"`
	Rating   Rating `json:"rating"`
}

type OverallEvaluation struct {
	Summary             string   `json:"summary"`
	Rating              Rating   `json:"rating"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areasForImprovement"`
}

// Evaluation is the structured rating of a whole transcript.
type Evaluation struct {
	IndividualEvaluations []QuestionEvaluation `json:"individualEvaluations"`
	OverallEvaluation     OverallEvaluation    `json:"overallEvaluation"`
}

// InterviewStatus enumerates interview configuration states.
type InterviewStatus string

const (
	InterviewActive   InterviewStatus = "active"
	InterviewDraft    InterviewStatus = "draft"
	InterviewArchived InterviewStatus = "archived"
)

// Valid reports whether s is a known status.
func (s InterviewStatus) Valid() bool {
	switch s {
	case InterviewActive, InterviewDraft, InterviewArchived:
		return true
	}
	return false
}

// Interview is an interviewer-authored configuration that candidates are invited to.
// Invariants: JobTitle and JobDescription non-blank; CustomQuestions contain no blank entries.
type Interview struct {
	ID              string          `json:"id"`
	JobTitle        string          `json:"jobTitle"`
	JobDescription  string          `json:"jobDescription"`
	CustomQuestions []string        `json:"customQuestions"`
	Status          InterviewStatus `json:"status"`
	CandidatesCount int             `json:"candidatesCount"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Job returns the posting candidates are interviewed for.
func (i Interview) Job() JobPosting {
	return JobPosting{Title: i.JobTitle, Description: i.JobDescription}
}

// Attempt is the persisted outcome of an evaluated session.
type Attempt struct {
	SessionID     string       `json:"sessionId"`
	InterviewID   string       `json:"interviewId,omitempty"`
	JobTitle      string       `json:"jobTitle"`
	CandidateName string       `json:"candidateName"`
	Answers       []AnsweredQA `json:"answers"`
	Evaluation    Evaluation   `json:"evaluation"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// OverallRating is a shortcut for the overall evaluation rating.
func (a Attempt) OverallRating() Rating { return a.Evaluation.OverallEvaluation.Rating }

// SpeechToken is a short-lived credential for the client-side speech SDK.
type SpeechToken struct {
	Token  string `json:"token"`
	Region string `json:"region"`
}

// Repositories (ports)

// InterviewRepository persists interview configurations.
type InterviewRepository interface {
	Create(ctx Context, in Interview) (string, error)
	Get(ctx Context, id string) (Interview, error)
	List(ctx Context, status InterviewStatus, limit, offset int) ([]Interview, error)
	Update(ctx Context, in Interview) error
	Delete(ctx Context, id string) error
	IncrementCandidates(ctx Context, id string) error
}

// AttemptRepository persists evaluated attempts, keyed by session.
type AttemptRepository interface {
	Upsert(ctx Context, a Attempt) error
	GetBySessionID(ctx Context, sessionID string) (Attempt, error)
}

// SessionStore keeps in-flight interview sessions.
type SessionStore interface {
	Get(ctx Context, id string) (Session, error)
	Save(ctx Context, s Session) error
	Delete(ctx Context, id string) error
}

// EventPublisher announces evaluated attempts to downstream consumers.
type EventPublisher interface {
	PublishEvaluated(ctx Context, a Attempt) error
}

// LLMGateway (port)
type LLMGateway interface {
	// GenerateQuestions returns the string array produced for a question prompt.
	GenerateQuestions(ctx Context, prompt string) ([]string, error)
	// Evaluate returns a schema-valid evaluation for an evaluation prompt.
	Evaluate(ctx Context, prompt string) (Evaluation, error)
	// GenerateText returns free-form text with no response schema.
	GenerateText(ctx Context, prompt string) (string, error)
}

// DocumentAnalyzer (port)
// Analyze extracts the full text of a document via an asynchronous layout service.
type DocumentAnalyzer interface {
	Analyze(ctx Context, document []byte, contentType string) (string, error)
}

// SpeechTokenIssuer (port)
type SpeechTokenIssuer interface {
	IssueToken(ctx Context) (SpeechToken, error)
}

// SpeechSynthesizer (port)
type SpeechSynthesizer interface {
	Synthesize(ctx Context, text string) ([]byte, error)
}

// Context is an alias to allow decoupling from std context in domain
// Adapters and usecases should pass context.Context through
type Context = context.Context
