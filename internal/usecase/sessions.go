package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// DefaultCaptureTTL bounds a listening window nobody closes.
const DefaultCaptureTTL = 15 * time.Minute

// SessionService drives interview sessions through their states. Sessions
// live in Store; open transcript captures live in this process.
type SessionService struct {
	Store      domain.SessionStore
	Interviews domain.InterviewRepository
	Attempts   domain.AttemptRepository
	Events     domain.EventPublisher
	Questions  *QuestionService
	Evaluator  EvaluationService

	CaptureTTL time.Duration
	now        func() time.Time
	newID      func() string

	locks keyedMutex

	mu       sync.Mutex
	captures map[string]*listening
	closed   bool
}

type listening struct {
	rec     *domain.PushRecognizer
	capture *domain.Capture
	cancel  context.CancelFunc
	expired bool
}

// CreateSessionInput opens a session from an interview configuration or from
// an ad hoc job posting.
type CreateSessionInput struct {
	InterviewID     string
	Job             domain.JobPosting
	CVText          string
	CandidateName   string
	CustomQuestions []string
}

// NewSessionService constructs a SessionService. Interviews, Attempts and
// Events may be nil.
func NewSessionService(store domain.SessionStore, q *QuestionService, ev EvaluationService) *SessionService {
	return &SessionService{
		Store:      store,
		Questions:  q,
		Evaluator:  ev,
		CaptureTTL: DefaultCaptureTTL,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return ulid.Make().String() },
		captures:   map[string]*listening{},
	}
}

// keyedMutex serializes work per session id.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(id string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = map[string]*refMutex{}
	}
	m, ok := k.locks[id]
	if !ok {
		m = &refMutex{}
		k.locks[id] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		if m.refs--; m.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}

func (s *SessionService) lock(id string) func() { return s.locks.lock(id) }

// Create generates the question set and stores a not-started session.
func (s *SessionService) Create(ctx domain.Context, in CreateSessionInput) (domain.Session, error) {
	lg := observability.LoggerFromContext(ctx)
	job := domain.JobPosting{Title: strings.TrimSpace(in.Job.Title), Description: strings.TrimSpace(in.Job.Description)}
	custom := in.CustomQuestions

	if in.InterviewID != "" {
		if s.Interviews == nil {
			return domain.Session{}, fmt.Errorf("%w: interview %s", domain.ErrNotFound, in.InterviewID)
		}
		iv, err := s.Interviews.Get(ctx, in.InterviewID)
		if err != nil {
			return domain.Session{}, fmt.Errorf("op=usecase.CreateSession: %w", err)
		}
		if iv.Status != domain.InterviewActive {
			return domain.Session{}, fmt.Errorf("%w: interview %s is %s", domain.ErrConflict, iv.ID, iv.Status)
		}
		job = iv.Job()
		custom = iv.CustomQuestions
	}
	if job.Title == "" {
		return domain.Session{}, domain.InvalidArgument(MsgJobTitleRequired)
	}

	questions, err := s.Questions.Generate(ctx, GenerateInput{Job: job, CVText: in.CVText, CustomQuestions: custom})
	if err != nil {
		return domain.Session{}, err
	}
	name := strings.TrimSpace(in.CandidateName)
	if IsSentinelName(name) {
		name = ""
	}
	sess, err := domain.NewSession(s.newID(), job, name, questions, s.now())
	if err != nil {
		return domain.Session{}, err
	}
	sess.InterviewID = in.InterviewID
	if err := s.Store.Save(ctx, sess); err != nil {
		return domain.Session{}, fmt.Errorf("op=usecase.CreateSession: %w", err)
	}
	observability.ObserveTransition(sess.State)

	if in.InterviewID != "" {
		if err := s.Interviews.IncrementCandidates(ctx, in.InterviewID); err != nil {
			lg.Warn("failed to count candidate", slog.String("interview_id", in.InterviewID), slog.Any("error", err))
		}
	}
	lg.Info("session created", slog.String("session_id", sess.ID), slog.Int("questions", len(sess.Questions)))
	return sess, nil
}

// Get returns the current state of a session.
func (s *SessionService) Get(ctx domain.Context, id string) (domain.Session, error) {
	return s.Store.Get(ctx, id)
}

// mutate applies fn to the stored session under its lock and saves the result.
// Nothing is saved when fn fails.
func (s *SessionService) mutate(ctx domain.Context, id string, fn func(*domain.Session) error) (domain.Session, error) {
	return s.mutateOr(ctx, id, fn, nil)
}

// mutateOr is mutate with undo run when fn succeeded but the save failed.
func (s *SessionService) mutateOr(ctx domain.Context, id string, fn func(*domain.Session) error, undo func()) (domain.Session, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	before := sess.State
	if err := fn(&sess); err != nil {
		return sess, err
	}
	if err := s.Store.Save(ctx, sess); err != nil {
		if undo != nil {
			undo()
		}
		return sess, fmt.Errorf("op=usecase.SaveSession: %w", err)
	}
	if sess.State != before {
		observability.ObserveTransition(sess.State)
	}
	return sess, nil
}

// Start moves a new session to speaking the first question.
func (s *SessionService) Start(ctx domain.Context, id string) (domain.Session, error) {
	return s.mutate(ctx, id, func(sess *domain.Session) error {
		return sess.Start(s.now())
	})
}

// Listen moves to listening and opens a transcript capture for the answer.
// The capture is torn down again if the new state cannot be saved.
func (s *SessionService) Listen(ctx domain.Context, id string) (domain.Session, error) {
	return s.mutateOr(ctx, id, func(sess *domain.Session) error {
		if err := sess.BeginListening(s.now()); err != nil {
			return err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.openCaptureLocked(ctx, id, nil)
	}, func() {
		if l := s.stopCapture(id); l != nil {
			s.releaseCapture(id, l)
		}
	})
}

// openCaptureLocked replaces any capture of id with a fresh one holding
// finals. s.mu must be held.
func (s *SessionService) openCaptureLocked(ctx domain.Context, id string, finals []string) error {
	if s.closed {
		return fmt.Errorf("%w: session service is closed", domain.ErrConflict)
	}
	if old, ok := s.captures[id]; ok {
		delete(s.captures, id)
		old.cancel()
		_, _ = old.capture.Stop()
	}

	ttl := s.CaptureTTL
	if ttl <= 0 {
		ttl = DefaultCaptureTTL
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ttl)
	rec := domain.NewPushRecognizer(0)
	capture, err := domain.ResumeCapture(cctx, rec, finals)
	if err != nil {
		cancel()
		return fmt.Errorf("op=usecase.Listen: %w", err)
	}
	l := &listening{rec: rec, capture: capture, cancel: cancel}
	s.captures[id] = l
	go s.expireCapture(cctx, id, l, ttl)
	return nil
}

// expireCapture closes l when its window times out. The finals stay readable
// by Next for one more ttl and are dropped with a warning after that.
func (s *SessionService) expireCapture(cctx context.Context, id string, l *listening, ttl time.Duration) {
	<-cctx.Done()
	s.mu.Lock()
	current := s.captures[id] == l
	if current {
		l.expired = true
	}
	s.mu.Unlock()
	if !current {
		return
	}
	lg := observability.LoggerFromContext(cctx)
	_, _ = l.capture.Stop()
	lg.Warn("transcript capture expired", slog.String("session_id", id), slog.Duration("ttl", ttl))

	time.AfterFunc(ttl, func() {
		s.mu.Lock()
		dropped := s.captures[id] == l
		if dropped {
			delete(s.captures, id)
		}
		s.mu.Unlock()
		if dropped && l.capture.Transcript() != "" {
			lg.Warn("dropping uncommitted transcript", slog.String("session_id", id))
		}
	})
}

// stopCapture stops the capture of id and waits for its buffered events. The
// capture stays registered until releaseCapture or reopenCapture.
func (s *SessionService) stopCapture(id string) *listening {
	s.mu.Lock()
	l := s.captures[id]
	s.mu.Unlock()
	if l == nil {
		return nil
	}
	_, _ = l.capture.Stop()
	return l
}

func (s *SessionService) releaseCapture(id string, l *listening) {
	s.mu.Lock()
	if s.captures[id] == l {
		delete(s.captures, id)
	}
	s.mu.Unlock()
	l.cancel()
}

// reopenCapture resumes listening on id with the finals l already collected.
func (s *SessionService) reopenCapture(ctx domain.Context, id string, l *listening) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.captures[id] != l {
		l.cancel()
		return
	}
	if err := s.openCaptureLocked(ctx, id, l.capture.Finals()); err != nil {
		delete(s.captures, id)
		observability.LoggerFromContext(ctx).Warn("failed to reopen transcript capture",
			slog.String("session_id", id), slog.Any("error", err))
	}
}

// PushTranscript feeds a recognition result into the open capture of id.
func (s *SessionService) PushTranscript(ctx domain.Context, id string, ev domain.TranscriptEvent) error {
	switch ev.Kind {
	case domain.TranscriptPartial, domain.TranscriptFinal:
	default:
		return domain.InvalidArgument("kind must be %q or %q", domain.TranscriptPartial, domain.TranscriptFinal)
	}
	s.mu.Lock()
	l, ok := s.captures[id]
	s.mu.Unlock()
	if !ok {
		if _, err := s.Store.Get(ctx, id); err != nil {
			return err
		}
		return domain.ErrRecognizerClosed
	}
	return l.rec.Push(ev)
}

// Next closes the listening window, records the answer and moves on. After the
// last answer the transcript is evaluated in the same call. A non-blank answer
// replaces the captured transcript. When the session cannot be saved the
// window is reopened with what was captured so far.
func (s *SessionService) Next(ctx domain.Context, id, answer string) (domain.Session, error) {
	var held *listening
	sess, err := s.mutateOr(ctx, id, func(sess *domain.Session) error {
		if !sess.CanAdvance() {
			return sess.Advance("", s.now())
		}
		held = s.stopCapture(id)
		if strings.TrimSpace(answer) == "" && held != nil {
			answer = held.capture.Transcript()
		}
		if err := sess.Advance(answer, s.now()); err != nil {
			if held != nil {
				s.reopenCapture(ctx, id, held)
				held = nil
			}
			return err
		}
		return nil
	}, func() {
		if held != nil {
			s.reopenCapture(ctx, id, held)
			held = nil
		}
	})
	if err != nil {
		return sess, err
	}
	if held != nil {
		s.releaseCapture(id, held)
	}
	if sess.State != domain.SessionEvaluating {
		return sess, nil
	}
	return s.Evaluate(ctx, id)
}

// Evaluate scores the recorded answers, replacing any earlier evaluation. The
// result is persisted and announced when those ports are configured.
func (s *SessionService) Evaluate(ctx domain.Context, id string) (domain.Session, error) {
	sess, err := s.mutate(ctx, id, func(sess *domain.Session) error {
		if sess.State != domain.SessionEvaluating && sess.State != domain.SessionSummary {
			return fmt.Errorf("%w: cannot evaluate session in state %s", domain.ErrConflict, sess.State)
		}
		ev, err := s.Evaluator.Evaluate(ctx, EvaluateInput{JobTitle: sess.Job.Title, Answers: sess.Answers})
		if err != nil {
			return err
		}
		return sess.CompleteEvaluation(ev, s.now())
	})
	if err != nil {
		return sess, err
	}
	s.record(ctx, sess)
	return sess, nil
}

// record persists and publishes the attempt. Failures are logged; the
// evaluation stays available on the session.
func (s *SessionService) record(ctx domain.Context, sess domain.Session) {
	if sess.Evaluation == nil {
		return
	}
	lg := observability.LoggerFromContext(ctx)
	a := domain.Attempt{
		SessionID:     sess.ID,
		InterviewID:   sess.InterviewID,
		JobTitle:      sess.Job.Title,
		CandidateName: sess.CandidateName,
		Answers:       sess.Answers,
		Evaluation:    *sess.Evaluation,
		CreatedAt:     sess.CreatedAt,
		UpdatedAt:     sess.UpdatedAt,
	}
	if s.Attempts != nil {
		if err := s.Attempts.Upsert(ctx, a); err != nil {
			lg.Error("failed to persist attempt", slog.String("session_id", sess.ID), slog.Any("error", err))
		}
	}
	if s.Events != nil {
		if err := s.Events.PublishEvaluated(ctx, a); err != nil {
			lg.Warn("failed to publish evaluation event", slog.String("session_id", sess.ID), slog.Any("error", err))
		}
	}
}

// Attempt returns the persisted attempt of a session.
func (s *SessionService) Attempt(ctx domain.Context, id string) (domain.Attempt, error) {
	if s.Attempts == nil {
		return domain.Attempt{}, fmt.Errorf("%w: attempts are not persisted", domain.ErrNotFound)
	}
	return s.Attempts.GetBySessionID(ctx, id)
}

// Listening reports whether id has an open capture.
func (s *SessionService) Listening(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.captures[id]
	return ok && !l.expired
}

// Close stops every open capture. Later Listen calls fail.
func (s *SessionService) Close() error {
	s.mu.Lock()
	open := s.captures
	s.captures = map[string]*listening{}
	s.closed = true
	s.mu.Unlock()

	var errs []error
	for _, l := range open {
		if _, err := l.capture.Stop(); err != nil {
			errs = append(errs, err)
		}
		l.cancel()
	}
	return errors.Join(errs...)
}
