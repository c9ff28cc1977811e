package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// AttemptRepo persists evaluated attempts keyed by session id.
type AttemptRepo struct{ Pool PgxPool }

// NewAttemptRepo constructs an AttemptRepo with the given pool.
func NewAttemptRepo(p PgxPool) *AttemptRepo { return &AttemptRepo{Pool: p} }

// Upsert inserts or updates an attempt by session_id; re-evaluation overwrites.
func (r *AttemptRepo) Upsert(ctx domain.Context, a domain.Attempt) error {
	tracer := otel.Tracer("repo.attempts")
	ctx, span := tracer.Start(ctx, "attempts.Upsert")
	defer span.End()
	span.SetAttributes(spanAttrs("UPSERT", "attempts")...)

	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("op=attempt.upsert: %w", err)
	}
	evaluation, err := json.Marshal(a.Evaluation)
	if err != nil {
		return fmt.Errorf("op=attempt.upsert: %w", err)
	}
	var interviewID *string
	if a.InterviewID != "" {
		interviewID = &a.InterviewID
	}
	now := time.Now().UTC()

	q := `INSERT INTO attempts (session_id, interview_id, job_title, candidate_name, answers, evaluation, overall_rating, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	ON CONFLICT (session_id)
	DO UPDATE SET candidate_name=EXCLUDED.candidate_name, answers=EXCLUDED.answers, evaluation=EXCLUDED.evaluation, overall_rating=EXCLUDED.overall_rating, updated_at=EXCLUDED.updated_at`
	_, err = r.Pool.Exec(ctx, q, a.SessionID, interviewID, a.JobTitle, a.CandidateName, answers, evaluation,
		string(a.OverallRating()), orNow(a.CreatedAt, now), orNow(a.UpdatedAt, now))
	if err != nil {
		return fmt.Errorf("op=attempt.upsert: %w", err)
	}
	return nil
}

// GetBySessionID loads the attempt of a session.
func (r *AttemptRepo) GetBySessionID(ctx domain.Context, sessionID string) (domain.Attempt, error) {
	tracer := otel.Tracer("repo.attempts")
	ctx, span := tracer.Start(ctx, "attempts.GetBySessionID")
	defer span.End()
	span.SetAttributes(spanAttrs("SELECT", "attempts")...)

	q := `SELECT session_id, interview_id, job_title, candidate_name, answers, evaluation, created_at, updated_at FROM attempts WHERE session_id=$1`
	var (
		a                   domain.Attempt
		interviewID         *string
		answers, evaluation []byte
	)
	err := r.Pool.QueryRow(ctx, q, sessionID).Scan(&a.SessionID, &interviewID, &a.JobTitle, &a.CandidateName,
		&answers, &evaluation, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, fmt.Errorf("%w: attempt for session %s", domain.ErrNotFound, sessionID)
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("op=attempt.get: %w", err)
	}
	if interviewID != nil {
		a.InterviewID = *interviewID
	}
	if err := json.Unmarshal(answers, &a.Answers); err != nil {
		return domain.Attempt{}, fmt.Errorf("op=attempt.get: answers: %w", err)
	}
	if err := json.Unmarshal(evaluation, &a.Evaluation); err != nil {
		return domain.Attempt{}, fmt.Errorf("op=attempt.get: evaluation: %w", err)
	}
	return a, nil
}
