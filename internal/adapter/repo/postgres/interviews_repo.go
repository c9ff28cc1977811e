package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

const interviewColumns = `id, job_title, job_description, custom_questions, status, candidates_count, created_at, updated_at`

// InterviewRepo persists interview configurations.
type InterviewRepo struct{ Pool PgxPool }

// NewInterviewRepo constructs an InterviewRepo with the given pool.
func NewInterviewRepo(p PgxPool) *InterviewRepo { return &InterviewRepo{Pool: p} }

func spanAttrs(op, table string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", op),
		attribute.String("db.sql.table", table),
	}
}

// Create stores a new interview and returns its id (generates one if empty).
func (r *InterviewRepo) Create(ctx domain.Context, in domain.Interview) (string, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Create")
	defer span.End()
	span.SetAttributes(spanAttrs("INSERT", "interviews")...)

	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	q := `INSERT INTO interviews (` + interviewColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.Pool.Exec(ctx, q, in.ID, in.JobTitle, in.JobDescription, questionsOrEmpty(in.CustomQuestions),
		string(in.Status), in.CandidatesCount, orNow(in.CreatedAt, now), orNow(in.UpdatedAt, now))
	if err != nil {
		return "", fmt.Errorf("op=interview.create: %w", err)
	}
	return in.ID, nil
}

// Upsert inserts or replaces an interview by id, keeping its candidate count.
func (r *InterviewRepo) Upsert(ctx domain.Context, in domain.Interview) error {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Upsert")
	defer span.End()
	span.SetAttributes(spanAttrs("UPSERT", "interviews")...)

	now := time.Now().UTC()
	q := `INSERT INTO interviews (` + interviewColumns + `) VALUES ($1,$2,$3,$4,$5,0,$6,$6)
	ON CONFLICT (id)
	DO UPDATE SET job_title=EXCLUDED.job_title, job_description=EXCLUDED.job_description, custom_questions=EXCLUDED.custom_questions, status=EXCLUDED.status, updated_at=EXCLUDED.updated_at`
	if _, err := r.Pool.Exec(ctx, q, in.ID, in.JobTitle, in.JobDescription, questionsOrEmpty(in.CustomQuestions), string(in.Status), now); err != nil {
		return fmt.Errorf("op=interview.upsert: %w", err)
	}
	return nil
}

// Get loads an interview by id.
func (r *InterviewRepo) Get(ctx domain.Context, id string) (domain.Interview, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Get")
	defer span.End()
	span.SetAttributes(spanAttrs("SELECT", "interviews")...)

	row := r.Pool.QueryRow(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id=$1`, id)
	iv, err := scanInterview(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Interview{}, fmt.Errorf("%w: interview %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Interview{}, fmt.Errorf("op=interview.get: %w", err)
	}
	return iv, nil
}

// List returns interviews newest first, optionally filtered by status.
func (r *InterviewRepo) List(ctx domain.Context, status domain.InterviewStatus, limit, offset int) ([]domain.Interview, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.List")
	defer span.End()
	span.SetAttributes(spanAttrs("SELECT", "interviews")...)

	q := `SELECT ` + interviewColumns + ` FROM interviews
	WHERE ($1::text = '' OR status = $1::text)
	ORDER BY created_at DESC, id
	LIMIT $2 OFFSET $3`
	rows, err := r.Pool.Query(ctx, q, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("op=interview.list: %w", err)
	}
	defer rows.Close()

	out := []domain.Interview{}
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("op=interview.list: %w", err)
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=interview.list: %w", err)
	}
	return out, nil
}

// Update replaces the writable fields of an interview.
func (r *InterviewRepo) Update(ctx domain.Context, in domain.Interview) error {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Update")
	defer span.End()
	span.SetAttributes(spanAttrs("UPDATE", "interviews")...)

	q := `UPDATE interviews SET job_title=$2, job_description=$3, custom_questions=$4, status=$5, updated_at=$6 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, in.ID, in.JobTitle, in.JobDescription, questionsOrEmpty(in.CustomQuestions),
		string(in.Status), orNow(in.UpdatedAt, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("op=interview.update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: interview %s", domain.ErrNotFound, in.ID)
	}
	return nil
}

// Delete removes an interview. Attempts keep their data with a null interview.
func (r *InterviewRepo) Delete(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Delete")
	defer span.End()
	span.SetAttributes(spanAttrs("DELETE", "interviews")...)

	tag, err := r.Pool.Exec(ctx, `DELETE FROM interviews WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("op=interview.delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: interview %s", domain.ErrNotFound, id)
	}
	return nil
}

// IncrementCandidates bumps the candidate counter of an interview.
func (r *InterviewRepo) IncrementCandidates(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.IncrementCandidates")
	defer span.End()
	span.SetAttributes(spanAttrs("UPDATE", "interviews")...)

	tag, err := r.Pool.Exec(ctx, `UPDATE interviews SET candidates_count = candidates_count + 1 WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("op=interview.increment_candidates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: interview %s", domain.ErrNotFound, id)
	}
	return nil
}

func scanInterview(row pgx.Row) (domain.Interview, error) {
	var (
		iv     domain.Interview
		status string
	)
	if err := row.Scan(&iv.ID, &iv.JobTitle, &iv.JobDescription, &iv.CustomQuestions, &status,
		&iv.CandidatesCount, &iv.CreatedAt, &iv.UpdatedAt); err != nil {
		return domain.Interview{}, err
	}
	iv.Status = domain.InterviewStatus(status)
	if iv.CustomQuestions == nil {
		iv.CustomQuestions = []string{}
	}
	return iv, nil
}

func questionsOrEmpty(q []string) []string {
	if q == nil {
		return []string{}
	}
	return q
}

func orNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t
}
