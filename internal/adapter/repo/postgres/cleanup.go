package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

// Tx is the subset of pgx.Tx used by the cleanup job.
type Tx interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Beginner opens cleanup transactions.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

type pgxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type poolBeginner struct{ p pgxBeginner }

func (b poolBeginner) Begin(ctx context.Context) (Tx, error) { return b.p.Begin(ctx) }

// BeginnerFromPool adapts a pgx pool (or conn) to Beginner.
func BeginnerFromPool(p pgxBeginner) Beginner { return poolBeginner{p: p} }

// CleanupService handles attempt retention
type CleanupService struct {
	DB            Beginner
	RetentionDays int
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(db Beginner, retentionDays int) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 90 // default 90 days
	}
	return &CleanupService{DB: db, RetentionDays: retentionDays}
}

// CleanupOldData removes attempts not updated within the retention period and
// archived interviews that no longer have attempts.
func (s *CleanupService) CleanupOldData(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.RetentionDays)

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("op=cleanup.begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var deletedAttempts int64
	if err := tx.QueryRow(ctx, `
		WITH d AS (DELETE FROM attempts WHERE updated_at < $1 RETURNING 1)
		SELECT count(*) FROM d
	`, cutoff).Scan(&deletedAttempts); err != nil {
		return fmt.Errorf("op=cleanup.attempts: %w", err)
	}

	var deletedInterviews int64
	if err := tx.QueryRow(ctx, `
		WITH d AS (
			DELETE FROM interviews i
			WHERE i.status = 'archived' AND i.updated_at < $1
			AND NOT EXISTS (SELECT 1 FROM attempts a WHERE a.interview_id = i.id)
			RETURNING 1
		)
		SELECT count(*) FROM d
	`, cutoff).Scan(&deletedInterviews); err != nil {
		return fmt.Errorf("op=cleanup.interviews: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("op=cleanup.commit: %w", err)
	}

	slog.Info("data cleanup completed",
		slog.Int64("deleted_attempts", deletedAttempts),
		slog.Int64("deleted_interviews", deletedInterviews),
		slog.Time("cutoff", cutoff),
	)
	return nil
}

// RunPeriodic runs CleanupOldData now and then every interval until ctx ends.
func (s *CleanupService) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour // daily by default
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.CleanupOldData(ctx); err != nil {
		slog.Error("initial cleanup failed", slog.Any("error", err))
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup service stopping")
			return
		case <-ticker.C:
			if err := s.CleanupOldData(ctx); err != nil {
				slog.Error("periodic cleanup failed", slog.Any("error", err))
			}
		}
	}
}
