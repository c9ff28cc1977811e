package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/repo/postgres"
)

type fakeTx struct {
	commitErr error
	rowErr    error
	queries   int
	cutoffs   []time.Time
}

func (t *fakeTx) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	t.queries++
	if len(args) > 0 {
		if c, ok := args[0].(time.Time); ok {
			t.cutoffs = append(t.cutoffs, c)
		}
	}
	return rowStub{scan: func(dest ...any) error {
		if t.rowErr != nil {
			return t.rowErr
		}
		*(dest[0].(*int64)) = 1
		return nil
	}}
}
func (t *fakeTx) Commit(_ context.Context) error   { return t.commitErr }
func (t *fakeTx) Rollback(_ context.Context) error { return nil }

type fakeBeginner struct {
	beginErr error
	tx       *fakeTx
}

func (b *fakeBeginner) Begin(_ context.Context) (postgres.Tx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

func TestCleanupService_CleanupOldData_OK(t *testing.T) {
	tx := &fakeTx{}
	svc := postgres.NewCleanupService(&fakeBeginner{tx: tx}, 30)
	require.NoError(t, svc.CleanupOldData(context.Background()))
	assert.Equal(t, 2, tx.queries)
	require.Len(t, tx.cutoffs, 2)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -30), tx.cutoffs[0], time.Minute)
}

func TestCleanupService_DefaultRetention(t *testing.T) {
	svc := postgres.NewCleanupService(&fakeBeginner{tx: &fakeTx{}}, 0)
	assert.Equal(t, 90, svc.RetentionDays)
}

func TestCleanupService_BeginError(t *testing.T) {
	svc := postgres.NewCleanupService(&fakeBeginner{beginErr: errors.New("begin")}, 1)
	assert.Error(t, svc.CleanupOldData(context.Background()))
}

func TestCleanupService_QueryError(t *testing.T) {
	svc := postgres.NewCleanupService(&fakeBeginner{tx: &fakeTx{rowErr: errors.New("boom")}}, 1)
	err := svc.CleanupOldData(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=cleanup.attempts")
}

func TestCleanupService_CommitError(t *testing.T) {
	svc := postgres.NewCleanupService(&fakeBeginner{tx: &fakeTx{commitErr: errors.New("commit")}}, 1)
	assert.Error(t, svc.CleanupOldData(context.Background()))
}

func TestCleanupService_RunPeriodic_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := postgres.NewCleanupService(&fakeBeginner{tx: &fakeTx{}}, 1)
	done := make(chan struct{})
	go func() {
		svc.RunPeriodic(ctx, time.Hour)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunPeriodic did not return after cancel")
	}
}
