//go:build integration

// Package integration runs the storage adapters against real containers.
// Run with: go test -tags=integration ./internal/integration/...
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/repo/postgres"
	redisstore "github.com/fairyhunter13/ai-mock-interview/internal/adapter/sessionstore/redis"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

func startPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "app"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(90 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432")
	require.NoError(t, err)
	dsn := "postgres://postgres:postgres@" + host + ":" + port.Port() + "/app?sslmode=disable"

	var pool *pgxpool.Pool
	require.Eventually(t, func() bool {
		pool, err = postgres.NewPool(ctx, dsn)
		return err == nil
	}, 30*time.Second, time.Second)
	t.Cleanup(pool.Close)
	return pool
}

func Test_Postgres_InterviewsAndAttempts(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)

	require.NoError(t, postgres.Migrate(ctx, pool))
	require.NoError(t, postgres.Migrate(ctx, pool), "migrations are idempotent")

	interviews := postgres.NewInterviewRepo(pool)
	attempts := postgres.NewAttemptRepo(pool)

	id, err := interviews.Create(ctx, domain.Interview{
		JobTitle:        "Backend Engineer",
		JobDescription:  "Build APIs in Go",
		CustomQuestions: []string{"Why Go?"},
		Status:          domain.InterviewActive,
	})
	require.NoError(t, err)
	require.NoError(t, interviews.IncrementCandidates(ctx, id))

	got, err := interviews.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CandidatesCount)
	assert.Equal(t, []string{"Why Go?"}, got.CustomQuestions)

	list, err := interviews.List(ctx, domain.InterviewActive, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = interviews.List(ctx, domain.InterviewDraft, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	a := domain.Attempt{
		SessionID:   "01J0INTEGRATION",
		InterviewID: id,
		JobTitle:    got.JobTitle,
		Answers:     []domain.AnsweredQA{{Question: "Why Go?", Answer: "Simplicity"}},
		Evaluation: domain.Evaluation{
			OverallEvaluation: domain.OverallEvaluation{Summary: "fine", Rating: domain.RatingAverage},
		},
	}
	require.NoError(t, attempts.Upsert(ctx, a))
	a.Evaluation.OverallEvaluation.Rating = domain.RatingGood
	require.NoError(t, attempts.Upsert(ctx, a))

	stored, err := attempts.GetBySessionID(ctx, a.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.RatingGood, stored.OverallRating())
	assert.Equal(t, id, stored.InterviewID)

	require.NoError(t, interviews.Delete(ctx, id))
	stored, err = attempts.GetBySessionID(ctx, a.SessionID)
	require.NoError(t, err)
	assert.Empty(t, stored.InterviewID, "attempts survive interview deletion")

	cleanup := postgres.NewCleanupService(postgres.BeginnerFromPool(pool), 1)
	require.NoError(t, cleanup.CleanupOldData(ctx))
}

func Test_Redis_SessionStore(t *testing.T) {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "redis:7",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })
	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() { _ = rdb.Close() })
	require.Eventually(t, func() bool { return rdb.Ping(ctx).Err() == nil }, 30*time.Second, time.Second)

	store := redisstore.New(rdb, time.Minute)
	s, err := domain.NewSession("01J0REDIS", domain.JobPosting{Title: "t", Description: "d"}, "", []string{"a", "b", "c"}, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Questions, loaded.Questions)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
