package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

func newSession(t *testing.T, id string) domain.Session {
	t.Helper()
	s, err := domain.NewSession(id, domain.JobPosting{Title: "Go Engineer"}, "Jane", []string{"q1", "q2"}, time.Unix(0, 0).UTC())
	require.NoError(t, err)
	return s
}

func TestStore_RoundTripIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	st := New(0)
	sess := newSession(t, "s1")
	require.NoError(t, st.Save(ctx, sess))

	sess.Questions[0] = "mutated"
	got, err := st.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "q1", got.Questions[0])
	assert.Equal(t, domain.SessionNotStarted, got.State)

	got.Questions[1] = "mutated too"
	again, err := st.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "q2", again.Questions[1])
}

func TestStore_NotFoundAndDelete(t *testing.T) {
	ctx := context.Background()
	st := New(time.Hour)
	_, err := st.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, st.Save(ctx, newSession(t, "s1")))
	require.NoError(t, st.Delete(ctx, "s1"))
	_, err = st.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	st := New(time.Minute)
	st.now = func() time.Time { return now }

	require.NoError(t, st.Save(ctx, newSession(t, "a")))
	require.NoError(t, st.Save(ctx, newSession(t, "b")))

	now = now.Add(30 * time.Second)
	_, err := st.Get(ctx, "a")
	require.NoError(t, err)

	now = now.Add(31 * time.Second)
	_, err = st.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, st.Sweep())
}
