package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

func sampleAttempt() domain.Attempt {
	return domain.Attempt{
		SessionID:     "01J0SESSION",
		JobTitle:      "Backend Engineer",
		CandidateName: "Ada",
		Answers:       []domain.AnsweredQA{{Question: "q1", Answer: "a1"}},
		Evaluation: domain.Evaluation{
			IndividualEvaluations: []domain.QuestionEvaluation{{Question: "q1", Summary: "ok", Rating: domain.RatingGood}},
			OverallEvaluation:     domain.OverallEvaluation{Summary: "solid", Rating: domain.RatingGood},
		},
	}
}

func TestAttemptRepo_UpsertWithoutInterview(t *testing.T) {
	p := &poolStub{execTag: "INSERT 0 1"}
	r := postgres.NewAttemptRepo(p)
	require.NoError(t, r.Upsert(context.Background(), sampleAttempt()))
	assert.Contains(t, p.lastSQL, "ON CONFLICT (session_id)")
	assert.Nil(t, p.lastArgs[1], "ad hoc attempts carry a null interview_id")
	assert.Equal(t, "Good", p.lastArgs[6])

	var answers []domain.AnsweredQA
	require.NoError(t, json.Unmarshal(p.lastArgs[4].([]byte), &answers))
	assert.Equal(t, "a1", answers[0].Answer)
}

func TestAttemptRepo_UpsertWithInterview(t *testing.T) {
	p := &poolStub{execTag: "INSERT 0 1"}
	a := sampleAttempt()
	a.InterviewID = "iv-1"
	require.NoError(t, postgres.NewAttemptRepo(p).Upsert(context.Background(), a))
	id, ok := p.lastArgs[1].(*string)
	require.True(t, ok)
	assert.Equal(t, "iv-1", *id)
}

func TestAttemptRepo_UpsertError(t *testing.T) {
	r := postgres.NewAttemptRepo(&poolStub{execErr: errors.New("down")})
	assert.Error(t, r.Upsert(context.Background(), sampleAttempt()))
}

func TestAttemptRepo_GetBySessionID(t *testing.T) {
	a := sampleAttempt()
	answers, _ := json.Marshal(a.Answers)
	evaluation, _ := json.Marshal(a.Evaluation)
	ivID := "iv-9"
	now := time.Now().UTC()
	r := postgres.NewAttemptRepo(&poolStub{row: valuesRow(a.SessionID, &ivID, a.JobTitle, a.CandidateName, answers, evaluation, now, now)})

	got, err := r.GetBySessionID(context.Background(), a.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "iv-9", got.InterviewID)
	assert.Equal(t, a.Answers, got.Answers)
	assert.Equal(t, domain.RatingGood, got.OverallRating())
}

func TestAttemptRepo_GetBySessionID_NotFound(t *testing.T) {
	r := postgres.NewAttemptRepo(&poolStub{row: rowStub{scan: func(...any) error { return pgx.ErrNoRows }}})
	_, err := r.GetBySessionID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAttemptRepo_GetBySessionID_BadJSON(t *testing.T) {
	now := time.Now().UTC()
	r := postgres.NewAttemptRepo(&poolStub{row: valuesRow("s", nil, "t", "n", []byte("{"), []byte("{}"), now, now)})
	_, err := r.GetBySessionID(context.Background(), "s")
	assert.Error(t, err)
}
