package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain/mocks"
	"github.com/fairyhunter13/ai-mock-interview/internal/usecase"
)

var testJob = domain.JobPosting{Title: "Backend Engineer", Description: "Build and operate Go services."}

func TestGenerate_ThreeCustomSkipsModel(t *testing.T) {
	t.Parallel()
	llm := &mocks.MockLLMGateway{}
	svc := usecase.NewQuestionService(llm, usecase.QuestionOptions{})

	got, err := svc.Generate(context.Background(), usecase.GenerateInput{
		Job:             testJob,
		CustomQuestions: []string{" C1 ", "C2", "C3", "C4"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "C2", "C3"}, got)
	llm.AssertNotCalled(t, "GenerateQuestions", mock.Anything, mock.Anything)
}

func TestGenerate_ComplementsCustom(t *testing.T) {
	t.Parallel()
	llm := &mocks.MockLLMGateway{}
	llm.On("GenerateQuestions", mock.Anything, mock.MatchedBy(func(p string) bool {
		return contains(p, "EXACTLY 2 additional") && contains(p, "1. Why Go?")
	})).Return([]string{"A1", "A2"}, nil).Once()

	svc := usecase.NewQuestionService(llm, usecase.QuestionOptions{})
	got, err := svc.Generate(context.Background(), usecase.GenerateInput{
		Job:             testJob,
		CVText:          "SKILLS:\nGo",
		CustomQuestions: []string{"Why Go?", "  "},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Why Go?", "A1", "A2"}, got)
	llm.AssertExpectations(t)
}

func TestGenerate_MalformedFallsBack(t *testing.T) {
	t.Parallel()
	llm := &mocks.MockLLMGateway{}
	llm.On("GenerateQuestions", mock.Anything, mock.Anything).
		Return(nil, &domain.MalformedResponseError{Service: "gemini", Reason: "no candidates"}).Once()

	svc := usecase.NewQuestionService(llm, usecase.QuestionOptions{})
	got, err := svc.Generate(context.Background(), usecase.GenerateInput{
		Job: testJob, CVText: "cv", CustomQuestions: []string{"C1", "C2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", usecase.FallbackQuestions[0], "C2"}, got)
}

func TestGenerate_ShortReplyPadded(t *testing.T) {
	t.Parallel()
	llm := &mocks.MockLLMGateway{}
	llm.On("GenerateQuestions", mock.Anything, mock.Anything).Return([]string{"A1"}, nil).Once()

	svc := usecase.NewQuestionService(llm, usecase.QuestionOptions{})
	got, err := svc.Generate(context.Background(), usecase.GenerateInput{
		Job: testJob, CVText: "cv", CustomQuestions: []string{"C1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "A1", usecase.FallbackQuestions[0]}, got)
}

func TestGenerate_GatewayErrorSurfaces(t *testing.T) {
	t.Parallel()
	llm := &mocks.MockLLMGateway{}
	llm.On("GenerateQuestions", mock.Anything, mock.Anything).
		Return(nil, domain.NewGatewayError("gemini", 500, []byte("boom"))).Once()

	svc := usecase.NewQuestionService(llm, usecase.QuestionOptions{})
	_, err := svc.Generate(context.Background(), usecase.GenerateInput{
		Job: testJob, CVText: "cv", CustomQuestions: []string{"C1"},
	})
	var gw *domain.GatewayError
	require.ErrorAs(t, err, &gw)
	assert.Equal(t, 500, gw.Status)
}

func TestGenerate_BlankCustomUsesPoolPath(t *testing.T) {
	t.Parallel()
	llm := &mocks.MockLLMGateway{}
	llm.On("GenerateQuestions", mock.Anything, mock.MatchedBy(func(p string) bool {
		return contains(p, "at random")
	})).Return([]string{"A1", "A2", "A3", "A4", "A5"}, nil).Once()

	svc := usecase.NewQuestionService(llm, usecase.QuestionOptions{})
	got, err := svc.Generate(context.Background(), usecase.GenerateInput{
		Job: testJob, CVText: "cv", CustomQuestions: []string{"", "   "},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "A3"}, got)
	llm.AssertExpectations(t)
}

func TestGenerate_PoolMalformedIsError(t *testing.T) {
	t.Parallel()
	llm := &mocks.MockLLMGateway{}
	llm.On("GenerateQuestions", mock.Anything, mock.Anything).
		Return(nil, &domain.MalformedResponseError{Service: "gemini", Reason: "bad json"}).Once()

	svc := usecase.NewQuestionService(llm, usecase.QuestionOptions{})
	_, err := svc.Generate(context.Background(), usecase.GenerateInput{Job: testJob, CVText: "cv"})
	assert.ErrorIs(t, err, domain.ErrSchemaInvalid)
}

func TestGenerate_LocalSelectionIsSeeded(t *testing.T) {
	t.Parallel()
	pool := []string{"A1", "A2", "A3", "A4", "A5", "A6"}
	run := func() []string {
		llm := &mocks.MockLLMGateway{}
		llm.On("GenerateQuestions", mock.Anything, mock.MatchedBy(func(p string) bool {
			return !contains(p, "at random")
		})).Return(pool, nil).Once()
		svc := usecase.NewQuestionService(llm, usecase.QuestionOptions{LocalSelection: true, Seed: 42})
		got, err := svc.Generate(context.Background(), usecase.GenerateInput{Job: testJob, CVText: "cv"})
		require.NoError(t, err)
		return got
	}
	first, second := run(), run()
	assert.Len(t, first, 3)
	assert.Equal(t, first, second)
	for _, q := range first {
		assert.Contains(t, pool, q)
	}
	assert.NotEqual(t, first[0], first[1])
}

func TestGenerate_RequiresContextForModel(t *testing.T) {
	t.Parallel()
	svc := usecase.NewQuestionService(&mocks.MockLLMGateway{}, usecase.QuestionOptions{})
	_, err := svc.Generate(context.Background(), usecase.GenerateInput{Job: testJob})

	var argErr *domain.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, usecase.MsgQuestionInputRequired, argErr.Message)
}
