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

func sampleEvaluation(n int) domain.Evaluation {
	ev := domain.Evaluation{
		OverallEvaluation: domain.OverallEvaluation{
			Summary:             "Solid answers.",
			Rating:              domain.RatingGood,
			Strengths:           []string{"Clear communication"},
			AreasForImprovement: []string{"More concrete examples"},
		},
	}
	for i := 0; i < n; i++ {
		ev.IndividualEvaluations = append(ev.IndividualEvaluations, domain.QuestionEvaluation{
			Question: "Q", Summary: "S", Rating: domain.RatingAverage,
		})
	}
	return ev
}

func TestEvaluate_Validation(t *testing.T) {
	t.Parallel()
	svc := usecase.NewEvaluationService(&mocks.MockLLMGateway{})

	_, err := svc.Evaluate(context.Background(), usecase.EvaluateInput{JobTitle: "SRE"})
	var argErr *domain.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, usecase.MsgInterviewDataRequired, argErr.Message)

	_, err = svc.Evaluate(context.Background(), usecase.EvaluateInput{
		JobTitle: "  ",
		Answers:  []domain.AnsweredQA{{Question: "Q", Answer: "A"}},
	})
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, usecase.MsgJobTitleRequired, argErr.Message)
}

func TestEvaluate_ThreeAnswers(t *testing.T) {
	t.Parallel()
	answers := []domain.AnsweredQA{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: ""},
		{Question: "Q3", Answer: "A3"},
	}
	llm := &mocks.MockLLMGateway{}
	llm.On("Evaluate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return contains(p, "**Junior Developer**") && contains(p, `"question": "Q3"`)
	})).Return(sampleEvaluation(3), nil).Once()

	ev, err := usecase.NewEvaluationService(llm).Evaluate(context.Background(), usecase.EvaluateInput{
		JobTitle: "Junior Developer",
		Answers:  answers,
	})
	require.NoError(t, err)
	assert.Len(t, ev.IndividualEvaluations, 3)
	for _, ie := range ev.IndividualEvaluations {
		assert.True(t, ie.Rating.Valid())
	}
	assert.True(t, ev.OverallEvaluation.Rating.Valid())
	llm.AssertExpectations(t)
}

func TestEvaluate_MalformedIsError(t *testing.T) {
	t.Parallel()
	llm := &mocks.MockLLMGateway{}
	llm.On("Evaluate", mock.Anything, mock.Anything).
		Return(domain.Evaluation{}, &domain.MalformedResponseError{Service: "gemini", Reason: "rating not in enum"}).Once()

	_, err := usecase.NewEvaluationService(llm).Evaluate(context.Background(), usecase.EvaluateInput{
		JobTitle: "SRE",
		Answers:  []domain.AnsweredQA{{Question: "Q", Answer: "A"}},
	})
	assert.ErrorIs(t, err, domain.ErrSchemaInvalid)
	llm.AssertNumberOfCalls(t, "Evaluate", 1)
}
