package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// Validation messages returned verbatim to API clients.
const (
	MsgInterviewDataRequired = `Request body must contain a non-empty "interviewData" array.`
	MsgJobTitleRequired      = `Request body must contain a valid "jobTitle" string.`
)

// EvaluationService scores a finished transcript.
type EvaluationService struct {
	LLM domain.LLMGateway
}

// EvaluateInput is the transcript to score and the role it is scored against.
type EvaluateInput struct {
	JobTitle string
	Answers  []domain.AnsweredQA
}

// NewEvaluationService constructs an EvaluationService.
func NewEvaluationService(llm domain.LLMGateway) EvaluationService {
	return EvaluationService{LLM: llm}
}

// Evaluate validates the input and asks the model for a rating. Malformed
// replies are returned as errors; there is no partial result.
func (s EvaluationService) Evaluate(ctx domain.Context, in EvaluateInput) (domain.Evaluation, error) {
	if len(in.Answers) == 0 {
		return domain.Evaluation{}, domain.InvalidArgument(MsgInterviewDataRequired)
	}
	if strings.TrimSpace(in.JobTitle) == "" {
		return domain.Evaluation{}, domain.InvalidArgument(MsgJobTitleRequired)
	}

	ev, err := s.LLM.Evaluate(ctx, BuildEvaluationPrompt(in.JobTitle, in.Answers))
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("op=usecase.Evaluate: %w", err)
	}
	observability.ObserveEvaluation(ev.OverallEvaluation.Rating)
	observability.LoggerFromContext(ctx).Info("answers evaluated",
		slog.String("job_title", in.JobTitle),
		slog.Int("answers", len(in.Answers)),
		slog.String("rating", string(ev.OverallEvaluation.Rating)))
	return ev, nil
}
