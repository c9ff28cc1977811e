package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// MsgQuestionInputRequired is returned when the model needs context it was not given.
const MsgQuestionInputRequired = "Both jobDescription and cvDetails are required."

// FallbackQuestions complement custom questions when the model reply is unusable.
var FallbackQuestions = []string{
	"Tell me about your experience with the technologies mentioned in this role.",
	"Describe a challenging project you've worked on and how you overcame the difficulties.",
	"Why are you interested in this particular position and our company?",
}

// QuestionOptions tunes QuestionService.
type QuestionOptions struct {
	// MaxCVTokens caps the CV text embedded in prompts; 0 disables the cap.
	MaxCVTokens int
	// LocalSelection picks the AI-only question set in-process instead of
	// asking the model to choose.
	LocalSelection bool
	// Seed makes local selection reproducible; 0 seeds randomly.
	Seed uint64
}

// QuestionService builds the question set for an attempt.
type QuestionService struct {
	LLM  domain.LLMGateway
	opts QuestionOptions

	mu  sync.Mutex
	rng *rand.Rand
}

// GenerateInput carries the job, the CV text and the interviewer's questions.
type GenerateInput struct {
	Job             domain.JobPosting
	CVText          string
	CustomQuestions []string
}

// NewQuestionService constructs a QuestionService.
func NewQuestionService(llm domain.LLMGateway, opts QuestionOptions) *QuestionService {
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &QuestionService{LLM: llm, opts: opts, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// CleanQuestions trims entries and drops the blank ones.
func CleanQuestions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, q := range in {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}

// Generate returns at most domain.QuestionSetSize questions. Custom questions
// come first in alternation; with three or more no model call is made, so the
// job description and CV text are only required when the model is asked.
// Sessions opened from an interview rely on this. POST /api/generate-questions
// still requires both inputs up front.
func (s *QuestionService) Generate(ctx domain.Context, in GenerateInput) ([]string, error) {
	custom := CleanQuestions(in.CustomQuestions)
	if len(custom) >= domain.QuestionSetSize {
		return custom[:domain.QuestionSetSize], nil
	}
	if strings.TrimSpace(in.Job.Description) == "" || strings.TrimSpace(in.CVText) == "" {
		return nil, domain.InvalidArgument(MsgQuestionInputRequired)
	}
	cv := capText(in.CVText, s.opts.MaxCVTokens)
	if len(custom) > 0 {
		return s.complement(ctx, in.Job, cv, custom)
	}
	return s.generateOnly(ctx, in.Job, cv)
}

func (s *QuestionService) complement(ctx domain.Context, job domain.JobPosting, cv string, custom []string) ([]string, error) {
	lg := observability.LoggerFromContext(ctx)
	needed := domain.QuestionSetSize - len(custom)

	generated, err := s.LLM.GenerateQuestions(ctx, BuildComplementaryPrompt(job, cv, custom, needed))
	var malformed *domain.MalformedResponseError
	switch {
	case errors.As(err, &malformed):
		lg.Warn("question reply unusable, using fallback questions", slog.Any("error", err), slog.Int("needed", needed))
		observability.ObserveFallback()
		generated = FallbackQuestions[:needed]
	case err != nil:
		return nil, fmt.Errorf("op=usecase.GenerateQuestions: %w", err)
	case len(generated) < needed:
		lg.Warn("model returned too few questions, padding from fallback", slog.Int("got", len(generated)), slog.Int("needed", needed))
		observability.ObserveFallback()
		generated = padQuestions(generated, needed, custom)
	}

	questions := Interleave(custom, generated)
	lg.Info("questions generated",
		slog.Int("total", len(questions)),
		slog.Int("custom", len(custom)),
		slog.Int("generated", len(generated)))
	return questions, nil
}

func (s *QuestionService) generateOnly(ctx domain.Context, job domain.JobPosting, cv string) ([]string, error) {
	pool, err := s.LLM.GenerateQuestions(ctx, BuildPoolPrompt(job, cv, !s.opts.LocalSelection))
	if err != nil {
		return nil, fmt.Errorf("op=usecase.GenerateQuestions: %w", err)
	}
	if s.opts.LocalSelection {
		return s.pick(pool), nil
	}
	if len(pool) > domain.QuestionSetSize {
		pool = pool[:domain.QuestionSetSize]
	}
	return pool, nil
}

// pick returns domain.QuestionSetSize entries of pool in random order.
func (s *QuestionService) pick(pool []string) []string {
	n := min(len(pool), domain.QuestionSetSize)
	s.mu.Lock()
	perm := s.rng.Perm(len(pool))
	s.mu.Unlock()
	out := make([]string, 0, n)
	for _, i := range perm[:n] {
		out = append(out, pool[i])
	}
	return out
}

func padQuestions(generated []string, needed int, custom []string) []string {
	out := append([]string(nil), generated...)
	for _, q := range FallbackQuestions {
		if len(out) >= needed {
			break
		}
		if !containsFold(out, q) && !containsFold(custom, q) {
			out = append(out, q)
		}
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
