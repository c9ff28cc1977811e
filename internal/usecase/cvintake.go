package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// CVIntakeService turns an uploaded CV into text, sections, a candidate name
// and, when a job description is given, a question set.
type CVIntakeService struct {
	Analyzer  domain.DocumentAnalyzer
	Questions *QuestionService
	Names     NameService
}

// CVIntakeInput is one uploaded document.
type CVIntakeInput struct {
	Document        []byte
	ContentType     string
	Job             domain.JobPosting
	CustomQuestions []string
}

// CVIntakeResult is the outcome of analysing a CV.
type CVIntakeResult struct {
	Text          string            `json:"text"`
	Sections      domain.CVSections `json:"sections"`
	CandidateName string            `json:"candidateName"`
	Questions     []string          `json:"questions,omitempty"`
}

// NewCVIntakeService constructs a CVIntakeService.
func NewCVIntakeService(a domain.DocumentAnalyzer, q *QuestionService, n NameService) CVIntakeService {
	return CVIntakeService{Analyzer: a, Questions: q, Names: n}
}

// Analyze extracts the document text, classifies it and then runs name
// extraction and question generation concurrently.
func (s CVIntakeService) Analyze(ctx domain.Context, in CVIntakeInput) (CVIntakeResult, error) {
	lg := observability.LoggerFromContext(ctx)

	text, err := s.Analyzer.Analyze(ctx, in.Document, in.ContentType)
	if err != nil {
		return CVIntakeResult{}, fmt.Errorf("op=usecase.AnalyzeCV: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return CVIntakeResult{}, domain.InvalidArgument("no text could be extracted from the uploaded file")
	}
	res := CVIntakeResult{Text: text, Sections: domain.ParseSections(text)}
	lg.Info("cv text extracted", slog.Int("chars", len(text)), slog.Int("sections", len(res.Sections)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		name, err := s.Names.Extract(gctx, text)
		if err != nil {
			return err
		}
		res.CandidateName = name
		return nil
	})
	if strings.TrimSpace(in.Job.Description) != "" && s.Questions != nil {
		g.Go(func() error {
			qs, err := s.Questions.Generate(gctx, GenerateInput{
				Job:             in.Job,
				CVText:          CVPromptText(res.Sections, text),
				CustomQuestions: in.CustomQuestions,
			})
			if err != nil {
				return err
			}
			res.Questions = qs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CVIntakeResult{}, fmt.Errorf("op=usecase.AnalyzeCV: %w", err)
	}
	return res, nil
}

// CVPromptText prefers the classified sections and falls back to raw text.
func CVPromptText(sections domain.CVSections, raw string) string {
	if f := sections.Format(); strings.TrimSpace(f) != "" {
		return f
	}
	return raw
}
