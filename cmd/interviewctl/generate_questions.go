package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/ai/gemini"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
	"github.com/fairyhunter13/ai-mock-interview/internal/usecase"
)

var generateQuestionsCmd = &cobra.Command{
	Use:   "generate-questions",
	Short: "Print the question set for a job description and a CV",
	RunE:  runGenerateQuestions,
}

var (
	genJobTitle       string
	genJobDescription string
	genCVFile         string
	genCustom         []string
)

func init() {
	generateQuestionsCmd.Flags().StringVar(&genJobTitle, "job-title", "", "Job title")
	generateQuestionsCmd.Flags().StringVar(&genJobDescription, "job-description", "", "Job description text")
	generateQuestionsCmd.Flags().StringVar(&genCVFile, "cv-file", "", "Path to a plain text CV")
	generateQuestionsCmd.Flags().StringArrayVar(&genCustom, "custom", nil, "Interviewer question (repeatable)")
	_ = generateQuestionsCmd.MarkFlagRequired("job-description")
	_ = generateQuestionsCmd.MarkFlagRequired("cv-file")

	rootCmd.AddCommand(generateQuestionsCmd)
}

func runGenerateQuestions(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cv, err := os.ReadFile(genCVFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", genCVFile, err)
	}
	llm, err := gemini.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	svc := usecase.NewQuestionService(llm, usecase.QuestionOptions{
		MaxCVTokens:    cfg.PromptMaxCVTokens,
		LocalSelection: cfg.LocalSelection(),
		Seed:           cfg.QuestionSelectionSeed,
	})
	questions, err := svc.Generate(cmd.Context(), usecase.GenerateInput{
		Job:             domain.JobPosting{Title: genJobTitle, Description: genJobDescription},
		CVText:          string(cv),
		CustomQuestions: genCustom,
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string][]string{"questions": questions})
}
