package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/docintel"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

var analyzeCVCmd = &cobra.Command{
	Use:   "analyze-cv <file>",
	Short: "Extract and classify the text of a CV",
	Long:  "Submit a PDF or Word CV for layout analysis, poll until it completes and print the text and its sections as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyzeCV,
}

func init() {
	rootCmd.AddCommand(analyzeCVCmd)
}

type analyzeOutput struct {
	Text     string            `json:"text"`
	Sections domain.CVSections `json:"sections"`
}

func runAnalyzeCV(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DocIntelEndpoint == "" || cfg.DocIntelAPIKey == "" {
		return fmt.Errorf("DOCINTEL_ENDPOINT and DOCINTEL_API_KEY are required")
	}
	doc, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	mt := mimetype.Detect(doc)

	text, err := docintel.New(cfg, nil).Analyze(cmd.Context(), doc, mt.String())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(analyzeOutput{Text: text, Sections: domain.ParseSections(text)})
}
