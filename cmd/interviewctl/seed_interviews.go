package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
	"github.com/fairyhunter13/ai-mock-interview/internal/usecase"
)

var seedInterviewsCmd = &cobra.Command{
	Use:   "seed-interviews <file.yaml>",
	Short: "Upsert interview configurations from a YAML file",
	Long: `Upsert interview configurations into Postgres. Ids derive from the job
title, so running the same file twice updates rather than duplicates.

  interviews:
    - job_title: Backend Engineer
      job_description: Build Go services.
      status: active
      custom_questions:
        - Describe a production incident you handled.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeedInterviews,
}

func init() {
	rootCmd.AddCommand(seedInterviewsCmd)
}

type interviewUpserter interface {
	Upsert(ctx domain.Context, in domain.Interview) error
}

// seedNamespace scopes the deterministic interview ids.
var seedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("ai-mock-interview/interviews"))

func seedID(title string) string {
	return uuid.NewSHA1(seedNamespace, []byte(strings.ToLower(strings.TrimSpace(title)))).String()
}

func runSeedInterviews(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.DBEnabled() {
		return fmt.Errorf("DB_URL is required")
	}
	seeds, err := config.LoadInterviewSeeds(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}
	n, err := seedInterviews(ctx, postgres.NewInterviewRepo(pool), seeds, time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d interviews\n", n)
	return nil
}

// seedInterviews validates every entry before writing any of them.
func seedInterviews(ctx context.Context, repo interviewUpserter, seeds []config.InterviewSeed, now time.Time) (int, error) {
	items := make([]domain.Interview, 0, len(seeds))
	for i, s := range seeds {
		in := domain.Interview{
			ID:              seedID(s.JobTitle),
			JobTitle:        strings.TrimSpace(s.JobTitle),
			JobDescription:  strings.TrimSpace(s.JobDescription),
			CustomQuestions: usecase.CleanQuestions(s.CustomQuestions),
			Status:          domain.InterviewStatus(strings.ToLower(strings.TrimSpace(s.Status))),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if in.Status == "" {
			in.Status = domain.InterviewActive
		}
		if !in.Status.Valid() {
			return 0, domain.InvalidArgument("interview %d: unknown status %q", i, s.Status)
		}
		items = append(items, in)
	}

	for _, in := range items {
		if err := repo.Upsert(ctx, in); err != nil {
			return 0, fmt.Errorf("op=seed.upsert: %s: %w", in.JobTitle, err)
		}
		slog.Info("interview seeded", slog.String("id", in.ID), slog.String("job_title", in.JobTitle))
	}
	return len(items), nil
}
