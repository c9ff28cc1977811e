// Command interviewctl runs operator tasks against the interview backend:
// CV analysis, question generation, seeding interview configurations and
// hashing the admin password.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "interviewctl",
	Short:         "Operator tools for the AI mock interview backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig reads the environment and routes logs to stderr so command
// output on stdout stays machine readable.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	slog.SetDefault(observability.NewLogger(os.Stderr, cfg))
	return cfg, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
