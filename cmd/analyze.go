// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/repolens/repolens/internal/gateway"
	"github.com/repolens/repolens/internal/report"
	"github.com/repolens/repolens/internal/usecase"
)

const (
	jsonExportFile = "portfolio_analysis.json"
	promptFile     = "analysis_prompt.md"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyzes a user's repositories and writes a portfolio report",
	Long: `Analyzes the repositories of a GitHub user (the authenticated user by
default), classifies each one by technology stack, and writes a Markdown
report. Optionally also writes a JSON export and an analysis-prompt document.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		// Get other flags.
		user, _ := cmd.Flags().GetString("user")
		maxRepos, _ := cmd.Flags().GetInt("max-repos")
		output, _ := cmd.Flags().GetString("output")
		saveJSON, _ := cmd.Flags().GetBool("save-json")
		savePrompt, _ := cmd.Flags().GetBool("prompt")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: a GitHub token is required. Pass --token or set GITHUB_TOKEN (a .env file works too).")
			os.Exit(1)
		}
		if maxRepos < 1 {
			fmt.Fprintln(os.Stderr, "Error: --max-repos must be at least 1.")
			os.Exit(1)
		}

		// Inject dependencies and run the main business logic.
		githubGateway, err := gateway.NewGitHubGateway(token, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		analyzer := usecase.NewAnalyzer(githubGateway, logger, concurrency)

		result, err := analyzer.Analyze(ctx, user, maxRepos)
		if err != nil {
			exitWithAnalysisError(err)
		}

		now := time.Now()
		markdown := report.RenderMarkdown(result.User, result.Stats, result.Repositories, now)
		if err := os.WriteFile(output, []byte(markdown), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Report written to %s (%d repositories analyzed)\n", output, result.Stats.TotalRepos)

		if saveJSON {
			data, err := report.RenderJSON(result.User, result.Stats, result.Repositories, now)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to marshal JSON export: %v\n", err)
				os.Exit(1)
			}
			if err := os.WriteFile(jsonExportFile, data, 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write JSON export: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("JSON export written to %s\n", jsonExportFile)
		}

		if savePrompt {
			prompt := report.RenderPrompt(result.User, result.Stats, result.Repositories, now)
			if err := os.WriteFile(promptFile, []byte(prompt), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write analysis prompt: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Analysis prompt written to %s\n", promptFile)
		}
	},
}

// exitWithAnalysisError prints a remedial message for the known failure
// modes and exits non-zero.
func exitWithAnalysisError(err error) {
	var authErr *gateway.AuthError
	var rateErr *gateway.RateLimitError
	switch {
	case errors.As(err, &authErr):
		fmt.Fprintf(os.Stderr, "Authentication failed: %v\n", err)
		fmt.Fprintln(os.Stderr, "Check that the token is valid and has the repo scope.")
	case errors.As(err, &rateErr):
		fmt.Fprintf(os.Stderr, "GitHub rate limit exhausted: %v\n", err)
		fmt.Fprintln(os.Stderr, "Wait for the window to reset or lower --max-repos.")
	default:
		fmt.Fprintf(os.Stderr, "Failed to analyze portfolio: %v\n", err)
	}
	os.Exit(1)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("user", "u", "", "Target GitHub user (defaults to the authenticated user)")
	analyzeCmd.Flags().StringP("token", "t", "", "GitHub personal access token (defaults to GITHUB_TOKEN)")
	analyzeCmd.Flags().Int("max-repos", 100, "Maximum number of repositories to analyze")
	analyzeCmd.Flags().StringP("output", "o", "report.md", "Output path for the Markdown report")
	analyzeCmd.Flags().Bool("save-json", false, "Also write the full analysis as JSON")
	analyzeCmd.Flags().Bool("prompt", false, "Also write an analysis-prompt document")
	analyzeCmd.Flags().Int("concurrency", 1, "Parallel per-repository detail fetches")
}
