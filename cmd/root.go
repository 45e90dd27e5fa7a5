// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "repolens",
	Short: "A CLI tool to analyze a GitHub user's repository portfolio.",
	Long: `repolens enumerates a GitHub user's repositories, derives technology-stack
signals per repository (languages, frameworks, tools, complexity, category),
and renders a portfolio report in Markdown, optionally with a JSON export and
an analysis-prompt document.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A .env file in the working directory may carry GITHUB_TOKEN.
		// Missing file is fine.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
