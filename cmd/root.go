// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the askdb application.
// It implements subcommands for chatting with a database in natural language,
// managing saved data sources and query presets, and storing the AI provider
// API key, using the Cobra CLI framework with a rich pterm terminal UI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "askdb",
	Short:         "Query your database in natural language",
	Long: `askdb turns natural-language questions into read-only SQL using an AI
provider, shows you the generated query for confirmation, and executes it
against PostgreSQL, MySQL, or SQLite.

Get started:
  askdb sources add          configure a database connection
  askdb key set              store your AI provider API key
  askdb chat                 start asking questions`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("askdb %s\n", Version)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
}
