// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Genie CLI
// application. It implements subcommands for asking natural-language
// questions, configuring workspace access, and exporting query results
// using the Cobra CLI framework. The package handles command parsing,
// execution, and provides a rich terminal UI with spinners and progress
// indicators.
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
// It serves as the entry point for the Genie CLI application.
var rootCmd = &cobra.Command{
	Use:           "genie",
	Short:         "Genie CLI for conversational data queries on Databricks",
	Long:          `Genie is a command-line tool for asking natural-language questions against a Databricks Genie space and rendering the resulting data in the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("genie %s\n", Version)
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
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
}
