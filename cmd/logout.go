// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"genie/cli/internal/config"
	"genie/cli/internal/keychain"

	"github.com/spf13/cobra"
)

// logoutCmd represents the logout command for clearing stored credentials.
// It removes the saved API token from the OS keychain and deletes the local
// configuration file.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved token and workspace configuration",
	Long: `The logout command clears all stored state from the local system.

This command removes:
- The API token from the OS keychain
- The workspace configuration file`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if km, err := keychain.GetManager(); err == nil {
			_ = km.ClearToken()
		}
		_ = config.Clear()

		fmt.Println("✅ Saved token and configuration have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
