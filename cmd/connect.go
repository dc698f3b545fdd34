// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"genie/cli/internal/config"
	"genie/cli/internal/genie"
	"genie/cli/internal/keychain"
	"genie/cli/internal/terminal"

	"github.com/spf13/cobra"
)

// connectCmd represents the connect command for configuring workspace access.
// It prompts for the workspace host, the Genie space ID and a personal access
// token, verifies the token against the workspace, and then stores the token
// securely in the OS keychain with the non-secret settings in the config file.
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Configure and verify Databricks workspace access",
	Long: `The connect command prompts for the Databricks workspace host, the Genie
space ID and a personal access token, then verifies that the token can reach
the space. The token is stored securely in the OS keychain; the host and
space ID go into the config file.

Example host format: adb-1234567890123456.7.azuredatabricks.net`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		prompt := func(label, current string) string {
			if current != "" {
				fmt.Printf("%s [%s]: ", label, current)
			} else {
				fmt.Printf("%s: ", label)
			}
			line, _ := reader.ReadString('\n')
			line = strings.TrimSpace(line)
			if line == "" {
				return current
			}
			return line
		}

		cfg.Host = prompt("Workspace host (e.g., adb-1234567890123456.7.azuredatabricks.net)", cfg.Host)
		if cfg.Host == "" {
			return errors.New("workspace host is required")
		}
		cfg.SpaceID = prompt("Genie space ID", cfg.SpaceID)
		if cfg.SpaceID == "" {
			return errors.New("space ID is required")
		}

		tokenPrompt := "Personal access token (dapi...): "
		fmt.Print(tokenPrompt)
		rawToken, _ := reader.ReadString('\n')
		rawToken = strings.TrimSpace(rawToken)

		// Clear the prompt and the token from the terminal scrollback
		terminal.ClearPreviousLines(len(tokenPrompt) + len(rawToken))

		if rawToken == "" {
			return errors.New("token is required")
		}

		// Verify the token against the space before saving anything
		client := genie.NewClient(cfg.Host, cfg.SpaceID, rawToken)
		stopSpinner := startInlineSpinner(os.Stdout, "verifying workspace access",
			[]string{"-", "\\", "|", "/"}, 100*time.Millisecond)
		ctxProbe, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		probeErr := client.Probe(ctxProbe)
		cancel()
		stopSpinner()
		if probeErr != nil {
			presentGenieError(probeErr, "verifying workspace access")
			return probeErr
		}

		if err := config.Save(cfg); err != nil {
			fmt.Println("❌ Failed to save configuration.")
			return err
		}

		km, err := keychain.GetManager()
		if err != nil {
			fmt.Println("❌ Secure storage is not available on this system.")
			fmt.Printf("   Access verified but the token was not saved; export %s instead.\n", config.EnvToken)
			return err
		}
		if err := km.SaveToken(rawToken); err != nil {
			fmt.Println("❌ Failed to save the token securely.")
			return err
		}

		fmt.Println("✅ Workspace access verified and saved!")
		fmt.Println("   You're ready to run 'genie ask'")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
