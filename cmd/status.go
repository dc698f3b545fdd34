package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"genie/cli/internal/config"
	"genie/cli/internal/genie"
	"genie/cli/internal/keychain"
	"genie/cli/internal/logging"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command for displaying the current setup.
// It shows the configured workspace and space, where the token comes from,
// and probes the workspace to confirm the credentials still work.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured workspace and verify connectivity",
	Long: `The status command displays the configured workspace host, Genie space ID
and token source (environment or keychain, shown abbreviated), then performs
a lightweight authenticated probe against the workspace to confirm the
credentials still work.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg = cfg.ApplyEnv()
		if !cfg.Complete() {
			fmt.Println("⚠️  No workspace configured.")
			fmt.Println("   Run 'genie connect' to get started.")
			return nil
		}

		fmt.Printf("Workspace: %s\n", cfg.Host)
		fmt.Printf("Space:     %s\n", cfg.SpaceID)

		token := ""
		source := "none"
		if v := strings.TrimSpace(os.Getenv(config.EnvToken)); v != "" {
			token, source = v, "environment"
		} else if km, err := keychain.GetManager(); err == nil {
			if t, err := km.LoadToken(); err == nil {
				token, source = t, "keychain"
			}
		}
		if token == "" {
			fmt.Println("Token:     not set")
			fmt.Println()
			fmt.Println("⚠️  No API token found. Run 'genie connect' to store one.")
			return nil
		}
		fmt.Printf("Token:     %s (%s)\n", logging.MaskToken(token), source)

		client := genie.NewClient(cfg.Host, cfg.SpaceID, token)
		stopSpinner := startInlineSpinner(os.Stdout, "probing workspace",
			[]string{"-", "\\", "|", "/"}, 100*time.Millisecond)
		ctxProbe, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		probeErr := client.Probe(ctxProbe)
		cancel()
		stopSpinner()
		if probeErr != nil {
			presentGenieError(probeErr, "probing the workspace")
			return probeErr
		}
		fmt.Println("✅ Workspace reachable and token accepted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
