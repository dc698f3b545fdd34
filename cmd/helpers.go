// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"genie/cli/internal/config"
	"genie/cli/internal/genie"
	"genie/cli/internal/httperrors"
	"genie/cli/internal/keychain"
	"genie/cli/internal/logging"

	"github.com/pterm/pterm"
)

// resolveClient builds a Genie client from the stored configuration, the
// environment and the keychain. When setup is incomplete it prints guidance
// and returns ok=false with a nil error, so callers exit cleanly without a
// usage dump.
func resolveClient() (*genie.Client, config.Config, bool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, false, err
	}
	cfg = cfg.ApplyEnv()
	if !cfg.Complete() {
		fmt.Println("⚠️  No workspace configured.")
		fmt.Println("   Please run 'genie connect' to set up your workspace and space,")
		fmt.Printf("   or set %s and %s in the environment.\n", config.EnvHost, config.EnvSpaceID)
		return nil, cfg, false, nil
	}
	token := resolveToken()
	if token == "" {
		fmt.Println("⚠️  No API token found.")
		fmt.Println("   Please run 'genie connect' to store a token in the OS keychain,")
		fmt.Printf("   or set %s in the environment.\n", config.EnvToken)
		return nil, cfg, false, nil
	}
	return genie.NewClient(cfg.Host, cfg.SpaceID, token), cfg, true, nil
}

// resolveToken returns the API token with environment precedence over the
// keychain, or "" when neither has one.
func resolveToken() string {
	if v := strings.TrimSpace(os.Getenv(config.EnvToken)); v != "" {
		return v
	}
	if km, err := keychain.GetManager(); err == nil {
		if t, err := km.LoadToken(); err == nil {
			return t
		}
	}
	return ""
}

// presentGenieError explains a pipeline failure to the user in terms of what
// to do next. context describes the operation, e.g. "asking the question".
func presentGenieError(err error, context string) {
	if err == nil {
		return
	}
	switch {
	case genie.IsAuth(err):
		pterm.Println("🔒 Authentication failed.")
		pterm.Println("   Your API token is missing, invalid or expired.")
		pterm.Println("   Please run 'genie connect' with a fresh token.")
	case genie.IsPermission(err):
		pterm.Println("🚫 Access denied to this Genie space.")
		pterm.Println("   Your token is valid but lacks permission for the configured space.")
		pterm.Println("   Check the space ID with 'genie status' or ask your workspace admin.")
	case genie.IsJobFailed(err):
		var ge *genie.Error
		reason := "unknown error"
		if errors.As(err, &ge) && ge.Reason != "" {
			reason = ge.Reason
		}
		pterm.Println("❌ Genie could not answer this question.")
		pterm.Println("   Reason: " + logging.Mask(reason))
		pterm.Println("   Try rephrasing the question or starting a new conversation.")
	case genie.IsTimeout(err):
		pterm.Println("⏱️  Timed out waiting for Genie to finish.")
		pterm.Println("   The question is still running on the server; asking again may")
		pterm.Println("   succeed once the space has warmed up.")
	case genie.IsTransport(err):
		_ = httperrors.FormatNetworkError(err, context)
	default:
		pterm.Error.Println(logging.PresentError(context, err))
	}
}
