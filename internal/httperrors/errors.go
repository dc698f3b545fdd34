// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors provides user-friendly presentation of network-level
// failures. It detects common error classes (timeout, DNS, connection
// refused, TLS, server errors) and prints targeted troubleshooting hints.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// FormatNetworkError explains a network error to the user and returns a
// wrapped error for logging. context describes the operation that failed,
// e.g. "starting the conversation".
func FormatNetworkError(err error, context string) error {
	if err == nil {
		return nil
	}
	displayErrorMessage(err, context)
	return fmt.Errorf("network error: %w", err)
}

func displayErrorMessage(err error, context string) {
	errStr := err.Error()

	switch {
	case isTimeoutError(err):
		showTimeoutError(context)
	case isDNSError(err):
		showDNSError(context)
	case isConnectionRefusedError(err):
		showConnectionRefusedError(context)
	case isTLSError(err):
		showTLSError(context)
	case isServerError(errStr):
		showServerError(context)
	default:
		showGenericError(context, errStr)
	}
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLSError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

func isServerError(errStr string) bool {
	lower := strings.ToLower(errStr)
	return strings.Contains(lower, "500") ||
		strings.Contains(lower, "502") ||
		strings.Contains(lower, "503") ||
		strings.Contains(lower, "504") ||
		strings.Contains(lower, "internal server error") ||
		strings.Contains(lower, "bad gateway") ||
		strings.Contains(lower, "service unavailable") ||
		strings.Contains(lower, "gateway timeout")
}

func showTimeoutError(context string) {
	pterm.Printf("⏱️  Request timed out while %s\n", context)
	pterm.Println()
	pterm.Println("The workspace took too long to respond. This could mean:")
	pterm.Println("  • Slow internet connection")
	pterm.Println("  • The workspace is under heavy load")
	pterm.Println("  • A firewall is blocking the connection")
	pterm.Println()
	pterm.Println("Please try again in a few moments.")
	pterm.Println()
}

func showDNSError(context string) {
	pterm.Printf("🌐 Cannot resolve the workspace address while %s\n", context)
	pterm.Println()
	pterm.Println("Please check:")
	pterm.Println("  • The workspace host is spelled correctly (run 'genie status')")
	pterm.Println("  • Your internet connection is working")
	pterm.Println("  • No DNS-level blocking (corporate firewall, VPN split tunneling)")
	pterm.Println()
}

func showConnectionRefusedError(context string) {
	pterm.Printf("🚫 Connection refused while %s\n", context)
	pterm.Println()
	pterm.Println("The workspace is not accepting connections. This could mean:")
	pterm.Println("  • The host or port is wrong")
	pterm.Println("  • A firewall or proxy is blocking the connection")
	pterm.Println()
	pterm.Println("Please verify the workspace host and try again.")
	pterm.Println()
}

func showTLSError(context string) {
	pterm.Printf("🔒 Secure connection failed while %s\n", context)
	pterm.Println()
	pterm.Println("Cannot establish a secure HTTPS connection. This could mean:")
	pterm.Println("  • A network proxy is interfering with HTTPS")
	pterm.Println("  • The system clock is incorrect")
	pterm.Println()
	pterm.Println("Check your system date/time and proxy settings.")
	pterm.Println()
}

func showServerError(context string) {
	pterm.Printf("⚠️  Workspace error while %s\n", context)
	pterm.Println()
	pterm.Println("The Databricks workspace reported an internal error.")
	pterm.Println("This is not a problem with your setup; please retry shortly.")
	pterm.Println()
}

func showGenericError(context string, errDetails string) {
	pterm.Printf("❌ Cannot reach the workspace while %s\n", context)
	pterm.Println()
	pterm.Println("Please check:")
	pterm.Println("  • Your internet connection")
	pterm.Println("  • Whether the workspace is accessible from your network")
	pterm.Println()
	if errDetails != "" {
		if len(errDetails) > 100 {
			errDetails = errDetails[:100] + "..."
		}
		pterm.Debug.Printf("Technical details: %s\n", errDetails)
		pterm.Println()
	}
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "workspace"
	}
	return u.Host
}
