// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

package genie

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatCell normalizes a raw cell value for display. The service returns
// numbers as strings, often in scientific notation; magnitudes of a million
// or more render with thousands separators and no decimals, a thousand or
// more with separators and two decimals, smaller values with two decimals.
// Non-numeric input passes through unchanged — parse failure is an
// intentional degrade, never an error.
func FormatCell(raw string) string {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return raw
	}
	switch abs := math.Abs(n); {
	case abs >= 1_000_000:
		return groupThousands(fmt.Sprintf("%.0f", n))
	case abs >= 1_000:
		return groupThousands(fmt.Sprintf("%.2f", n))
	default:
		return fmt.Sprintf("%.2f", n)
	}
}

// FormatRow applies FormatCell to every value of a row.
func FormatRow(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = FormatCell(v)
	}
	return out
}

// groupThousands inserts commas into the integer part of a plain decimal
// string, preserving sign and fraction.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		return sign + b.String() + "." + fracPart
	}
	return sign + b.String()
}
