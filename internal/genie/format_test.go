// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

package genie

import "testing"

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "millions no decimals", raw: "1234567", want: "1,234,567"},
		{name: "thousands two decimals", raw: "1234.5", want: "1,234.50"},
		{name: "small two decimals", raw: "12.3", want: "12.30"},
		{name: "non-numeric passthrough", raw: "abc", want: "abc"},
		{name: "scientific notation", raw: "1.5e6", want: "1,500,000"},
		{name: "negative millions", raw: "-2500000", want: "-2,500,000"},
		{name: "negative thousands", raw: "-1234.567", want: "-1,234.57"},
		{name: "zero", raw: "0", want: "0.00"},
		{name: "empty passthrough", raw: "", want: ""},
		{name: "whitespace numeric", raw: " 42 ", want: "42.00"},
		{name: "date passthrough", raw: "2016-04-01", want: "2016-04-01"},
		{name: "boundary million", raw: "1000000", want: "1,000,000"},
		{name: "boundary thousand", raw: "1000", want: "1,000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCell(tt.raw); got != tt.want {
				t.Errorf("FormatCell(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFormatRow(t *testing.T) {
	got := FormatRow([]string{"1234567", "abc"})
	if got[0] != "1,234,567" || got[1] != "abc" {
		t.Errorf("FormatRow() = %v", got)
	}
}
