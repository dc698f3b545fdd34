// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"genie/cli/internal/genie"

	"github.com/pterm/pterm"
)

// renderTurn pretty-prints one answered question: the generated SQL with its
// description, then the statement result. Text-only answers (no attachment)
// print the message content instead.
func renderTurn(turn *genie.Turn) {
	msg := turn.Message

	if q, ok := msg.FirstQueryAttachment(); ok {
		title := pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("Generated SQL")
		pterm.Println(pterm.DefaultBox.WithTitle(title).WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).Sprint(q.Query))
		if q.Description != "" {
			pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint(q.Description))
		}
	} else if msg.Content != "" {
		pterm.Println(msg.Content)
	}

	if turn.Result == nil {
		return
	}
	renderResult(turn.Result)
}

// renderResult displays a statement result. Single-row results with at most
// two columns render as a metric; everything else renders as a table with
// the numeric cells formatted for reading.
func renderResult(result *genie.StatementResult) {
	if !result.Succeeded() {
		pterm.Warning.Printf("Query finished in state %s; no data to display.\n", result.State)
		return
	}
	if len(result.Rows) == 0 {
		pterm.Info.Println("The query returned no rows.")
		return
	}

	if len(result.Rows) == 1 && len(result.Columns) <= 2 && len(result.Columns) > 0 {
		renderMetric(result)
		return
	}

	data := make(pterm.TableData, 0, len(result.Rows)+1)
	header := make([]string, len(result.Columns))
	for i, c := range result.Columns {
		header[i] = c.Name
	}
	data = append(data, header)
	for _, row := range result.Rows {
		data = append(data, genie.FormatRow(row))
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Println(pterm.NewStyle(pterm.FgGray).Sprintf("%d rows", len(result.Rows)))
}

// renderMetric shows a one-row answer as label/value pairs, which reads
// better than a one-line table for aggregate answers like a single count.
func renderMetric(result *genie.StatementResult) {
	row := genie.FormatRow(result.Rows[0])
	for i, c := range result.Columns {
		value := ""
		if i < len(row) {
			value = row[i]
		}
		pterm.Println(
			pterm.NewStyle(pterm.FgLightCyan).Sprint(c.Name+": ") +
				pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(value))
	}
}
