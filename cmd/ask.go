// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"genie/cli/internal/genie"
	"genie/cli/internal/logging"

	"atomicgo.dev/cursor"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	askJSON   bool
	askOutput string
)

// askCmd represents the ask command for running conversational queries.
// It submits a natural-language question to the configured Genie space,
// waits for the answer with live progress, renders the generated SQL and
// result table, and then keeps the conversation open for follow-ups.
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a natural-language question against the Genie space",
	Long: `The ask command submits a question to the configured Genie space and waits
for the answer. When the answer carries tabular data it is rendered as a
table together with the SQL Genie generated for the question.

After each answer you can keep asking follow-up questions in the same
conversation, type /new to start a fresh conversation, or press Enter to
finish. With --json the raw result is printed as JSON and no follow-up
prompt is shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, ok, err := resolveClient()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		reader := bufio.NewReader(os.Stdin)
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			pterm.Print("Ask Genie: ")
			line, _ := reader.ReadString('\n')
			question = strings.TrimSpace(line)
		}
		if question == "" {
			fmt.Println("⚠️  No question given.")
			return nil
		}

		session := genie.NewSession(client, genie.DefaultPollPolicy)

		for {
			turn, err := executeTurn(cmd.Context(), session, question, !askJSON)
			if err != nil {
				presentGenieError(err, "asking the question")
				return err
			}

			if askJSON {
				return printTurnJSON(turn)
			}
			renderTurn(turn)
			if askOutput != "" {
				if err := writeTurnFile(turn, askOutput); err != nil {
					pterm.Warning.Printf("Could not write %s: %v\n", askOutput, err)
				} else {
					pterm.Printf("💾 Result written to %s\n", askOutput)
				}
			}

			pterm.Println()
			pterm.Print("Follow-up (Enter to finish, /new for a new conversation): ")
			line, _ := reader.ReadString('\n')
			line = strings.TrimSpace(line)
			if line == "" || line == "/quit" || line == "quit" || line == "exit" {
				return nil
			}
			if line == "/new" {
				session.Reset()
				pterm.Print("Ask Genie: ")
				line, _ = reader.ReadString('\n')
				line = strings.TrimSpace(line)
				if line == "" {
					return nil
				}
			}
			question = line
		}
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the raw result as JSON and exit")
	askCmd.Flags().StringVarP(&askOutput, "output", "o", "", "Write the result as JSON to a file")
}

// executeTurn runs one question through the session. With showProgress set
// it animates a single-line status area while the message job is polled,
// and prints any soft poll warnings once the area is gone.
func executeTurn(ctx context.Context, session *genie.Session, question string, showProgress bool) (*genie.Turn, error) {
	var (
		mu       sync.Mutex
		latest   genie.Progress
		warnings []string
	)
	session.OnProgress(func(p genie.Progress) {
		mu.Lock()
		latest = p
		mu.Unlock()
	})
	session.OnWarn(func(err error) {
		mu.Lock()
		warnings = append(warnings, logging.Mask(err.Error()))
		mu.Unlock()
	})

	var area *pterm.AreaPrinter
	stop := make(chan struct{})
	var wg sync.WaitGroup
	if showProgress {
		cursor.Hide()
		var err error
		area, err = pterm.DefaultArea.WithRemoveWhenDone(true).Start()
		if err != nil {
			cursor.Show()
			area = nil
		}
	}
	if area != nil {
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		wg.Add(1)
		go func() {
			defer wg.Done()
			t := time.NewTicker(120 * time.Millisecond)
			defer t.Stop()
			idx := 0
			for {
				select {
				case <-t.C:
					idx++
					mu.Lock()
					p := latest
					mu.Unlock()
					line := fmt.Sprintf("%s Contacting Genie", frames[idx%len(frames)])
					if p.Attempt > 0 {
						line = fmt.Sprintf("%s %s (attempt %d/%d)",
							frames[idx%len(frames)], statusLabel(p.Status), p.Attempt, p.MaxAttempts)
					}
					area.Update(line)
				case <-stop:
					return
				}
			}
		}()
	}

	turn, askErr := session.Ask(ctx, question)

	close(stop)
	wg.Wait()
	if area != nil {
		_ = area.Stop()
		cursor.Show()
	}
	mu.Lock()
	flushed := warnings
	mu.Unlock()
	for _, w := range flushed {
		pterm.Warning.Println(w)
	}
	return turn, askErr
}

// statusLabel humanizes a processing status for the progress line.
func statusLabel(s genie.ProcessingStatus) string {
	switch s {
	case genie.StatusPending:
		return "Queued"
	case genie.StatusInProgress:
		return "Thinking"
	case "":
		return "Contacting Genie"
	}
	// e.g. EXECUTING_QUERY -> "Executing query"
	label := strings.ToLower(strings.ReplaceAll(string(s), "_", " "))
	return strings.ToUpper(label[:1]) + label[1:]
}

// turnJSON is the machine-readable shape of one answered question.
type turnJSON struct {
	ConversationID string         `json:"conversation_id"`
	MessageID      string         `json:"message_id"`
	Content        string         `json:"content,omitempty"`
	Query          string         `json:"query,omitempty"`
	Description    string         `json:"description,omitempty"`
	State          string         `json:"state,omitempty"`
	Columns        []genie.Column `json:"columns,omitempty"`
	Rows           [][]string     `json:"rows,omitempty"`
}

func turnToJSON(turn *genie.Turn) turnJSON {
	out := turnJSON{
		ConversationID: turn.ConversationID,
		MessageID:      turn.MessageID,
		Content:        turn.Message.Content,
	}
	if q, ok := turn.Message.FirstQueryAttachment(); ok {
		out.Query = q.Query
		out.Description = q.Description
	}
	if turn.Result != nil {
		out.State = turn.Result.State
		out.Columns = turn.Result.Columns
		out.Rows = turn.Result.Rows
	}
	return out
}

func printTurnJSON(turn *genie.Turn) error {
	b, err := json.MarshalIndent(turnToJSON(turn), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func writeTurnFile(turn *genie.Turn, path string) error {
	b, err := json.MarshalIndent(turnToJSON(turn), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
