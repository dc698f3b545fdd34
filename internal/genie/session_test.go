// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

package genie

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// fakeAPI records calls and serves canned responses per message.
type fakeAPI struct {
	startCalls   int
	createCalls  int
	fetchCalls   int
	fetchedAtt   []string
	messages     map[string][]scriptStep // messageID -> poll script
	pollCalls    map[string]int
	nextMessage  int
	conversation string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		conversation: "conv-1",
		messages:     make(map[string][]scriptStep),
		pollCalls:    make(map[string]int),
	}
}

func (f *fakeAPI) addMessage(script ...scriptStep) string {
	f.nextMessage++
	id := fmt.Sprintf("msg-%d", f.nextMessage)
	for i := range script {
		if script[i].msg != nil {
			script[i].msg.ID = id
		}
	}
	f.messages[id] = script
	return id
}

func (f *fakeAPI) StartConversation(ctx context.Context, question string) (string, string, error) {
	f.startCalls++
	return f.conversation, fmt.Sprintf("msg-%d", 1), nil
}

func (f *fakeAPI) CreateMessage(ctx context.Context, conversationID, question string) (string, error) {
	f.createCalls++
	if conversationID != f.conversation {
		return "", fmt.Errorf("unexpected conversation %q", conversationID)
	}
	return fmt.Sprintf("msg-%d", f.nextMessage), nil
}

func (f *fakeAPI) GetMessage(ctx context.Context, conversationID, messageID string) (*Message, error) {
	script, ok := f.messages[messageID]
	if !ok {
		return nil, fmt.Errorf("unknown message %q", messageID)
	}
	i := f.pollCalls[messageID]
	f.pollCalls[messageID]++
	if i >= len(script) {
		i = len(script) - 1
	}
	return script[i].msg, script[i].err
}

func (f *fakeAPI) GetQueryResult(ctx context.Context, conversationID, messageID, attachmentID string) (*StatementResult, error) {
	f.fetchCalls++
	f.fetchedAtt = append(f.fetchedAtt, attachmentID)
	return &StatementResult{
		State:   "SUCCEEDED",
		Columns: []Column{{Name: "total_sales", Type: "DOUBLE"}},
		Rows:    [][]string{{"1234567"}},
	}, nil
}

func completedWith(attachments ...Attachment) scriptStep {
	return scriptStep{msg: &Message{Status: StatusCompleted, Attachments: attachments}}
}

func testPolicy() PollPolicy {
	return PollPolicy{MaxAttempts: 10, Interval: time.Millisecond}
}

func TestSessionAskRunsFullPipeline(t *testing.T) {
	api := newFakeAPI()
	api.addMessage(
		statusStep(StatusPending),
		statusStep(StatusInProgress),
		completedWith(Attachment{AttachmentID: "att-1"}),
	)
	s := NewSession(api, testPolicy())

	turn, err := s.Ask(context.Background(), "total sales in 2016")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if turn.ConversationID != "conv-1" || turn.MessageID != "msg-1" {
		t.Errorf("turn ids = (%q, %q)", turn.ConversationID, turn.MessageID)
	}
	if turn.Result == nil || !turn.Result.Succeeded() {
		t.Fatalf("Result = %+v, want fetched statement result", turn.Result)
	}
	if api.startCalls != 1 || api.fetchCalls != 1 {
		t.Errorf("startCalls = %d, fetchCalls = %d", api.startCalls, api.fetchCalls)
	}
	if !s.Active() || s.ConversationID() != "conv-1" {
		t.Errorf("session not tracking conversation: %q", s.ConversationID())
	}
}

func TestSessionAskRejectsBlankQuestion(t *testing.T) {
	s := NewSession(newFakeAPI(), testPolicy())
	if _, err := s.Ask(context.Background(), "   "); err == nil {
		t.Fatal("Ask(blank) expected error")
	}
}

func TestSessionNoAttachmentMeansNoFetch(t *testing.T) {
	api := newFakeAPI()
	api.addMessage(completedWith()) // completed, zero attachments
	s := NewSession(api, testPolicy())

	turn, err := s.Ask(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if turn.Result != nil {
		t.Errorf("Result = %+v, want nil", turn.Result)
	}
	if api.fetchCalls != 0 {
		t.Errorf("fetchCalls = %d, want 0", api.fetchCalls)
	}
}

func TestSessionFirstAttachmentWins(t *testing.T) {
	api := newFakeAPI()
	api.addMessage(completedWith(
		Attachment{Query: &QueryAttachment{Query: "SELECT 1"}}, // no id, skipped
		Attachment{AttachmentID: "att-first"},
		Attachment{AttachmentID: "att-second"},
	))
	s := NewSession(api, testPolicy())

	if _, err := s.Ask(context.Background(), "q"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if api.fetchCalls != 1 || api.fetchedAtt[0] != "att-first" {
		t.Errorf("fetched = %v, want only att-first", api.fetchedAtt)
	}
}

func TestSessionFollowUpReusesConversation(t *testing.T) {
	api := newFakeAPI()
	api.addMessage(completedWith(Attachment{AttachmentID: "att-1"}))
	s := NewSession(api, testPolicy())

	first, err := s.Ask(context.Background(), "first question")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	api.addMessage(
		statusStep(StatusPending),
		completedWith(Attachment{AttachmentID: "att-2"}),
	)
	second, err := s.FollowUp(context.Background(), "and by region?")
	if err != nil {
		t.Fatalf("FollowUp() error = %v", err)
	}
	if second.ConversationID != first.ConversationID {
		t.Errorf("conversation ids differ: %q vs %q", second.ConversationID, first.ConversationID)
	}
	if second.MessageID == first.MessageID {
		t.Errorf("message id %q not independent of prior turn", second.MessageID)
	}
	if api.startCalls != 1 || api.createCalls != 1 {
		t.Errorf("startCalls = %d, createCalls = %d", api.startCalls, api.createCalls)
	}
	// Each turn's poll cycle is isolated.
	if api.pollCalls[first.MessageID] != 1 || api.pollCalls[second.MessageID] != 2 {
		t.Errorf("pollCalls = %v", api.pollCalls)
	}
}

func TestSessionFollowUpRequiresActiveConversation(t *testing.T) {
	s := NewSession(newFakeAPI(), testPolicy())
	if _, err := s.FollowUp(context.Background(), "q"); err == nil {
		t.Fatal("FollowUp() without conversation expected error")
	}
}

func TestSessionResetStartsFreshConversation(t *testing.T) {
	api := newFakeAPI()
	api.addMessage(completedWith())
	s := NewSession(api, testPolicy())

	if _, err := s.Ask(context.Background(), "q"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	s.Reset()
	if s.Active() {
		t.Error("session still active after Reset")
	}

	api.addMessage(completedWith())
	if _, err := s.Ask(context.Background(), "q2"); err != nil {
		t.Fatalf("Ask() after Reset error = %v", err)
	}
	if api.startCalls != 2 {
		t.Errorf("startCalls = %d, want 2 (new conversation after reset)", api.startCalls)
	}
}
