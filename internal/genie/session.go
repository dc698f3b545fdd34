// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

package genie

import (
	"context"
	"errors"
	"strings"
)

// Turn is the outcome of one question: the completed message payload and,
// when the answer carried a result attachment, the fetched statement result.
type Turn struct {
	ConversationID string
	MessageID      string
	Message        *Message
	// Result is nil when the completed message had no result attachment.
	Result *StatementResult
}

// Session owns the conversation state for one user interaction. It is
// constructed at session start and passed explicitly into every call; a
// "new conversation" reset simply calls Reset. Sessions are not safe for
// concurrent use — the orchestration is strictly sequential.
type Session struct {
	api    API
	poller *Poller

	conversationID string
}

// NewSession creates a Session over api with the given poll policy.
func NewSession(api API, policy PollPolicy) *Session {
	return &Session{api: api, poller: NewPoller(api, policy)}
}

// OnProgress forwards per-attempt progress from the poll loop.
func (s *Session) OnProgress(fn func(Progress)) { s.poller.OnProgress = fn }

// OnWarn forwards soft mid-poll warnings.
func (s *Session) OnWarn(fn func(error)) { s.poller.OnWarn = fn }

// ConversationID returns the active conversation identifier, or "" when no
// conversation has been started.
func (s *Session) ConversationID() string { return s.conversationID }

// Active reports whether a conversation is in flight.
func (s *Session) Active() bool { return s.conversationID != "" }

// Reset abandons the current conversation. The next Ask starts a fresh one;
// the remote service keeps no client-side obligations for abandoned threads.
func (s *Session) Reset() { s.conversationID = "" }

// Ask submits a question. The first Ask of a session starts a new
// conversation; with a conversation already active it behaves like FollowUp
// so the caller can stay in one loop.
func (s *Session) Ask(ctx context.Context, question string) (*Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("question must not be empty")
	}
	if s.Active() {
		return s.FollowUp(ctx, question)
	}
	conversationID, messageID, err := s.api.StartConversation(ctx, question)
	if err != nil {
		return nil, err
	}
	s.conversationID = conversationID
	return s.completeTurn(ctx, messageID)
}

// FollowUp posts a question into the active conversation and runs the same
// poll/fetch cycle for the new message, isolated from any prior turn.
func (s *Session) FollowUp(ctx context.Context, question string) (*Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("question must not be empty")
	}
	if !s.Active() {
		return nil, errors.New("no active conversation; ask a question first")
	}
	messageID, err := s.api.CreateMessage(ctx, s.conversationID, question)
	if err != nil {
		return nil, err
	}
	return s.completeTurn(ctx, messageID)
}

// completeTurn polls the message to completion and fetches the statement
// result for the first attachment that exposes an identifier. A completed
// message with no result attachment yields a Turn with a nil Result and no
// fetch is made.
func (s *Session) completeTurn(ctx context.Context, messageID string) (*Turn, error) {
	msg, err := s.poller.Wait(ctx, s.conversationID, messageID)
	if err != nil {
		return nil, err
	}
	turn := &Turn{ConversationID: s.conversationID, MessageID: messageID, Message: msg}
	if att, ok := msg.FirstResultAttachment(); ok {
		result, err := s.api.GetQueryResult(ctx, s.conversationID, messageID, att.AttachmentID)
		if err != nil {
			return nil, err
		}
		turn.Result = result
	}
	return turn, nil
}
