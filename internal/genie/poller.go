// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

package genie

import (
	"context"
	"fmt"
	"time"
)

// PollPolicy controls the bounded retry schedule of the poller. The job has
// no push notification, so fixed-interval polling is the only completion
// signal; the schedule is injectable so tests can run under compressed time.
type PollPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultPollPolicy is 60 attempts at 2 second intervals, a ceiling of
// roughly two minutes.
var DefaultPollPolicy = PollPolicy{MaxAttempts: 60, Interval: 2 * time.Second}

// Progress describes one poll attempt for UI feedback.
type Progress struct {
	Attempt     int
	MaxAttempts int
	Status      ProcessingStatus
}

// Fraction returns attempt/max as a linear estimate. The job reports no real
// percentage; this is purely cosmetic.
func (p Progress) Fraction() float64 {
	if p.MaxAttempts <= 0 {
		return 0
	}
	return float64(p.Attempt) / float64(p.MaxAttempts)
}

// MessageReader is the subset of the API the poller needs.
type MessageReader interface {
	GetMessage(ctx context.Context, conversationID, messageID string) (*Message, error)
}

// Poller drives a message job to a terminal status.
//
// PENDING → IN_PROGRESS → {COMPLETED | FAILED | CANCELLED}; any other
// intermediate status keeps polling. A 401 or a transport fault aborts
// immediately; other non-2xx statuses are reported as soft warnings and the
// loop continues, since transient server hiccups should not abort the wait.
type Poller struct {
	reader MessageReader
	policy PollPolicy

	// OnProgress, when set, is called after every successful status read.
	OnProgress func(Progress)
	// OnWarn, when set, receives soft mid-poll errors that did not abort
	// the loop.
	OnWarn func(error)
}

// NewPoller creates a Poller over reader. A zero policy falls back to
// DefaultPollPolicy.
func NewPoller(reader MessageReader, policy PollPolicy) *Poller {
	if policy.MaxAttempts <= 0 {
		policy = DefaultPollPolicy
	}
	return &Poller{reader: reader, policy: policy}
}

// Wait polls the message until it reaches a terminal status, the attempt
// budget runs out, or ctx is cancelled. On COMPLETED it returns the full
// message payload. The context is checked before every request and every
// sleep so an enclosing caller can abort between attempts.
func (p *Poller) Wait(ctx context.Context, conversationID, messageID string) (*Message, error) {
	for attempt := 1; attempt <= p.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		msg, err := p.reader.GetMessage(ctx, conversationID, messageID)
		switch {
		case err == nil:
			if p.OnProgress != nil {
				p.OnProgress(Progress{Attempt: attempt, MaxAttempts: p.policy.MaxAttempts, Status: msg.Status})
			}
			switch msg.Status {
			case StatusCompleted:
				return msg, nil
			case StatusFailed, StatusCancelled:
				return nil, jobFailedError(msg.Status, msg.Error)
			}
		case IsProtocol(err):
			// Transient server hiccup; warn and keep the attempt slot.
			if p.OnWarn != nil {
				p.OnWarn(err)
			}
		default:
			// Auth, permission and transport failures are unrecoverable
			// without user action; stop retrying.
			return nil, err
		}

		if attempt == p.policy.MaxAttempts {
			break
		}
		if err := sleepCtx(ctx, p.policy.Interval); err != nil {
			return nil, err
		}
	}
	return nil, &Error{
		Kind: KindTimeout,
		Message: fmt.Sprintf("no terminal status after %d attempts (~%s)",
			p.policy.MaxAttempts, time.Duration(p.policy.MaxAttempts)*p.policy.Interval),
	}
}

// sleepCtx sleeps for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
