// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

package genie

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedReader replays a fixed sequence of poll responses. Once the script
// is exhausted it keeps returning the final entry.
type scriptedReader struct {
	script []scriptStep
	calls  int
}

type scriptStep struct {
	msg *Message
	err error
}

func (r *scriptedReader) GetMessage(ctx context.Context, conversationID, messageID string) (*Message, error) {
	step := r.script[len(r.script)-1]
	if r.calls < len(r.script) {
		step = r.script[r.calls]
	}
	r.calls++
	return step.msg, step.err
}

func statusStep(s ProcessingStatus) scriptStep {
	return scriptStep{msg: &Message{ID: "msg-1", Status: s}}
}

func TestWaitReachesCompleted(t *testing.T) {
	reader := &scriptedReader{script: []scriptStep{
		statusStep(StatusPending),
		statusStep(StatusInProgress),
		statusStep(StatusCompleted),
	}}
	const interval = 10 * time.Millisecond
	poller := NewPoller(reader, PollPolicy{MaxAttempts: 60, Interval: interval})

	var progress []Progress
	poller.OnProgress = func(p Progress) { progress = append(progress, p) }

	start := time.Now()
	msg, err := poller.Wait(context.Background(), "conv-1", "msg-1")
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if msg.Status != StatusCompleted {
		t.Errorf("Status = %v, want COMPLETED", msg.Status)
	}
	if reader.calls != 3 {
		t.Errorf("status reads = %d, want 3", reader.calls)
	}
	// Two sleeps: after the PENDING and IN_PROGRESS attempts, none after
	// the terminal one.
	if elapsed := time.Since(start); elapsed < 2*interval {
		t.Errorf("elapsed = %v, want at least %v (two sleeps)", elapsed, 2*interval)
	}
	if len(progress) != 3 {
		t.Fatalf("progress callbacks = %d, want 3", len(progress))
	}
	if progress[2].Attempt != 3 || progress[2].MaxAttempts != 60 {
		t.Errorf("final progress = %+v", progress[2])
	}
	if f := progress[0].Fraction(); f != 1.0/60 {
		t.Errorf("Fraction() = %v, want %v", f, 1.0/60)
	}
}

func TestWaitTimesOutAfterBudget(t *testing.T) {
	reader := &scriptedReader{script: []scriptStep{statusStep(StatusInProgress)}}
	poller := NewPoller(reader, PollPolicy{MaxAttempts: 5, Interval: time.Millisecond})

	_, err := poller.Wait(context.Background(), "conv-1", "msg-1")
	if !IsTimeout(err) {
		t.Fatalf("Wait() error = %v, want timeout kind", err)
	}
	if reader.calls != 5 {
		t.Errorf("status reads = %d, want exactly 5", reader.calls)
	}
}

func TestWaitAbortsOnAuthError(t *testing.T) {
	reader := &scriptedReader{script: []scriptStep{
		statusStep(StatusPending),
		statusStep(StatusInProgress),
		{err: New(KindAuth, "authentication failed")},
	}}
	poller := NewPoller(reader, PollPolicy{MaxAttempts: 60, Interval: time.Millisecond})

	_, err := poller.Wait(context.Background(), "conv-1", "msg-1")
	if !IsAuth(err) {
		t.Fatalf("Wait() error = %v, want auth kind", err)
	}
	if reader.calls != 3 {
		t.Errorf("status reads = %d, want 3 (no attempts after the 401)", reader.calls)
	}
}

func TestWaitAbortsOnTransportError(t *testing.T) {
	reader := &scriptedReader{script: []scriptStep{
		statusStep(StatusPending),
		{err: New(KindTransport, "connection error")},
	}}
	poller := NewPoller(reader, PollPolicy{MaxAttempts: 60, Interval: time.Millisecond})

	_, err := poller.Wait(context.Background(), "conv-1", "msg-1")
	if !IsTransport(err) {
		t.Fatalf("Wait() error = %v, want transport kind", err)
	}
	if reader.calls != 2 {
		t.Errorf("status reads = %d, want 2", reader.calls)
	}
}

func TestWaitReportsJobFailure(t *testing.T) {
	reader := &scriptedReader{script: []scriptStep{
		statusStep(StatusInProgress),
		{msg: &Message{ID: "msg-1", Status: StatusFailed, Error: "table not found"}},
	}}
	poller := NewPoller(reader, PollPolicy{MaxAttempts: 60, Interval: time.Millisecond})

	_, err := poller.Wait(context.Background(), "conv-1", "msg-1")
	if !IsJobFailed(err) {
		t.Fatalf("Wait() error = %v, want job_failed kind", err)
	}
	var ge *Error
	if !errors.As(err, &ge) || ge.Reason != "table not found" {
		t.Errorf("job failure error = %v, want reason from payload", err)
	}
}

func TestWaitContinuesPastSoftErrors(t *testing.T) {
	reader := &scriptedReader{script: []scriptStep{
		statusStep(StatusPending),
		{err: protocolError("get-message", 503)},
		statusStep(StatusCompleted),
	}}
	poller := NewPoller(reader, PollPolicy{MaxAttempts: 60, Interval: time.Millisecond})

	var warned []error
	poller.OnWarn = func(err error) { warned = append(warned, err) }

	msg, err := poller.Wait(context.Background(), "conv-1", "msg-1")
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if msg.Status != StatusCompleted {
		t.Errorf("Status = %v, want COMPLETED", msg.Status)
	}
	if len(warned) != 1 || !IsProtocol(warned[0]) {
		t.Errorf("warnings = %v, want one protocol warning", warned)
	}
}

func TestWaitTreatsUnknownStatusAsPending(t *testing.T) {
	reader := &scriptedReader{script: []scriptStep{
		{msg: &Message{ID: "msg-1", Status: "EXECUTING_QUERY"}},
		statusStep(StatusCompleted),
	}}
	poller := NewPoller(reader, PollPolicy{MaxAttempts: 60, Interval: time.Millisecond})

	if _, err := poller.Wait(context.Background(), "conv-1", "msg-1"); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if reader.calls != 2 {
		t.Errorf("status reads = %d, want 2", reader.calls)
	}
}

func TestWaitStopsOnCancelledContext(t *testing.T) {
	reader := &scriptedReader{script: []scriptStep{statusStep(StatusInProgress)}}
	poller := NewPoller(reader, PollPolicy{MaxAttempts: 60, Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := poller.Wait(ctx, "conv-1", "msg-1")
		done <- err
	}()
	// Let the first attempt land, then abandon the wait mid-sleep.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Wait() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after cancellation")
	}
}
