// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

package genie

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{name: "auth", err: New(KindAuth, "x"), check: IsAuth},
		{name: "permission", err: New(KindPermission, "x"), check: IsPermission},
		{name: "transport", err: Wrap(KindTransport, "x", errors.New("refused")), check: IsTransport},
		{name: "protocol", err: protocolError("op", 502), check: IsProtocol},
		{name: "job failed", err: jobFailedError(StatusFailed, "boom"), check: IsJobFailed},
		{name: "timeout", err: New(KindTimeout, "x"), check: IsTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("predicate rejected %v", tt.err)
			}
			// Predicates survive wrapping.
			if !tt.check(fmt.Errorf("outer: %w", tt.err)) {
				t.Errorf("predicate rejected wrapped %v", tt.err)
			}
		})
	}
	if IsAuth(errors.New("plain")) {
		t.Error("plain error classified as auth")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindTransport, "send request", cause)
	if !errors.Is(err, cause) {
		t.Error("wrapped cause lost")
	}
}

func TestJobFailedErrorDefaultsReason(t *testing.T) {
	err := jobFailedError(StatusCancelled, "")
	if err.Reason != "unknown error" {
		t.Errorf("Reason = %q", err.Reason)
	}
}
