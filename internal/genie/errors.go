// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package genie implements the client-side orchestration for the Databricks
// Genie conversational query API: starting conversations, polling message
// jobs to completion, fetching statement results, and threading follow-up
// questions through the same conversation.
package genie

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// KindTransport indicates a network-level failure (timeout, connection
	// refused, DNS) before any HTTP status was received.
	KindTransport Kind = "transport"
	// KindProtocol indicates an unexpected non-2xx HTTP status.
	KindProtocol Kind = "protocol"
	// KindAuth indicates a 401 response: the API token is missing, invalid
	// or expired. Fatal for the current session.
	KindAuth Kind = "auth"
	// KindPermission indicates a 403 response: the token is valid but lacks
	// access to the space. Not retryable.
	KindPermission Kind = "permission"
	// KindJobFailed indicates the remote message job finished FAILED or
	// CANCELLED. Fatal for this message; the user must resubmit.
	KindJobFailed Kind = "job_failed"
	// KindTimeout indicates the poll budget was exhausted without the job
	// reaching a terminal status.
	KindTimeout Kind = "timeout"
)

// Error wraps a failure with its kind and a human-friendly message.
type Error struct {
	Kind    Kind
	Message string
	// StatusCode carries the HTTP status for protocol errors.
	StatusCode int
	// Reason carries the remote failure reason for job_failed errors.
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given kind and message.
func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

// Wrap creates an Error wrapping an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func protocolError(op string, status int) *Error {
	return &Error{
		Kind:       KindProtocol,
		Message:    fmt.Sprintf("%s returned unexpected status %d", op, status),
		StatusCode: status,
	}
}

func jobFailedError(status ProcessingStatus, reason string) *Error {
	msg := fmt.Sprintf("message processing %s", status)
	if reason == "" {
		reason = "unknown error"
	}
	return &Error{Kind: KindJobFailed, Message: msg, Reason: reason}
}

// ErrKind extracts the Kind from err, or "" when err is not a genie Error.
func ErrKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsAuth reports whether err is a 401 credential failure.
func IsAuth(err error) bool { return ErrKind(err) == KindAuth }

// IsPermission reports whether err is a 403 access failure.
func IsPermission(err error) bool { return ErrKind(err) == KindPermission }

// IsTransport reports whether err is a network-level failure.
func IsTransport(err error) bool { return ErrKind(err) == KindTransport }

// IsProtocol reports whether err is an unexpected HTTP status.
func IsProtocol(err error) bool { return ErrKind(err) == KindProtocol }

// IsJobFailed reports whether err is a remote job failure.
func IsJobFailed(err error) bool { return ErrKind(err) == KindJobFailed }

// IsTimeout reports whether err is an exhausted poll budget.
func IsTimeout(err error) bool { return ErrKind(err) == KindTimeout }
