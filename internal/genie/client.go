// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

package genie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// errQuestionEmpty guards against blank questions before any request is made.
var errQuestionEmpty = errors.New("question must not be empty")

const (
	// requestTimeout bounds every normal API call.
	requestTimeout = 30 * time.Second
	// probeTimeout bounds the lightweight connectivity probe.
	probeTimeout = 10 * time.Second
)

// API defines the remote Genie operations the CLI depends on.
// Client implements it against real HTTP endpoints; tests provide fakes.
type API interface {
	// StartConversation creates a new conversation from the initial question
	// and returns the conversation and message identifiers.
	StartConversation(ctx context.Context, question string) (conversationID, messageID string, err error)
	// CreateMessage posts a follow-up question into an existing conversation
	// and returns the new message identifier.
	CreateMessage(ctx context.Context, conversationID, question string) (messageID string, err error)
	// GetMessage reads the current state of a message job.
	GetMessage(ctx context.Context, conversationID, messageID string) (*Message, error)
	// GetQueryResult fetches the statement result behind an attachment.
	GetQueryResult(ctx context.Context, conversationID, messageID, attachmentID string) (*StatementResult, error)
}

// Client talks to the Genie API of one space over authenticated HTTP+JSON.
type Client struct {
	// baseURL is https://{host}/api/2.0/genie/spaces/{space}
	baseURL string
	token   string
	client  *http.Client
	probe   *http.Client
}

// NewClient creates a Client for the given workspace host and space.
// The token may be given with or without the "Bearer " prefix.
func NewClient(host, spaceID, token string) *Client {
	host = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(
		strings.TrimSpace(host), "https://"), "http://"), "/")
	token = strings.TrimSpace(token)
	if token != "" && !strings.HasPrefix(token, "Bearer ") {
		token = "Bearer " + token
	}
	return &Client{
		baseURL: fmt.Sprintf("https://%s/api/2.0/genie/spaces/%s", host, spaceID),
		token:   token,
		client:  &http.Client{Timeout: requestTimeout},
		probe:   &http.Client{Timeout: probeTimeout},
	}
}

// StartConversation implements API. The question must be non-empty; the
// caller is responsible for trimming user input first.
func (c *Client) StartConversation(ctx context.Context, question string) (string, string, error) {
	if question == "" {
		return "", "", errQuestionEmpty
	}
	resp, err := c.postJSON(ctx, c.baseURL+"/start-conversation", map[string]string{"content": question})
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if err := c.checkStatus("start-conversation", resp); err != nil {
		return "", "", err
	}
	var out startConversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", Wrap(KindProtocol, "decode start-conversation response", err)
	}
	if out.Conversation.ID == "" || out.Message.ID == "" {
		return "", "", New(KindProtocol, "start-conversation response missing identifiers")
	}
	return out.Conversation.ID, out.Message.ID, nil
}

// CreateMessage implements API.
func (c *Client) CreateMessage(ctx context.Context, conversationID, question string) (string, error) {
	if question == "" {
		return "", errQuestionEmpty
	}
	url := fmt.Sprintf("%s/conversations/%s/messages", c.baseURL, conversationID)
	resp, err := c.postJSON(ctx, url, map[string]string{"content": question})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := c.checkStatus("create-message", resp); err != nil {
		return "", err
	}
	var out createMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", Wrap(KindProtocol, "decode create-message response", err)
	}
	if out.ID == "" {
		return "", New(KindProtocol, "create-message response missing message id")
	}
	return out.ID, nil
}

// GetMessage implements API.
func (c *Client) GetMessage(ctx context.Context, conversationID, messageID string) (*Message, error) {
	url := fmt.Sprintf("%s/conversations/%s/messages/%s", c.baseURL, conversationID, messageID)
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus("get-message", resp); err != nil {
		return nil, err
	}
	var msg Message
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return nil, Wrap(KindProtocol, "decode message response", err)
	}
	if msg.ID == "" {
		msg.ID = messageID
	}
	return &msg, nil
}

// GetQueryResult implements API. A failed fetch is surfaced directly; there
// are no retries since a result fetch may be large.
func (c *Client) GetQueryResult(ctx context.Context, conversationID, messageID, attachmentID string) (*StatementResult, error) {
	url := fmt.Sprintf("%s/conversations/%s/messages/%s/query-result/%s",
		c.baseURL, conversationID, messageID, attachmentID)
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus("query-result", resp); err != nil {
		return nil, err
	}
	var env statementResponseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, Wrap(KindProtocol, "decode query-result response", err)
	}
	sr := env.StatementResponse
	result := &StatementResult{
		State:   sr.Status.State,
		Columns: sr.Manifest.Schema.Columns,
		Rows:    sr.Result.DataArray,
	}
	if len(result.Columns) > 0 {
		for i, row := range result.Rows {
			if len(row) != len(result.Columns) {
				return nil, New(KindProtocol, fmt.Sprintf(
					"query-result row %d has %d values for %d columns",
					i, len(row), len(result.Columns)))
			}
		}
	}
	return result, nil
}

// Probe performs a lightweight authenticated read against the space
// endpoint. A 404 still proves the token and host are good (the space list
// endpoint shape varies across API versions), so only auth, permission and
// transport failures are reported.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return Wrap(KindTransport, "create probe request", err)
	}
	c.setHeaders(req)
	resp, err := c.probe.Do(req)
	if err != nil {
		return classifyTransport("probe workspace", err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return New(KindAuth, "authentication failed, check your API token")
	case resp.StatusCode == http.StatusForbidden:
		return New(KindPermission, "access denied to this Genie space")
	case resp.StatusCode >= 200 && resp.StatusCode < 300, resp.StatusCode == http.StatusNotFound:
		return nil
	}
	return protocolError("probe", resp.StatusCode)
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *Client) postJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, Wrap(KindTransport, "encode request body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, Wrap(KindTransport, "create request", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransport("send request", err)
	}
	return resp, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, Wrap(KindTransport, "create request", err)
	}
	c.setHeaders(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransport("send request", err)
	}
	return resp, nil
}

// checkStatus maps a non-2xx response to the error taxonomy. The caller
// still owns the body.
func (c *Client) checkStatus(op string, resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return New(KindAuth, "authentication failed, check your API token")
	case resp.StatusCode == http.StatusForbidden:
		return New(KindPermission, "access denied to this Genie space")
	}
	return protocolError(op, resp.StatusCode)
}

// classifyTransport distinguishes timeouts from connection failures in the
// wrapped message; the kind is transport either way.
func classifyTransport(op string, err error) *Error {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		return Wrap(KindTransport, op+": request timed out", err)
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(KindTransport, op+": request timed out", err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Wrap(KindTransport, op+": connection error", err)
	}
	return Wrap(KindTransport, op+": network error", err)
}
