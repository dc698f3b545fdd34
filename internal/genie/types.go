// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

package genie

// ProcessingStatus is the lifecycle state of a message job on the remote
// service. Statuses other than the four modeled here (the API also reports
// intermediate states like ASKING_AI or EXECUTING_QUERY) are treated as
// still pending by the poller.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "PENDING"
	StatusInProgress ProcessingStatus = "IN_PROGRESS"
	StatusCompleted  ProcessingStatus = "COMPLETED"
	StatusFailed     ProcessingStatus = "FAILED"
	StatusCancelled  ProcessingStatus = "CANCELLED"
)

// Terminal reports whether no further status transition can occur.
func (s ProcessingStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Message is one turn within a conversation: the user's question and the
// processing job that answers it.
type Message struct {
	ID          string           `json:"id"`
	Status      ProcessingStatus `json:"status"`
	Error       string           `json:"error,omitempty"`
	Content     string           `json:"content"`
	Attachments []Attachment     `json:"attachments,omitempty"`
}

// Attachment is a reference attached to a completed message. It may carry
// the generated query text and/or an identifier used to fetch the statement
// result.
type Attachment struct {
	AttachmentID string           `json:"attachment_id,omitempty"`
	Query        *QueryAttachment `json:"query,omitempty"`
}

// QueryAttachment holds the SQL the service generated for the question.
type QueryAttachment struct {
	Query       string `json:"query"`
	Description string `json:"description,omitempty"`
}

// FirstResultAttachment returns the first attachment that exposes an
// attachment identifier. Additional result attachments, if the service ever
// sends any, are ignored.
func (m *Message) FirstResultAttachment() (Attachment, bool) {
	for _, a := range m.Attachments {
		if a.AttachmentID != "" {
			return a, true
		}
	}
	return Attachment{}, false
}

// FirstQueryAttachment returns the first attachment carrying generated SQL.
func (m *Message) FirstQueryAttachment() (*QueryAttachment, bool) {
	for _, a := range m.Attachments {
		if a.Query != nil {
			return a.Query, true
		}
	}
	return nil, false
}

// Column describes one column of a statement result schema.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// StatementResult holds the realized rows and columns of an executed query.
// It is immutable once fetched; every fetch is a fresh read.
type StatementResult struct {
	// State is the execution state reported by the service, e.g. "SUCCEEDED".
	State   string
	Columns []Column
	// Rows is row-major; when Columns is present every row has exactly
	// len(Columns) values.
	Rows [][]string
}

// Succeeded reports whether the statement executed successfully.
func (r *StatementResult) Succeeded() bool { return r.State == "SUCCEEDED" }

// startConversationResponse mirrors the POST /start-conversation body.
type startConversationResponse struct {
	Conversation struct {
		ID string `json:"id"`
	} `json:"conversation"`
	Message struct {
		ID string `json:"id"`
	} `json:"message"`
}

// createMessageResponse mirrors the POST /conversations/{cid}/messages body.
type createMessageResponse struct {
	ID string `json:"id"`
}

// statementResponseEnvelope mirrors the query-result wire format.
type statementResponseEnvelope struct {
	StatementResponse struct {
		Status struct {
			State string `json:"state"`
		} `json:"status"`
		Result struct {
			DataArray [][]string `json:"data_array"`
		} `json:"result"`
		Manifest struct {
			Schema struct {
				Columns []Column `json:"columns"`
			} `json:"schema"`
		} `json:"manifest"`
	} `json:"statement_response"`
}
