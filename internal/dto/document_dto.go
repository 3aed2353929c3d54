package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitDocumentRequest struct {
	ChatSessionId *uuid.UUID `json:"chat_session_id"`
	Filename      string     `json:"filename" validate:"required"`
	MimeType      string     `json:"mime_type" validate:"required"`
	SizeBytes     int64      `json:"size_bytes" validate:"required,gt=0"`
	Content       []byte     `json:"content"`
}

type DocumentResponse struct {
	Id              uuid.UUID              `json:"id"`
	ChatSessionId   *uuid.UUID             `json:"chat_session_id,omitempty"`
	Filename        string                 `json:"filename"`
	MimeType        string                 `json:"mime_type"`
	SizeBytes       int64                  `json:"size_bytes"`
	Status          string                 `json:"status"`
	FailureReason   string                 `json:"failure_reason,omitempty"`
	CancelRequested bool                   `json:"cancel_requested,omitempty"`
	ExtractedData   map[string]interface{} `json:"extracted_data,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       *time.Time             `json:"updated_at,omitempty"`
}

// DocumentJobMessage is the watermill payload that hands a pending document
// to the pipeline worker. Tenant id rides along so the worker claims with
// the full key.
type DocumentJobMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	TenantId   uuid.UUID `json:"tenant_id"`
}

// DocumentStatusPush is broadcast to the owning tenant's websocket clients
// on every status transition.
type DocumentStatusPush struct {
	DocumentId    uuid.UUID `json:"document_id"`
	Filename      string    `json:"filename"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	At            time.Time `json:"at"`
}
