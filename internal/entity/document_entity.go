package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Failure reason codes stored on documents that reach the failed state.
const (
	FailureReasonUnsupportedType = "unsupported_mime_type"
	FailureReasonTooLarge        = "size_over_limit"
	FailureReasonExtraction      = "extraction_failed"
	FailureReasonCanceled        = "canceled"
)

// Document is an uploaded artifact driven through the processing pipeline.
// Status is mutated only by the worker holding the claim; completed and
// failed are terminal. A failed document is never reset, resubmission
// creates a new record.
type Document struct {
	Id            uuid.UUID
	TenantId      uuid.UUID
	ChatSessionId *uuid.UUID
	Filename      string
	SizeBytes     int64
	MimeType      string
	Content       []byte
	Status        DocumentStatus
	ExtractedText string
	ExtractedData map[string]interface{}
	FailureReason string
	ClaimedAt     *time.Time
	// Set when a cancel arrives after a worker claimed the document. The
	// worker honors it at the next retry boundary.
	CancelRequested bool
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

func (d *Document) IsTerminal() bool {
	return d.Status == DocumentStatusCompleted || d.Status == DocumentStatusFailed
}
