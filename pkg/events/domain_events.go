package events

import (
	"time"

	"github.com/google/uuid"
)

// Event type codes published on the bus. Billing events arrive from the
// outside under billing.*; the rest originate here.
const (
	TypeDocumentCompleted = "document.completed"
	TypeDocumentFailed    = "document.failed"

	// Subject filter for inbound billing state changes.
	BillingSubjectFilter = "events.billing.>"
)

func NewDocumentCompleted(tenantId, documentId uuid.UUID, filename string) Event {
	return BaseEvent{
		Type: TypeDocumentCompleted,
		Data: map[string]interface{}{
			"tenant_id":   tenantId.String(),
			"document_id": documentId.String(),
			"filename":    filename,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentFailed(tenantId, documentId uuid.UUID, filename, reason string) Event {
	return BaseEvent{
		Type: TypeDocumentFailed,
		Data: map[string]interface{}{
			"tenant_id":   tenantId.String(),
			"document_id": documentId.String(),
			"filename":    filename,
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
}
