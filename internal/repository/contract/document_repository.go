package contract

import (
	"context"
	"time"

	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

// DocumentRepository persists uploaded documents. Claim and ReclaimExpired
// are the only paths into the processing state; both are single conditional
// updates so that no two workers can ever hold the same document.
type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	Update(ctx context.Context, document *entity.Document) error
	FindOne(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) (int64, error)

	// Claim atomically moves a pending document to processing and stamps the
	// claim lease. Returns false when another worker won the race or the
	// document is no longer pending.
	Claim(ctx context.Context, tenantId uuid.UUID, documentId uuid.UUID, claimedAt time.Time) (bool, error)

	// CancelPending atomically fails a document that is still pending.
	// Returns false once a worker has claimed it.
	CancelPending(ctx context.Context, tenantId uuid.UUID, documentId uuid.UUID) (bool, error)

	// RequestCancel flags a processing document for cooperative cancellation;
	// the claim holder finalizes it at the next retry boundary. Returns false
	// when the document is not in processing.
	RequestCancel(ctx context.Context, tenantId uuid.UUID, documentId uuid.UUID) (bool, error)

	// ReclaimExpired atomically re-stamps the lease on a processing document
	// whose previous claim is older than cutoff. Returns false when the lease
	// is still live or the document left processing.
	ReclaimExpired(ctx context.Context, documentId uuid.UUID, cutoff, claimedAt time.Time) (bool, error)

	// FindExpiredClaims lists processing documents with an expired lease
	// across all tenants; used only by worker crash recovery.
	FindExpiredClaims(ctx context.Context, cutoff time.Time) ([]*entity.Document, error)
}
