package contract

import (
	"context"

	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

// UsageCounterRepository owns the per-tenant quota counters. Increment and
// Correct are single atomic statements at the store, never read-modify-write
// in application code.
type UsageCounterRepository interface {
	// Increment upserts the counter row and adds by to it atomically,
	// returning the new count. A counter for a new period key is created
	// lazily here.
	Increment(ctx context.Context, tenantId uuid.UUID, metric, periodKey string, by int64) (int64, error)

	// Correct subtracts by from the counter without letting it go negative.
	// Returns the resulting count.
	Correct(ctx context.Context, tenantId uuid.UUID, metric, periodKey string, by int64) (int64, error)

	// Get returns nil (not an error) for a period key that has no counter yet.
	Get(ctx context.Context, tenantId uuid.UUID, metric, periodKey string) (*entity.UsageCounter, error)

	FindAll(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) ([]*entity.UsageCounter, error)
}
