package implementation

import (
	"context"
	"testing"
	"time"

	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/repository/contract"
	"bizops-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingDocument(t *testing.T, repo contract.DocumentRepository, tenantId uuid.UUID) *entity.Document {
	t.Helper()
	doc := &entity.Document{
		Id:        uuid.New(),
		TenantId:  tenantId,
		Filename:  "orders.csv",
		SizeBytes: 128,
		MimeType:  "text/csv",
		Content:   []byte("sku,qty\nA,1\n"),
		Status:    entity.DocumentStatusPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), doc))
	return doc
}

func TestDocumentClaim(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()
	tenantId := uuid.New()

	doc := newPendingDocument(t, repo, tenantId)

	claimed, err := repo.Claim(ctx, tenantId, doc.Id, time.Now())
	require.NoError(t, err)
	assert.True(t, claimed)

	t.Run("second claim loses", func(t *testing.T) {
		claimed, err := repo.Claim(ctx, tenantId, doc.Id, time.Now())
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("claim stamps status and lease", func(t *testing.T) {
		got, err := repo.FindOne(ctx, tenantId, specification.ByID{ID: doc.Id})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, entity.DocumentStatusProcessing, got.Status)
		assert.NotNil(t, got.ClaimedAt)
	})

	t.Run("wrong tenant cannot claim", func(t *testing.T) {
		other := newPendingDocument(t, repo, tenantId)
		claimed, err := repo.Claim(ctx, uuid.New(), other.Id, time.Now())
		require.NoError(t, err)
		assert.False(t, claimed)
	})
}

func TestDocumentCancelPending(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()
	tenantId := uuid.New()

	t.Run("pending document cancels", func(t *testing.T) {
		doc := newPendingDocument(t, repo, tenantId)

		canceled, err := repo.CancelPending(ctx, tenantId, doc.Id)
		require.NoError(t, err)
		assert.True(t, canceled)

		got, err := repo.FindOne(ctx, tenantId, specification.ByID{ID: doc.Id})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, entity.DocumentStatusFailed, got.Status)
		assert.Equal(t, entity.FailureReasonCanceled, got.FailureReason)
	})

	t.Run("claimed document cannot cancel", func(t *testing.T) {
		doc := newPendingDocument(t, repo, tenantId)

		claimed, err := repo.Claim(ctx, tenantId, doc.Id, time.Now())
		require.NoError(t, err)
		require.True(t, claimed)

		canceled, err := repo.CancelPending(ctx, tenantId, doc.Id)
		require.NoError(t, err)
		assert.False(t, canceled)

		got, err := repo.FindOne(ctx, tenantId, specification.ByID{ID: doc.Id})
		require.NoError(t, err)
		assert.Equal(t, entity.DocumentStatusProcessing, got.Status)
	})
}

func TestDocumentReclaimExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()
	tenantId := uuid.New()

	doc := newPendingDocument(t, repo, tenantId)

	stale := time.Now().Add(-10 * time.Minute)
	claimed, err := repo.Claim(ctx, tenantId, doc.Id, stale)
	require.NoError(t, err)
	require.True(t, claimed)

	cutoff := time.Now().Add(-5 * time.Minute)

	expired, err := repo.FindExpiredClaims(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, doc.Id, expired[0].Id)

	won, err := repo.ReclaimExpired(ctx, doc.Id, cutoff, time.Now())
	require.NoError(t, err)
	assert.True(t, won)

	t.Run("fresh lease is not reclaimable", func(t *testing.T) {
		expired, err := repo.FindExpiredClaims(ctx, cutoff)
		require.NoError(t, err)
		assert.Empty(t, expired)

		won, err := repo.ReclaimExpired(ctx, doc.Id, cutoff, time.Now())
		require.NoError(t, err)
		assert.False(t, won)
	})
}
