package unitofwork

import (
	"context"

	"bizops-assistant-be/internal/repository/contract"
)

// UnitOfWork scopes a set of repository operations to one transaction.
// Repositories obtained between Begin and Commit share the transaction;
// outside of one they run against the plain connection.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	TenantRepository() contract.TenantRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	DocumentRepository() contract.DocumentRepository
	SubscriptionRepository() contract.SubscriptionRepository
	FeatureRepository() contract.FeatureRepository
	UsageCounterRepository() contract.UsageCounterRepository
}
