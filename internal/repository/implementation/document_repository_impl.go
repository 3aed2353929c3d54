package implementation

import (
	"context"
	"errors"
	"time"

	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/mapper"
	"bizops-assistant-be/internal/model"
	"bizops-assistant-be/internal/repository/contract"
	"bizops-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) applySpecifications(db *gorm.DB, tenantId uuid.UUID, specs ...specification.Specification) *gorm.DB {
	db = specification.TenantOwnedBy{TenantID: tenantId}.Apply(db)
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, document *entity.Document) error {
	m := r.mapper.ToModel(document)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*document = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) Update(ctx context.Context, document *entity.Document) error {
	m := r.mapper.ToModel(document)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*document = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) FindOne(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) (*entity.Document, error) {
	var m model.Document
	query := r.applySpecifications(r.db.WithContext(ctx), tenantId, specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentRepositoryImpl) FindAll(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) ([]*entity.Document, error) {
	var models []*model.Document
	query := r.applySpecifications(r.db.WithContext(ctx), tenantId, specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentRepositoryImpl) Count(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Document{}), tenantId, specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DocumentRepositoryImpl) Claim(ctx context.Context, tenantId uuid.UUID, documentId uuid.UUID, claimedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ? AND tenant_id = ? AND status = ?", documentId, tenantId, string(entity.DocumentStatusPending)).
		Updates(map[string]interface{}{
			"status":     string(entity.DocumentStatusProcessing),
			"claimed_at": claimedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DocumentRepositoryImpl) CancelPending(ctx context.Context, tenantId uuid.UUID, documentId uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ? AND tenant_id = ? AND status = ?", documentId, tenantId, string(entity.DocumentStatusPending)).
		Updates(map[string]interface{}{
			"status":         string(entity.DocumentStatusFailed),
			"failure_reason": entity.FailureReasonCanceled,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DocumentRepositoryImpl) RequestCancel(ctx context.Context, tenantId uuid.UUID, documentId uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ? AND tenant_id = ? AND status = ?", documentId, tenantId, string(entity.DocumentStatusProcessing)).
		Update("cancel_requested", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DocumentRepositoryImpl) ReclaimExpired(ctx context.Context, documentId uuid.UUID, cutoff, claimedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ? AND status = ? AND claimed_at < ?", documentId, string(entity.DocumentStatusProcessing), cutoff).
		Update("claimed_at", claimedAt)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DocumentRepositoryImpl) FindExpiredClaims(ctx context.Context, cutoff time.Time) ([]*entity.Document, error) {
	var models []*model.Document
	err := r.db.WithContext(ctx).
		Where("status = ? AND claimed_at < ?", string(entity.DocumentStatusProcessing), cutoff).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
