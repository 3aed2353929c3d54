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
	"gorm.io/gorm/clause"
)

type UsageCounterRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UsageMapper
}

func NewUsageCounterRepository(db *gorm.DB) contract.UsageCounterRepository {
	return &UsageCounterRepositoryImpl{
		db:     db,
		mapper: mapper.NewUsageMapper(),
	}
}

func (r *UsageCounterRepositoryImpl) applySpecifications(db *gorm.DB, tenantId uuid.UUID, specs ...specification.Specification) *gorm.DB {
	db = specification.TenantOwnedBy{TenantID: tenantId}.Apply(db)
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Increment is a single upsert so concurrent callers serialize at the store,
// never in application memory. The conflict target is the (tenant, metric,
// period) unique index.
func (r *UsageCounterRepositoryImpl) Increment(ctx context.Context, tenantId uuid.UUID, metric, periodKey string, by int64) (int64, error) {
	row := &model.UsageCounter{
		Id:        uuid.New(),
		TenantId:  tenantId,
		Metric:    metric,
		PeriodKey: periodKey,
		Count:     by,
		UpdatedAt: time.Now(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "metric"}, {Name: "period_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count":      gorm.Expr("count + ?", by),
				"updated_at": time.Now(),
			}),
		}).
		Create(row).Error
	if err != nil {
		return 0, err
	}
	return r.currentCount(ctx, tenantId, metric, periodKey)
}

// Correct decrements the counter but clamps at zero; a correction can never
// push usage negative.
func (r *UsageCounterRepositoryImpl) Correct(ctx context.Context, tenantId uuid.UUID, metric, periodKey string, by int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.UsageCounter{}).
		Where("tenant_id = ? AND metric = ? AND period_key = ? AND count >= ?", tenantId, metric, periodKey, by).
		Update("count", gorm.Expr("count - ?", by))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		// Either no counter exists or the delta exceeds it; floor to zero.
		res = r.db.WithContext(ctx).
			Model(&model.UsageCounter{}).
			Where("tenant_id = ? AND metric = ? AND period_key = ?", tenantId, metric, periodKey).
			Update("count", 0)
		if res.Error != nil {
			return 0, res.Error
		}
	}
	return r.currentCount(ctx, tenantId, metric, periodKey)
}

func (r *UsageCounterRepositoryImpl) currentCount(ctx context.Context, tenantId uuid.UUID, metric, periodKey string) (int64, error) {
	counter, err := r.Get(ctx, tenantId, metric, periodKey)
	if err != nil {
		return 0, err
	}
	if counter == nil {
		return 0, nil
	}
	return counter.Count, nil
}

func (r *UsageCounterRepositoryImpl) Get(ctx context.Context, tenantId uuid.UUID, metric, periodKey string) (*entity.UsageCounter, error) {
	var m model.UsageCounter
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND metric = ? AND period_key = ?", tenantId, metric, periodKey).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UsageCounterRepositoryImpl) FindAll(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) ([]*entity.UsageCounter, error) {
	var models []*model.UsageCounter
	query := r.applySpecifications(r.db.WithContext(ctx), tenantId, specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.UsageCounter, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
