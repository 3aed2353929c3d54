package service

import (
	"context"
	"time"

	"bizops-assistant-be/internal/dto"
	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/repository/specification"
	"bizops-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// UsageService is the usage ledger: per-tenant counters keyed by metric and
// billing period. Counting is separate from authorization; callers first ask
// the access guard, then record usage after the underlying action succeeds.
type UsageService interface {
	Increment(ctx context.Context, tenantId uuid.UUID, metric string, by int64) (int64, error)
	CurrentUsage(ctx context.Context, tenantId uuid.UUID, metric string) (int64, error)
	Correct(ctx context.Context, tenantId uuid.UUID, metric string, by int64) (int64, error)
	Report(ctx context.Context, tenantId uuid.UUID) (*dto.UsageStatusResponse, error)
}

type usageService struct {
	uowFactory  unitofwork.RepositoryFactory
	planService PlanService
}

func NewUsageService(uowFactory unitofwork.RepositoryFactory, planService PlanService) UsageService {
	return &usageService{
		uowFactory:  uowFactory,
		planService: planService,
	}
}

// periodKey derives the counter bucket from the tenant's subscription
// period. Tenants without a dated subscription fall back to the calendar
// month, so counting keeps working while billing state is in flux.
func (s *usageService) periodKey(ctx context.Context, tenantId uuid.UUID) (string, *time.Time) {
	sub, _, err := s.planService.GetTenantSubscription(ctx, tenantId)
	if err != nil || sub == nil || sub.CurrentPeriodStart.IsZero() {
		return time.Now().UTC().Format("2006-01"), nil
	}
	end := sub.CurrentPeriodEnd
	return sub.CurrentPeriodStart.UTC().Format("2006-01-02"), &end
}

func (s *usageService) Increment(ctx context.Context, tenantId uuid.UUID, metric string, by int64) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	key, _ := s.periodKey(ctx, tenantId)
	return uow.UsageCounterRepository().Increment(ctx, tenantId, metric, key, by)
}

func (s *usageService) CurrentUsage(ctx context.Context, tenantId uuid.UUID, metric string) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	key, _ := s.periodKey(ctx, tenantId)

	counter, err := uow.UsageCounterRepository().Get(ctx, tenantId, metric, key)
	if err != nil {
		return 0, err
	}
	if counter == nil {
		// No counter for this period yet; usage is zero, not an error.
		return 0, nil
	}
	return counter.Count, nil
}

func (s *usageService) Correct(ctx context.Context, tenantId uuid.UUID, metric string, by int64) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	key, _ := s.periodKey(ctx, tenantId)
	return uow.UsageCounterRepository().Correct(ctx, tenantId, metric, key, by)
}

// Report renders current usage against effective limits for every known
// metric, flagging the ones at or over their cap.
func (s *usageService) Report(ctx context.Context, tenantId uuid.UUID) (*dto.UsageStatusResponse, error) {
	sub, plan, err := s.planService.GetTenantSubscription(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	limits := s.planService.EffectiveLimits(sub, plan)
	key, periodEnd := s.periodKey(ctx, tenantId)

	metrics := []string{
		entity.MetricUsers,
		entity.MetricSuppliers,
		entity.MetricCustomers,
		entity.MetricOrdersPerPeriod,
		entity.MetricDocsPerPeriod,
		entity.MetricMessagesPerPeriod,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	counters, err := uow.UsageCounterRepository().FindAll(ctx, tenantId,
		specification.ByPeriodKey{PeriodKey: key},
	)
	if err != nil {
		return nil, err
	}
	usedByMetric := make(map[string]int64, len(counters))
	for _, counter := range counters {
		usedByMetric[counter.Metric] = counter.Count
	}

	rows := make([]dto.UsageMetricStatus, 0, len(metrics))
	for _, metric := range metrics {
		limit, _ := limits.ForMetric(metric)
		used := usedByMetric[metric]
		unlimited := limit == entity.LimitUnlimited
		rows = append(rows, dto.UsageMetricStatus{
			Metric:    metric,
			Used:      used,
			Limit:     limit,
			Unlimited: unlimited,
			Exceeded:  !unlimited && used >= int64(limit),
		})
	}

	return &dto.UsageStatusResponse{
		Plan: dto.PlanInfo{
			Id:   plan.Id,
			Name: plan.Name,
			Tier: string(plan.Tier),
		},
		Status:    string(sub.Status),
		PeriodKey: key,
		PeriodEnd: periodEnd,
		Metrics:   rows,
	}, nil
}
