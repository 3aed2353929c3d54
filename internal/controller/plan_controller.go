package controller

import (
	"bizops-assistant-be/internal/dto"
	"bizops-assistant-be/internal/pkg/serverutils"
	"bizops-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPlanController interface {
	RegisterRoutes(r fiber.Router)
}

type planController struct {
	planService   service.PlanService
	usageService  service.UsageService
	accessService service.AccessService
}

func NewPlanController(
	planService service.PlanService,
	usageService service.UsageService,
	accessService service.AccessService,
) IPlanController {
	return &planController{
		planService:   planService,
		usageService:  usageService,
		accessService: accessService,
	}
}

func (c *planController) RegisterRoutes(r fiber.Router) {
	// Public pricing catalog
	r.Get("/plans", c.GetAllPlans)

	tenant := r.Group("/tenant", serverutils.JwtMiddleware)
	tenant.Get("/usage-status", c.GetUsageStatus)
	tenant.Get("/feature-check/:key", c.CheckFeature)
}

func (c *planController) GetAllPlans(ctx *fiber.Ctx) error {
	plans, err := c.planService.GetAllActivePlansWithFeatures(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", plans))
}

func (c *planController) GetUsageStatus(ctx *fiber.Ctx) error {
	tenantId, ok := serverutils.TenantID(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing tenant")
	}

	status, err := c.usageService.Report(ctx.Context(), tenantId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Usage status retrieved", status))
}

// CheckFeature is a side-effect-free capability probe; it never counts
// against any quota.
func (c *planController) CheckFeature(ctx *fiber.Ctx) error {
	tenantId, ok := serverutils.TenantID(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing tenant")
	}

	key := ctx.Params("key")
	decision, err := c.accessService.Authorize(ctx.Context(), tenantId, key, "")
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Feature checked", dto.FeatureCheckResponse{
		FeatureKey: key,
		Allowed:    decision.Allowed,
		Reason:     decision.Reason,
	}))
}
