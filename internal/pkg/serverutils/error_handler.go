package serverutils

import (
	"errors"

	"bizops-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps service errors onto HTTP statuses in one
// place so controllers can just return them.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var quotaErr *service.QuotaExceededError
		if errors.As(err, &quotaErr) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(WebResponse{
				Success: false,
				Code:    fiber.StatusTooManyRequests,
				Message: quotaErr.Error(),
				Data: fiber.Map{
					"metric": quotaErr.Metric,
					"limit":  quotaErr.Limit,
					"used":   quotaErr.Used,
				},
			})
		}

		switch {
		case errors.Is(err, service.ErrNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(404, err.Error()))
		case errors.Is(err, service.ErrSessionArchived),
			errors.Is(err, service.ErrDocumentTerminal),
			errors.Is(err, service.ErrCannotCancel):
			return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(409, err.Error()))
		case errors.Is(err, service.ErrFeatureDisabled),
			errors.Is(err, service.ErrSubscriptionInactive):
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(403, err.Error()))
		case errors.Is(err, service.ErrQuotaExceeded):
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(429, err.Error()))
		case errors.Is(err, service.ErrInvalidDocument):
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse(422, err.Error()))
		case errors.Is(err, service.ErrUpstreamUnavailable):
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse(503, err.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, err.Error()))
	}
}
