package controller

import (
	"errors"

	"bizops-assistant-be/internal/dto"
	"bizops-assistant-be/internal/pkg/serverutils"
	"bizops-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
}

type documentController struct {
	documentService service.DocumentService
}

func NewDocumentController(documentService service.DocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Submit)
	h.Get("", c.List)
	h.Get(":id", c.GetStatus)
	h.Post(":id/cancel", c.Cancel)
}

func (c *documentController) Submit(ctx *fiber.Ctx) error {
	tenantId, ok := serverutils.TenantID(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing tenant")
	}
	userId, _ := serverutils.UserID(ctx)

	var req dto.SubmitDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Submit(ctx.Context(), tenantId, userId, &req)
	if err != nil {
		// A validation failure still produced a (failed) document; return it
		// with the error status so the client sees the reason.
		if errors.Is(err, service.ErrInvalidDocument) && res != nil {
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(serverutils.WebResponse{
				Success: false,
				Code:    fiber.StatusUnprocessableEntity,
				Message: err.Error(),
				Data:    res,
			})
		}
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document submitted", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	tenantId, ok := serverutils.TenantID(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing tenant")
	}

	res, err := c.documentService.ListDocuments(ctx.Context(), tenantId, ctx.Query("status"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Documents retrieved", res))
}

func (c *documentController) GetStatus(ctx *fiber.Ctx) error {
	tenantId, ok := serverutils.TenantID(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing tenant")
	}

	documentId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	res, err := c.documentService.GetStatus(ctx.Context(), tenantId, documentId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document status retrieved", res))
}

func (c *documentController) Cancel(ctx *fiber.Ctx) error {
	tenantId, ok := serverutils.TenantID(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing tenant")
	}

	documentId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	res, err := c.documentService.Cancel(ctx.Context(), tenantId, documentId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document canceled", res))
}
