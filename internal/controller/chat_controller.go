package controller

import (
	"bizops-assistant-be/internal/dto"
	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/pkg/serverutils"
	"bizops-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
}

type chatController struct {
	sessionService service.SessionService
}

func NewChatController(sessionService service.SessionService) IChatController {
	return &chatController{
		sessionService: sessionService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("sessions", c.ListSessions)
	h.Post("sessions", c.StartOrContinue)
	h.Get("sessions/:id/messages", c.ListMessages)
	h.Post("sessions/:id/messages", c.AppendMessage)
	h.Post("sessions/:id/close", c.CloseSession)
	h.Post("sessions/:id/archive", c.ArchiveSession)
	h.Post("send", c.SendChat)
}

func (c *chatController) identity(ctx *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	tenantId, ok := serverutils.TenantID(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "missing tenant")
	}
	userId, ok := serverutils.UserID(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "missing user")
	}
	return tenantId, userId, nil
}

func (c *chatController) StartOrContinue(ctx *fiber.Ctx) error {
	tenantId, userId, err := c.identity(ctx)
	if err != nil {
		return err
	}

	var req dto.StartSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	res, err := c.sessionService.StartOrContinue(ctx.Context(), tenantId, userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session ready", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	tenantId, userId, err := c.identity(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.ListSessions(ctx.Context(), tenantId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Sessions retrieved", res))
}

func (c *chatController) ListMessages(ctx *fiber.Ctx) error {
	tenantId, _, err := c.identity(ctx)
	if err != nil {
		return err
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	req := dto.ListMessagesRequest{
		ChatSessionId: sessionId,
		AfterSequence: int64(ctx.QueryInt("after", 0)),
		Limit:         ctx.QueryInt("limit", 0),
	}

	res, err := c.sessionService.ListMessages(ctx.Context(), tenantId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Messages retrieved", res))
}

func (c *chatController) AppendMessage(ctx *fiber.Ctx) error {
	tenantId, _, err := c.identity(ctx)
	if err != nil {
		return err
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	var req dto.AppendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	req.ChatSessionId = sessionId
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.AppendMessage(ctx.Context(), tenantId, sessionId,
		entity.MessageType(req.Type), req.Content, req.Metadata)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Message appended", res))
}

func (c *chatController) CloseSession(ctx *fiber.Ctx) error {
	tenantId, _, err := c.identity(ctx)
	if err != nil {
		return err
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	if err := c.sessionService.CloseSession(ctx.Context(), tenantId, sessionId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session closed", nil))
}

func (c *chatController) ArchiveSession(ctx *fiber.Ctx) error {
	tenantId, _, err := c.identity(ctx)
	if err != nil {
		return err
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	if err := c.sessionService.ArchiveSession(ctx.Context(), tenantId, sessionId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session archived", nil))
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	tenantId, userId, err := c.identity(ctx)
	if err != nil {
		return err
	}

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.SendChat(ctx.Context(), tenantId, userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat processed", res))
}
