package handler

import (
	"fmt"
	"os"
	"strings"

	"bizops-assistant-be/internal/pkg/logger"
	internalWS "bizops-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DocumentStreamHandler upgrades clients onto the websocket hub so they
// receive document status pushes for their tenant.
type DocumentStreamHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewDocumentStreamHandler(hub *internalWS.Hub, logger logger.ILogger) *DocumentStreamHandler {
	return &DocumentStreamHandler{
		hub:    hub,
		logger: logger,
	}
}

func (h *DocumentStreamHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/documents", h.HandleConnection)
}

func (h *DocumentStreamHandler) HandleConnection(c *fiber.Ctx) error {
	// Browsers cannot set headers on the WS handshake, so the token comes
	// via query param with the Authorization header as fallback.
	tokenString := c.Query("token")
	if tokenString == "" {
		authHeader := c.Get("Authorization")
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("DocumentStreamHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	tenantIDStr, ok := claims["tenant_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing tenant_id"})
	}
	tenantID, err := uuid.Parse(tenantIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid tenant ID format in token"})
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("DocumentStreamHandler", "Starting WebSocket session", map[string]interface{}{"tenant_id": tenantID, "user_id": userID})
			internalWS.ServeWs(h.hub, conn, tenantID, userID)
			h.logger.Info("DocumentStreamHandler", "WebSocket session ended", map[string]interface{}{"tenant_id": tenantID, "user_id": userID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
