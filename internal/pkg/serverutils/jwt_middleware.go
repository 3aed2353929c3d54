package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JwtMiddleware authenticates the request and stashes the tenant and user
// identity in locals. Tokens are issued by the external identity service;
// this middleware only verifies and extracts.
func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Missing token"))
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid claims"))
	}

	// Both identifiers are mandatory; a token without a tenant cannot touch
	// any tenant-owned resource.
	tenantId, err := parseClaim(claims, "tenant_id")
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid tenant claim"))
	}
	userId, err := parseClaim(claims, "user_id")
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid user claim"))
	}

	ctx.Locals("tenant_id", tenantId)
	ctx.Locals("user_id", userId)
	return ctx.Next()
}

func parseClaim(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, _ := claims[key].(string)
	return uuid.Parse(raw)
}

// TenantID returns the authenticated tenant from locals.
func TenantID(ctx *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := ctx.Locals("tenant_id").(uuid.UUID)
	return id, ok
}

// UserID returns the authenticated user from locals.
func UserID(ctx *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := ctx.Locals("user_id").(uuid.UUID)
	return id, ok
}
