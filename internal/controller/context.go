package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"fidesia-be/internal/service"
)

// sessionHeader carries the anonymous session identifier. Clients keep
// it for the lifetime of a browser session.
const sessionHeader = "X-Session-Id"

// currentUserId returns the authenticated user id, nil for anonymous
// requests.
func currentUserId(ctx *fiber.Ctx) *uuid.UUID {
	raw, _ := ctx.Locals("user_id").(string)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

// requireUserId is for routes behind the JWT middleware.
func requireUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	id := currentUserId(ctx)
	if id == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	return *id, nil
}

// sessionId returns the client session identifier, minting one when the
// client sent none.
func sessionId(ctx *fiber.Ctx) string {
	if sid := ctx.Get(sessionHeader); sid != "" {
		return sid
	}
	return uuid.NewString()
}

func callerFrom(ctx *fiber.Ctx) service.Caller {
	return service.Caller{
		UserId:    currentUserId(ctx),
		SessionId: sessionId(ctx),
	}
}
