package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"fidesia-be/internal/pkg/logger"
)

// NewErrorHandler returns the app-wide fiber error handler. Expected
// errors (fiber.Error) pass their message through; everything else is
// logged and answered with a generic 500.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ErrorResponse(ctx, fiberErr.Code, fiberErr.Message)
		}

		log.Error("http", "unhandled error", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		})
		return ErrorResponse(ctx, fiber.StatusInternalServerError, "internal server error")
	}
}
