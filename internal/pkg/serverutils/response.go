package serverutils

import "github.com/gofiber/fiber/v2"

// SuccessResponse is the single success envelope every handler returns.
func SuccessResponse(ctx *fiber.Ctx, code int, message string, data interface{}) error {
	return ctx.Status(code).JSON(fiber.Map{
		"success": true,
		"code":    code,
		"message": message,
		"data":    data,
	})
}

// ErrorResponse mirrors SuccessResponse for failures. The message is the
// client-facing text, internal detail stays in the logs.
func ErrorResponse(ctx *fiber.Ctx, code int, message string) error {
	return ctx.Status(code).JSON(fiber.Map{
		"success": false,
		"code":    code,
		"message": message,
	})
}
