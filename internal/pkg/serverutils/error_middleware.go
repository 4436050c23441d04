package serverutils

import (
	"errors"

	"interview-practice-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the
// {success:false,message} envelope. Unknown errors become a bare 500.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return Fail(ctx, fiber.StatusBadRequest, validationErr.Error())
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return Fail(ctx, fiberErr.Code, fiberErr.Message)
		}

		log.Error("HTTP", "Unhandled request error", map[string]interface{}{
			"error":  err.Error(),
			"method": ctx.Method(),
			"path":   ctx.Path(),
		})
		return Fail(ctx, fiber.StatusInternalServerError, "Internal server error")
	}
}
