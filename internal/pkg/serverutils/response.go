package serverutils

import "github.com/gofiber/fiber/v2"

type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) *BaseResponse[T] {
	return &BaseResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(message string) *BaseResponse[any] {
	return &BaseResponse[any]{
		Success: false,
		Message: message,
	}
}

// Fail writes {success:false,message} with the given status.
func Fail(ctx *fiber.Ctx, status int, message string) error {
	return ctx.Status(status).JSON(ErrorResponse(message))
}
