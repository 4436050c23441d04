package controller

import (
	"errors"

	"interview-practice-be/internal/pkg/serverutils"
	"interview-practice-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IQuestionController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Templates(ctx *fiber.Ctx) error
}

type questionController struct {
	service service.IQuestionService
}

func NewQuestionController(service service.IQuestionService) IQuestionController {
	return &questionController{service: service}
}

func (c *questionController) RegisterRoutes(r fiber.Router) {
	r.Get("/questions", c.GetAll)
	r.Get("/questions/:id", c.Show)
	r.Get("/templates", c.Templates)
}

func (c *questionController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.GetAll(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all questions", res))
}

func (c *questionController) Show(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid question id")
	}

	res, err := c.service.Show(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Question not found")
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show question", res))
}

func (c *questionController) Templates(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get templates", c.service.Templates(ctx.UserContext())))
}
