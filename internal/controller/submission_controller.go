package controller

import (
	"errors"

	"interview-practice-be/internal/dto"
	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/internal/pkg/serverutils"
	"interview-practice-be/internal/service"
	internalWS "interview-practice-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	msgNoSessionID      = "No session ID provided"
	msgInvalidSessionID = "Invalid session ID"
	msgNoQuestionID     = "No question ID provided"
	msgSaveFailed       = "Failed to save submission"
	msgSessionNotFound  = "Session not found"
)

type ISubmissionController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Watch(ctx *fiber.Ctx) error
}

type submissionController struct {
	service service.ISubmissionService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

// NewSubmissionController wires the ledger endpoints. hub may be nil, in which
// case the websocket feed is not mounted.
func NewSubmissionController(service service.ISubmissionService, hub *internalWS.Hub, log logger.ILogger) ISubmissionController {
	return &submissionController{service: service, hub: hub, logger: log}
}

func (c *submissionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/submissions")
	h.Post("", c.Submit)
	h.Get(":sessionId", c.Show)
	if c.hub != nil {
		h.Get(":sessionId/ws", c.Watch)
	}
}

func (c *submissionController) Submit(ctx *fiber.Ctx) error {
	var req dto.SubmitQuestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		c.logger.Warn("Submission", "Unparseable submission body", map[string]interface{}{"error": err.Error()})
		return serverutils.Fail(ctx, fiber.StatusBadRequest, "Invalid request body")
	}

	// Session id first so a missing id yields the documented message.
	if req.SessionId == "" {
		return serverutils.Fail(ctx, fiber.StatusBadRequest, msgNoSessionID)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		var verr *serverutils.ValidationError
		if errors.As(err, &verr) {
			switch {
			case verr.Has("SessionId"):
				return serverutils.Fail(ctx, fiber.StatusBadRequest, msgInvalidSessionID)
			case verr.Has("QuestionId"):
				return serverutils.Fail(ctx, fiber.StatusBadRequest, msgNoQuestionID)
			}
		}
		return err
	}

	res, err := c.service.Record(ctx.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingSessionID):
			return serverutils.Fail(ctx, fiber.StatusBadRequest, msgNoSessionID)
		case errors.Is(err, service.ErrInvalidSessionID):
			return serverutils.Fail(ctx, fiber.StatusBadRequest, msgInvalidSessionID)
		case errors.Is(err, service.ErrMissingQuestionID):
			return serverutils.Fail(ctx, fiber.StatusBadRequest, msgNoQuestionID)
		default:
			return serverutils.Fail(ctx, fiber.StatusInternalServerError, msgSaveFailed)
		}
	}

	return ctx.JSON(res)
}

func (c *submissionController) Show(ctx *fiber.Ctx) error {
	doc, err := c.service.GetSession(ctx.UserContext(), ctx.Params("sessionId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return serverutils.Fail(ctx, fiber.StatusNotFound, msgSessionNotFound)
		case errors.Is(err, service.ErrInvalidSessionID), errors.Is(err, service.ErrMissingSessionID):
			return serverutils.Fail(ctx, fiber.StatusBadRequest, msgInvalidSessionID)
		default:
			return err
		}
	}

	return ctx.JSON(dto.SessionDocumentResponse{
		Success: true,
		Message: "Success get session",
		Data:    doc,
	})
}

func (c *submissionController) Watch(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("sessionId")
	if !serverutils.IsValidSessionID(sessionId) {
		return serverutils.Fail(ctx, fiber.StatusBadRequest, msgInvalidSessionID)
	}
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		c.logger.Info("Submission", "Session viewer connected", map[string]interface{}{"session_id": sessionId})
		internalWS.ServeWs(c.hub, conn, sessionId)
		c.logger.Info("Submission", "Session viewer disconnected", map[string]interface{}{"session_id": sessionId})
	})(ctx)
}
