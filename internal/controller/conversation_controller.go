package controller

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"fidesia-be/internal/dto"
	"fidesia-be/internal/pkg/serverutils"
	"fidesia-be/internal/service"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router, auth *serverutils.JwtMiddleware)
	SaveExchange(ctx *fiber.Ctx) error
	ListConversations(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	DeleteConversation(ctx *fiber.Ctx) error
	DeleteExchange(ctx *fiber.Ctx) error
	RateExchange(ctx *fiber.Ctx) error
}

type conversationController struct {
	service service.IConversationService
}

func NewConversationController(service service.IConversationService) IConversationController {
	return &conversationController{service: service}
}

func (c *conversationController) RegisterRoutes(r fiber.Router, auth *serverutils.JwtMiddleware) {
	h := r.Group("/conversations", auth.Optional)
	h.Post("/exchanges", c.SaveExchange)
	h.Get("/", c.ListConversations)
	h.Get("/:conversation_id/history", c.GetHistory)
	h.Delete("/:conversation_id", c.DeleteConversation)
	h.Delete("/exchanges/:exchange_id", c.DeleteExchange)
	h.Post("/exchanges/:exchange_id/rating", c.RateExchange)
}

func mapConversationError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return serverutils.ErrorResponse(ctx, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrExchangeNotFound):
		return serverutils.ErrorResponse(ctx, fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}

func (c *conversationController) SaveExchange(ctx *fiber.Ctx) error {
	var req dto.SaveExchangeRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.SaveExchange(ctx.Context(), &req, callerFrom(ctx))
	if err != nil {
		return mapConversationError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusCreated, "Échange enregistré", res)
}

func (c *conversationController) ListConversations(ctx *fiber.Ctx) error {
	conversations, err := c.service.ListConversations(ctx.Context(), callerFrom(ctx))
	if err != nil {
		return err
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Conversations", conversations)
}

func (c *conversationController) GetHistory(ctx *fiber.Ctx) error {
	conversationId := ctx.Params("conversation_id")

	history, err := c.service.GetHistory(ctx.Context(), conversationId, callerFrom(ctx))
	if err != nil {
		return mapConversationError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Historique", history)
}

func (c *conversationController) DeleteConversation(ctx *fiber.Ctx) error {
	conversationId := ctx.Params("conversation_id")

	if err := c.service.DeleteConversation(ctx.Context(), conversationId, callerFrom(ctx)); err != nil {
		return mapConversationError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Conversation supprimée", nil)
}

func (c *conversationController) DeleteExchange(ctx *fiber.Ctx) error {
	exchangeId, err := strconv.ParseInt(ctx.Params("exchange_id"), 10, 64)
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "identifiant d'échange invalide")
	}

	if err := c.service.DeleteExchange(ctx.Context(), exchangeId, callerFrom(ctx)); err != nil {
		return mapConversationError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Échange supprimé", nil)
}

func (c *conversationController) RateExchange(ctx *fiber.Ctx) error {
	exchangeId, err := strconv.ParseInt(ctx.Params("exchange_id"), 10, 64)
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "identifiant d'échange invalide")
	}

	var req dto.RateExchangeRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	if err := c.service.RateExchange(ctx.Context(), exchangeId, req.Rating, callerFrom(ctx)); err != nil {
		return mapConversationError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Merci pour votre évaluation", nil)
}
