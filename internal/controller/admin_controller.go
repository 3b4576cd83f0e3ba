package controller

import (
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"

	"fidesia-be/internal/dto"
	"fidesia-be/internal/pkg/serverutils"
	"fidesia-be/internal/service"
	"fidesia-be/internal/websocket"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router, auth *serverutils.JwtMiddleware)
	Dashboard(ctx *fiber.Ctx) error
	RecentQuestions(ctx *fiber.Ctx) error
	Logs(ctx *fiber.Ctx) error
	LogById(ctx *fiber.Ctx) error
}

type adminController struct {
	service service.IAdminService
	hub     *websocket.Hub
}

func NewAdminController(service service.IAdminService, hub *websocket.Hub) IAdminController {
	return &adminController{service: service, hub: hub}
}

func (c *adminController) RegisterRoutes(r fiber.Router, auth *serverutils.JwtMiddleware) {
	h := r.Group("/admin", auth.Require, auth.AdminOnly)
	h.Get("/dashboard", c.Dashboard)
	h.Get("/questions", c.RecentQuestions)
	h.Get("/logs", c.Logs)
	h.Get("/logs/:log_id", c.LogById)

	// live activity feed for the dashboard
	h.Use("/feed", func(ctx *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/feed", fiberws.New(func(conn *fiberws.Conn) {
		websocket.ServeWs(c.hub, conn)
	}))
}

func (c *adminController) Dashboard(ctx *fiber.Ctx) error {
	dashboard, err := c.service.Dashboard(ctx.Context())
	if err != nil {
		return err
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Tableau de bord", dashboard)
}

func (c *adminController) RecentQuestions(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 50)
	questions, err := c.service.RecentQuestions(ctx.Context(), limit)
	if err != nil {
		return err
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Questions récentes", questions)
}

func (c *adminController) Logs(ctx *fiber.Ctx) error {
	var query dto.LogQuery
	if err := ctx.QueryParser(&query); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "invalid query")
	}

	logs, err := c.service.Logs(ctx.Context(), query)
	if err != nil {
		return err
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Logs", logs)
}

func (c *adminController) LogById(ctx *fiber.Ctx) error {
	entry, err := c.service.LogById(ctx.Context(), ctx.Params("log_id"))
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusNotFound, "log introuvable")
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Log", entry)
}
