package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"fidesia-be/internal/pkg/serverutils"
	"fidesia-be/internal/service"
)

type ISaintController interface {
	RegisterRoutes(r fiber.Router)
	Today(ctx *fiber.Ctx) error
	ByDate(ctx *fiber.Ctx) error
	ById(ctx *fiber.Ctx) error
}

type saintController struct {
	service service.ISaintService
}

func NewSaintController(service service.ISaintService) ISaintController {
	return &saintController{service: service}
}

func (c *saintController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/saints")
	h.Get("/today", c.Today)
	h.Get("/date/:month/:day", c.ByDate)
	h.Get("/:saint_id", c.ById)
}

func (c *saintController) Today(ctx *fiber.Ctx) error {
	saints, err := c.service.SaintsOfDay(ctx.Context(), time.Now())
	if err != nil {
		return err
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Saints du jour", saints)
}

func (c *saintController) ByDate(ctx *fiber.Ctx) error {
	month, errMonth := ctx.ParamsInt("month")
	day, errDay := ctx.ParamsInt("day")
	if errMonth != nil || errDay != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "date invalide")
	}

	saints, err := c.service.SaintsOfDate(ctx.Context(), month, day)
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Saints", saints)
}

func (c *saintController) ById(ctx *fiber.Ctx) error {
	saint, err := c.service.SaintById(ctx.Context(), ctx.Params("saint_id"))
	if err != nil {
		if errors.Is(err, service.ErrSaintNotFound) {
			return serverutils.ErrorResponse(ctx, fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Saint", saint)
}
