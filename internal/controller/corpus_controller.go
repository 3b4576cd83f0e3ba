package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"fidesia-be/internal/pkg/serverutils"
	"fidesia-be/internal/service"
)

type ICorpusController interface {
	RegisterRoutes(r fiber.Router, auth *serverutils.JwtMiddleware)
	Inventory(ctx *fiber.Ctx) error
	Document(ctx *fiber.Ctx) error
}

type corpusController struct {
	service service.ICorpusService
}

func NewCorpusController(service service.ICorpusService) ICorpusController {
	return &corpusController{service: service}
}

func (c *corpusController) RegisterRoutes(r fiber.Router, auth *serverutils.JwtMiddleware) {
	h := r.Group("/corpus", auth.Optional)
	h.Get("/inventory", c.Inventory)
	h.Get("/documents/:document_id", c.Document)
}

func (c *corpusController) Inventory(ctx *fiber.Ctx) error {
	inventory, err := c.service.GetInventory(ctx.Context())
	if err != nil {
		return err
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Inventaire du corpus", inventory)
}

// Document streams the source PDF of one corpus entry.
func (c *corpusController) Document(ctx *fiber.Ctx) error {
	path, err := c.service.ResolveDocument(ctx.Context(),
		ctx.Params("document_id"), sessionId(ctx), currentUserId(ctx))
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			return serverutils.ErrorResponse(ctx, fiber.StatusNotFound, err.Error())
		}
		return err
	}

	ctx.Set(fiber.HeaderContentType, "application/pdf")
	return ctx.SendFile(path)
}
