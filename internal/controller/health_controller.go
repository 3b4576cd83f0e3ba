package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"fidesia-be/internal/config"
	"fidesia-be/internal/pkg/serverutils"
	"fidesia-be/internal/repository/unitofwork"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	db         *gorm.DB
	rdb        *redis.Client
	uowFactory unitofwork.RepositoryFactory
	aiCfg      config.AIConfig
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, uowFactory unitofwork.RepositoryFactory, aiCfg config.AIConfig) IHealthController {
	return &healthController{db: db, rdb: rdb, uowFactory: uowFactory, aiCfg: aiCfg}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	status := fiber.Map{
		"database":        "ok",
		"redis":           "ok",
		"llm_model":       c.aiCfg.LLMModel,
		"embedding_model": c.aiCfg.EmbeddingModel,
	}
	healthy := true

	if sqlDB, err := c.db.DB(); err != nil || sqlDB.PingContext(ctx.Context()) != nil {
		status["database"] = "unreachable"
		healthy = false
	} else {
		uow := c.uowFactory.NewUnitOfWork(ctx.Context())
		if passages, err := uow.PassageRepository().Count(ctx.Context()); err == nil {
			status["corpus_passages"] = passages
		}
	}

	if err := c.rdb.Ping(ctx.Context()).Err(); err != nil {
		status["redis"] = "unreachable"
		healthy = false
	}

	if !healthy {
		return serverutils.ErrorResponse(ctx, fiber.StatusServiceUnavailable, "service dégradé")
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "ok", status)
}
