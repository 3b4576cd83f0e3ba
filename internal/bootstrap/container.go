package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"fidesia-be/internal/config"
	"fidesia-be/internal/controller"
	"fidesia-be/internal/pkg/logger"
	"fidesia-be/internal/pkg/mailer"
	"fidesia-be/internal/pkg/serverutils"
	redisrepo "fidesia-be/internal/repository/redis"
	"fidesia-be/internal/repository/unitofwork"
	"fidesia-be/internal/service"
	"fidesia-be/internal/websocket"
	"fidesia-be/pkg/analytics"
	"fidesia-be/pkg/embedding"
	"fidesia-be/pkg/llm/factory"
	"fidesia-be/pkg/saints"

	pktNats "fidesia-be/pkg/nats"
)

type Container struct {
	// Controllers
	HealthController       controller.IHealthController
	AuthController         controller.IAuthController
	AskController          controller.IAskController
	ConversationController controller.IConversationController
	CorpusController       controller.ICorpusController
	SaintController        controller.ISaintController
	AdminController        controller.IAdminController

	// Shared middleware
	JwtMiddleware *serverutils.JwtMiddleware
	Logger        logger.ILogger

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	}

	llmProvider, err := factory.NewProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub (admin activity feed)
	wsLogger := logger.NewIsolatedLogger("logs/activity.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Saints calendar is static reference data, loaded once.
	calendar, err := saints.Load(cfg.Corpus.SaintsPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load saints calendar (%s): %v", cfg.Corpus.SaintsPath, err)
	}

	// 4. Services
	tokenBlacklist := redisrepo.NewTokenBlacklist(rdb)

	activityPublisher := service.NewActivityPublisher(pubSub, sysLogger)
	consumerService := service.NewConsumerService(
		pubSub,
		uowFactory,
		wsHub,
		natsPub,
		analytics.NewGeoResolver(),
		sysLogger,
	)

	authService := service.NewAuthService(
		uowFactory,
		emailService,
		tokenBlacklist,
		activityPublisher,
		cfg.Auth,
		sysLogger,
	)
	askService := service.NewAskService(
		uowFactory,
		embeddingProvider,
		llmProvider,
		activityPublisher,
		cfg.Ai.LLMModel,
		cfg.Ai.CondenseModel,
		cfg.Ai.ScoreThreshold,
		sysLogger,
	)
	conversationService := service.NewConversationService(uowFactory, activityPublisher, cfg.Ai.LLMModel, sysLogger)
	corpusService := service.NewCorpusService(cfg.Corpus, activityPublisher, sysLogger)
	saintService := service.NewSaintService(calendar)
	adminService := service.NewAdminService(uowFactory, sysLogger)

	jwtMiddleware := serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret, tokenBlacklist)

	// 5. Controllers
	return &Container{
		HealthController:       controller.NewHealthController(db, rdb, uowFactory, cfg.Ai),
		AuthController:         controller.NewAuthController(authService),
		AskController:          controller.NewAskController(askService, sysLogger),
		ConversationController: controller.NewConversationController(conversationService),
		CorpusController:       controller.NewCorpusController(corpusService),
		SaintController:        controller.NewSaintController(saintService),
		AdminController:        controller.NewAdminController(adminService, wsHub),

		JwtMiddleware: jwtMiddleware,
		Logger:        sysLogger,

		ConsumerService: consumerService,
		WebSocketHub:    wsHub,
	}
}
