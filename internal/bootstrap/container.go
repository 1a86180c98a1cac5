package bootstrap

import (
	"context"
	"log"

	"ai-shopassist-be/internal/config"
	"ai-shopassist-be/internal/controller"
	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/internal/repository/memory"
	"ai-shopassist-be/internal/repository/unitofwork"
	"ai-shopassist-be/internal/service"
	"ai-shopassist-be/pkg/agent"
	"ai-shopassist-be/pkg/agent/tools"
	"ai-shopassist-be/pkg/llm/factory"
	pktNats "ai-shopassist-be/pkg/nats"
	"ai-shopassist-be/pkg/taobao"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	ChatController    controller.IChatController
	ProductController controller.IProductController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Shared infrastructure
	DB     *gorm.DB
	Redis  *redis.Client
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus (in-process)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Marketplace gateway
	gateway := taobao.NewClient(
		cfg.Keys.TaobaoAppKey,
		cfg.Keys.TaobaoAppSecret,
		cfg.Keys.TaobaoAdzoneID,
		cfg.Keys.TaobaoMaterial,
	)
	if cfg.Keys.TaobaoBaseURL != "" {
		gateway.BaseURL = cfg.Keys.TaobaoBaseURL
	}

	// 4. LLM provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 5. Agent wiring: one tool registry shared by all sessions, one
	// orchestrator per session held in the in-memory binding cache.
	registry := tools.NewRegistry(gateway)
	agentLogger := zap.NewNop()
	if cfg.App.Environment != "production" {
		agentLogger, _ = zap.NewDevelopment()
	}
	newAgent := func() *agent.Orchestrator {
		return agent.NewOrchestrator(llmProvider, registry, agentLogger)
	}
	agentRepo := memory.NewAgentRepository()

	// 6. NATS analytics publisher (best effort)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 7. Redis (rate limiting)
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

	// 8. Services
	publisherService := service.NewPublisherService(cfg.Keys.ProductsTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Keys.ProductsTopic, uowFactory)

	authService := service.NewAuthService(uowFactory, natsPub)
	chatService := service.NewChatService(uowFactory, agentRepo, newAgent, publisherService, natsPub, sysLogger)
	productService := service.NewProductService(gateway, uowFactory, publisherService)

	return &Container{
		AuthController:    controller.NewAuthController(authService),
		ChatController:    controller.NewChatController(chatService),
		ProductController: controller.NewProductController(productService),
		ConsumerService:   consumerService,
		DB:                db,
		Redis:             rdb,
		Logger:            sysLogger,
	}
}
