package bootstrap

import (
	"context"
	"log"

	"bizops-assistant-be/internal/config"
	"bizops-assistant-be/internal/controller"
	"bizops-assistant-be/internal/handler"
	"bizops-assistant-be/internal/pipeline"
	"bizops-assistant-be/internal/pkg/logger"
	"bizops-assistant-be/internal/repository/unitofwork"
	"bizops-assistant-be/internal/service"
	"bizops-assistant-be/internal/websocket"
	"bizops-assistant-be/pkg/extract"
	"bizops-assistant-be/pkg/llm/factory"

	pktNats "bizops-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	PlanController     controller.IPlanController

	// Background services (exposed for main.go to run)
	BillingConsumerService service.IBillingConsumerService
	DocumentWorker         *pipeline.Worker

	// WebSockets
	DocumentStreamHandler *handler.DocumentStreamHandler
	WebSocketHub          *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize reply provider based on config
	replyProvider, err := factory.NewReplyProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 2.5 Infrastructure
	// NATS is best-effort: the engine stays up without the billing feed,
	// subscriptions just stop moving until it reconnects.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
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

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/document_stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	planService := service.NewPlanService(uowFactory)
	usageService := service.NewUsageService(uowFactory, planService)
	accessService := service.NewAccessService(planService, usageService)
	subscriptionService := service.NewSubscriptionService(uowFactory, planService)

	publisherService := service.NewPublisherService(cfg.Keys.DocumentJobsTopic, pubSub)

	// One registry for both ends of the pipeline: what submission accepts is
	// exactly what the worker can extract.
	extractRegistry := extract.NewRegistry(extract.NewTextExtractor())

	sessionService := service.NewSessionService(
		uowFactory,
		accessService,
		usageService,
		replyProvider,
	)
	documentService := service.NewDocumentService(
		uowFactory,
		accessService,
		usageService,
		publisherService,
		extractRegistry,
	)

	var billingConsumer service.IBillingConsumerService
	if natsSub != nil {
		billingConsumer = service.NewBillingConsumerService(
			natsSub,
			subscriptionService,
			planService,
			sysLogger,
		)
	}

	// 3.5 Document pipeline worker
	documentWorker := pipeline.NewWorker(
		pubSub,
		cfg.Keys.DocumentJobsTopic,
		uowFactory,
		sessionService,
		extractRegistry,
		wsHub,
		natsPub,
		sysLogger,
	)

	// WebSocket handler
	docStreamHandler := handler.NewDocumentStreamHandler(wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		ChatController:     controller.NewChatController(sessionService),
		DocumentController: controller.NewDocumentController(documentService),
		PlanController:     controller.NewPlanController(planService, usageService, accessService),

		BillingConsumerService: billingConsumer,
		DocumentWorker:         documentWorker,

		DocumentStreamHandler: docStreamHandler,
		WebSocketHub:          wsHub,
	}
}
