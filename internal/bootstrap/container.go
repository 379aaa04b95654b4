package bootstrap

import (
	"context"
	"log"
	"time"

	"documind-be/internal/config"
	"documind-be/internal/controller"
	"documind-be/internal/pkg/logger"
	"documind-be/internal/repository/contract"
	"documind-be/internal/repository/implementation"
	memoryStore "documind-be/internal/repository/memory"
	redisStore "documind-be/internal/repository/redis"
	"documind-be/internal/service"
	"documind-be/pkg/completion"
	"documind-be/pkg/llm/factory"

	pktNats "documind-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SessionController   controller.ISessionController
	ChallengeController controller.IChallengeController

	// Session store (exposed for the health check)
	Store contract.SessionRepository

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 3. Session Store
	store := newSessionStore(db, cfg)

	// 4. LLM Provider + Completion Gateway
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GoogleGeminiKey,
		cfg.Ai.HuggingFaceAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Completions get their own audit log, away from application noise.
	auditLogger := logger.NewIsolatedLogger(cfg.Ai.AuditLogPath)
	gateway := completion.NewGateway(llmProvider, auditLogger)

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.TitleTopicName)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.TitleTopicName,
		store,
	)

	conversationService := service.NewConversationService(
		store,
		gateway,
		publisherService,
		natsPub,
		sysLogger,
	)
	challengeService := service.NewChallengeService(
		store,
		gateway,
		natsPub,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		SessionController:   controller.NewSessionController(conversationService),
		ChallengeController: controller.NewChallengeController(challengeService),
		Store:               store,
		ConsumerService:     consumerService,
	}
}

func newSessionStore(db *gorm.DB, cfg *config.Config) contract.SessionRepository {
	ttl := time.Duration(cfg.Store.SessionTTLHours) * time.Hour

	switch cfg.Store.Driver {
	case "redis":
		opt, err := redis.ParseURL(cfg.Store.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.Store.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		log.Printf("[INFO] Using Session Store: REDIS")
		return redisStore.NewSessionRepository(rdb, ttl)

	case "memory":
		log.Printf("[INFO] Using Session Store: MEMORY (sessions will not survive a restart)")
		return memoryStore.NewSessionRepository(ttl)

	default:
		if db == nil {
			log.Fatalf("[FATAL] SESSION_STORE is postgres but no database connection is configured")
		}
		log.Printf("[INFO] Using Session Store: POSTGRES")
		return implementation.NewSessionRepository(db)
	}
}
