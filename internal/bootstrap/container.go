package bootstrap

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"jyotchat-be/internal/config"
	"jyotchat-be/internal/controller"
	"jyotchat-be/internal/pkg/logger"
	"jyotchat-be/internal/repository/contract"
	"jyotchat-be/internal/repository/memory"
	redisRepo "jyotchat-be/internal/repository/redis"
	"jyotchat-be/internal/repository/unitofwork"
	"jyotchat-be/internal/service"
	"jyotchat-be/pkg/chatengine"
	"jyotchat-be/pkg/llm/factory"
	"jyotchat-be/pkg/session"
	"jyotchat-be/pkg/transcript"

	pktNats "jyotchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// turnLeaseTTL bounds how long a crashed request can keep a session busy.
const turnLeaseTTL = 5 * time.Minute

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	SettingsController controller.ISettingsController
	ChatLogController  controller.IChatLogController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	EtlSweeper      service.IEtlSweeper
	EtlService      service.ITranscriptEtlService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { sysLogger.Sync() })

	transcripts, err := transcript.NewLogger(cfg.Transcript.Dir, sysLogger)
	if err != nil {
		return nil, err
	}

	resolver, err := newResolver(cfg, sysLogger)
	if err != nil {
		return nil, err
	}

	// 2. Turn guard
	var guard contract.TurnGuard
	switch cfg.App.TurnGuard {
	case "redis":
		rdb, err := newRedisClient(cfg.App.RedisURL, sysLogger)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() { rdb.Close() })
		guard = redisRepo.NewTurnGuard(rdb, turnLeaseTTL)
	default:
		guard = memory.NewTurnGuard(turnLeaseTTL)
	}

	// 3. Event Bus (ETL trigger)
	etlService := service.NewTranscriptEtlService(uowFactory, transcripts, sysLogger)
	c.EtlService = etlService

	var publisher service.ITranscriptPublisher
	switch cfg.Transcript.EtlTrigger {
	case "nats":
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			return nil, err
		}
		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			natsPub.Close()
			return nil, err
		}
		c.closers = append(c.closers, natsSub.Close, natsPub.Close)
		publisher = service.NewNatsTranscriptPublisher(natsPub)
		c.ConsumerService = service.NewNatsConsumerService(natsSub, etlService, sysLogger)
	default:
		pubSub := gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			watermill.NewStdLogger(false, false),
		)
		c.closers = append(c.closers, func() { pubSub.Close() })
		publisher = service.NewTranscriptPublisher(service.NewPublisherService(pubSub, cfg.Transcript.EtlTopic))
		c.ConsumerService = service.NewConsumerService(pubSub, cfg.Transcript.EtlTopic, etlService, sysLogger)
	}
	c.EtlSweeper = service.NewEtlSweeper(cfg.Transcript.SweepSchedule, etlService, sysLogger)

	// 4. Engine
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.LLMURL(), cfg.Keys.HuggingFace)
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	settings := chatengine.NewSettings(cfg.Ai.Temperature, cfg.Ai.TopK, cfg.Ai.LLMModel)
	engine := chatengine.NewRagEngine(llmProvider, chatengine.NopRetriever{}, settings, cfg.Ai.SystemPrompt, sysLogger)

	// 5. Services
	chatService := service.NewChatService(engine, resolver, guard, transcripts, publisher, sysLogger)
	settingsService := service.NewSettingsService(engine.Settings())
	chatLogService := service.NewChatLogService(uowFactory, resolver, sysLogger)

	// 6. Controllers
	c.ChatController = controller.NewChatController(chatService, cfg.Keys.JWTSecret)
	c.SettingsController = controller.NewSettingsController(settingsService, cfg.Keys.JWTSecret)
	c.ChatLogController = controller.NewChatLogController(chatLogService, cfg.Keys.JWTSecret)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newResolver(cfg *config.Config, log logger.ILogger) (*session.Resolver, error) {
	secret := []byte(cfg.Keys.SessionKeySecret)
	if len(secret) == 0 {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("SESSION_KEY_SECRET is required in production")
		}
		// Session keys will not survive a restart.
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		log.Warn("BOOTSTRAP", "SESSION_KEY_SECRET not set, using an ephemeral secret", nil)
	}
	return session.NewResolver(secret)
}

func newRedisClient(url string, log logger.ILogger) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using it as address", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}
