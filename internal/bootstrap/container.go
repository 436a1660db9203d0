package bootstrap

import (
	"context"
	"errors"
	"log"

	"disaster-locator-bot/internal/config"
	"disaster-locator-bot/internal/constant"
	"disaster-locator-bot/internal/controller"
	"disaster-locator-bot/internal/handler"
	"disaster-locator-bot/internal/pkg/logger"
	"disaster-locator-bot/internal/repository/contract"
	"disaster-locator-bot/internal/repository/implementation"
	"disaster-locator-bot/internal/repository/memory"
	"disaster-locator-bot/internal/repository/unitofwork"
	"disaster-locator-bot/internal/service"
	"disaster-locator-bot/internal/websocket"
	"disaster-locator-bot/pkg/locator"
	"disaster-locator-bot/pkg/lock"
	pktNats "disaster-locator-bot/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	WebhookController  controller.IWebhookController
	ResourceController controller.IResourceController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	IntakeService   *service.IntakeService

	// WebSockets
	ChatHandler  *handler.ChatHandler
	WebSocketHub *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// Close releases bus connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

// NewContainer wires the bot. db, redis and NATS are optional: without a db
// the stores live in memory, without redis the hub and the per-user lock stay
// local, without NATS only the HTTP and websocket transports are served.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	gatewayLogger := logger.NewIsolatedLogger(cfg.App.GatewayLogFilePath)
	c.Logger = sysLogger

	var (
		sessions   contract.SessionRepository
		resources  contract.ResourceRepository
		uowFactory unitofwork.RepositoryFactory
	)
	if db != nil {
		sessions = implementation.NewChatSessionRepository(db)
		resources = implementation.NewResourceRepository(db)
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		log.Printf("[WARN] No database configured, sessions and resources are kept in memory")
		sessions = memory.NewSessionRepository(0)
		resources = memory.NewResourceRepository()
	}

	// 2. Event Bus
	// Publish blocks until the dispatcher acked the handoff, which keeps
	// each user's events in arrival order.
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	// Redis
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	var locker lock.Locker = lock.NoopLocker{}
	if rdb != nil {
		locker = lock.NewRedisLocker(rdb, cfg.Bot.UserLockTTL)
	}

	// NATS
	var (
		natsConn *nats.Conn
		natsPub  *pktNats.Publisher
		natsSub  *pktNats.Subscriber
	)
	if cfg.App.NatsURL != "" {
		nc, js, err := pktNats.Connect(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS: %v", err)
		} else {
			natsConn = nc
			natsPub = pktNats.NewPublisher(nc, js)
			natsSub = pktNats.NewSubscriber(nc, js)
			c.closers = append(c.closers, natsPub.Close, natsSub.Close)
		}
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, sysLogger)

	// 4. Services
	senders := []service.IMessageSender{wsHub}
	if natsPub != nil {
		senders = append(senders, service.NewNatsDeliveryService(natsPub, sysLogger))
	}
	sender := service.NewMultiSender(senders...)

	gateway := locator.NewClient(locator.Config{
		BaseURL:   cfg.Locator.BaseURL,
		PagePath:  cfg.Locator.PagePath,
		Timeout:   cfg.Locator.Timeout,
		UserAgent: cfg.Locator.UserAgent,
	}, gatewayLogger)

	strategies := service.NewStrategyRegistry(resources, gateway, cfg.Collections, cfg.Location())
	conversationService := service.NewConversationService(
		sessions,
		strategies,
		sender,
		service.ConversationConfig{ClosingDelay: cfg.Bot.ClosingDelay},
		sysLogger,
	)

	publisherService := service.NewPublisherService(constant.InboundTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		constant.InboundTopic,
		conversationService,
		locker,
		service.ConsumerConfig{Workers: cfg.Bot.DispatcherWorkers, EventTimeout: cfg.Bot.UserLockTTL},
		sysLogger,
	)

	if natsSub != nil {
		c.IntakeService = service.NewIntakeService(natsSub, publisherService, sysLogger)
	}

	resourceService := service.NewResourceService(resources, uowFactory, sysLogger)
	healthService := service.NewHealthService(wsHub.InstanceId(), healthChecks(db, rdb, natsConn))

	// 5. Transport
	c.WebhookController = controller.NewWebhookController(publisherService, cfg.App.JwtSecret)
	c.ResourceController = controller.NewResourceController(resourceService, healthService, cfg.App.JwtSecret)
	c.ChatHandler = handler.NewChatHandler(publisherService, wsHub, cfg.App.JwtSecret, sysLogger)
	c.WebSocketHub = wsHub
	c.ConsumerService = consumerService

	return c
}

func healthChecks(db *gorm.DB, rdb *redis.Client, nc *nats.Conn) map[string]service.HealthCheck {
	checks := map[string]service.HealthCheck{}
	if db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	if nc != nil {
		checks["nats"] = func(ctx context.Context) error {
			if !nc.IsConnected() {
				return errors.New(nc.Status().String())
			}
			return nil
		}
	}
	return checks
}
