package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"interview-practice-be/internal/config"
	"interview-practice-be/internal/controller"
	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/internal/repository/contract"
	"interview-practice-be/internal/repository/implementation"
	"interview-practice-be/internal/service"
	"interview-practice-be/internal/websocket"
	"interview-practice-be/pkg/catalog"
	"interview-practice-be/pkg/database"
	pktNats "interview-practice-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	SubmissionController controller.ISubmissionController
	QuestionController   controller.IQuestionController
	HealthController     controller.IHealthController

	// Background services, started by main.
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub

	Logger logger.ILogger

	closers []func() error
}

func NewContainer(cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)

	c := &Container{Logger: sysLogger}

	// 1. Optional infrastructure
	var rdb *redis.Client
	if cfg.Messaging.RedisEnabled || cfg.Ledger.Backend == config.LedgerBackendRedis {
		rdb = connectRedis(cfg.Messaging.RedisURL)
		if rdb != nil {
			c.closers = append(c.closers, rdb.Close)
		}
	}

	var natsPub *pktNats.Publisher
	if cfg.Messaging.NatsEnabled {
		pub, err := pktNats.NewPublisher(cfg.Messaging.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
			c.closers = append(c.closers, func() error { pub.Close(); return nil })
		}
	}

	// 2. Ledger storage
	repo, err := newSessionDocumentRepository(cfg, rdb, sysLogger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.closers = append(c.closers, repo.Close)
	log.Printf("[INFO] Ledger backend: %s", cfg.Ledger.Backend)

	// 3. Event bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, pubSub.Close)

	wsHub := websocket.NewHub(rdb, sysLogger)
	c.WebSocketHub = wsHub

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Messaging.EventsTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Messaging.EventsTopic, auditLogger, wsHub, sysLogger)

	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}
	submissionService := service.NewSubmissionService(repo, publisherService, eventPublisher, sysLogger)

	questions := catalog.Default()
	if cfg.App.QuestionsFile != "" {
		loaded, err := catalog.Load(cfg.App.QuestionsFile)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("load questions: %w", err)
		}
		questions = loaded
	}
	questionService := service.NewQuestionService(questions)

	// 5. Controllers
	c.SubmissionController = controller.NewSubmissionController(submissionService, wsHub, sysLogger)
	c.QuestionController = controller.NewQuestionController(questionService)
	c.HealthController = controller.NewHealthController()

	return c, nil
}

func newSessionDocumentRepository(cfg *config.Config, rdb *redis.Client, log logger.ILogger) (contract.SessionDocumentRepository, error) {
	switch cfg.Ledger.Backend {
	case config.LedgerBackendFile, "":
		return implementation.NewFileSessionDocumentRepository(cfg.Ledger.DataDir, log), nil
	case config.LedgerBackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("ledger backend %q needs a reachable REDIS_URL", cfg.Ledger.Backend)
		}
		return implementation.NewRedisSessionDocumentRepository(rdb, log), nil
	case config.LedgerBackendPostgres:
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return implementation.NewGormSessionDocumentRepository(db, log)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger.Backend)
	}
}

func connectRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb.Close()
		return nil
	}
	return rdb
}

// Close releases infrastructure in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			log.Printf("[WARN] Shutdown: %v", err)
		}
	}
	c.closers = nil
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
