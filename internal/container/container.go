package container

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"woostore/storefront/internal/cart"
	"woostore/storefront/internal/client"
	"woostore/storefront/internal/config"
	"woostore/storefront/internal/domain/event"
	"woostore/storefront/internal/queue"
	"woostore/storefront/internal/repository"
	"woostore/storefront/internal/server"
	"woostore/storefront/internal/service"
	"woostore/storefront/internal/state"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const orderLogWorkers = 1

// Container holds all initialized components
type Container struct {
	Config *config.Config
	Client client.WooCommerceClient

	OrderService *service.OrderService
	SyncService  *service.SyncService
	Server       *server.Server

	events queue.EventStream
	db     *sql.DB
	redis  *redis.Client
}

// SetupLogging applies the configured logrus level and formatter
func SetupLogging(cfg config.LogConfig) {
	log.SetOutput(os.Stdout)
	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{
			FieldMap: log.FieldMap{
				log.FieldKeyTime:  "timestamp",
				log.FieldKeyLevel: "severity",
				log.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("⚠️ Unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// NewServer wires the HTTP proxy. Redis backs session carts and order events;
// without a Redis host carts are kept in memory and no events are published.
func NewServer(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
		Client: client.NewWooCommerceClient(cfg.WooCommerce),
	}

	var storageFactory cart.StorageFactory
	if cfg.Redis.Host != "" && cfg.Cart.Storage != "memory" {
		rdb, err := connectRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		container.redis = rdb

		stream := queue.NewRedisEventStream(rdb, cfg.Redis)
		if err := stream.EnsureStream(context.Background(), event.OrderPlacedType); err != nil {
			return nil, err
		}
		container.events = stream

		ttl := time.Duration(cfg.Cart.TTLHours) * time.Hour
		storageFactory = func(sessionID string) cart.Storage {
			return cart.NewRedisStorage(rdb, sessionID, ttl)
		}
	} else {
		log.Warn("⚠️ Redis not configured, carts are kept in memory and order events are disabled")
		backend := cart.NewMemoryBackend()
		storageFactory = backend.For
	}

	container.OrderService = service.NewOrderService(container.Client, container.events)

	gin.SetMode(cfg.Server.Mode)
	container.Server = server.New(cfg, container.Client, container.OrderService, cart.NewRegistry(storageFactory))

	return container, nil
}

// NewSync wires the catalog mirror: WooCommerce to Postgres with progress in Redis
func NewSync(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
		Client: client.NewWooCommerceClient(cfg.WooCommerce),
	}

	db, err := repository.Open(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	container.db = db
	log.Info("✅ Connected to Postgres successfully")

	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	rdb, err := connectRedis(cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}
	container.redis = rdb

	container.SyncService = service.NewSyncService(
		container.Client,
		repository.NewProductRepository(db),
		state.NewRedisStateManager(rdb),
		cfg.Sync.MaxWorkers,
		cfg.Sync.SaveInterval,
		cfg.Sync.PerPage,
	)

	return container, nil
}

func connectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("✅ Connected to Redis successfully")
	return rdb, nil
}

// Run serves HTTP and consumes order events until ctx is cancelled
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Server.Run(ctx)
	})

	if c.events != nil {
		g.Go(func() error {
			return c.OrderService.RunOrderLog(ctx, orderLogWorkers)
		})
	}

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		c.redis.Close()
	}

	log.Info("Container shut down successfully")
	return nil
}
