// Package bootstrap assembles the pieces both binaries share: storage, the
// outbox pipeline and the reconciliation lock.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/application"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/config"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/db"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/lock"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/memory"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/messaging"
	outboxinfra "github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/outbox"
)

// Outbox origins. Each service drains only the events it wrote.
const (
	OriginStorefront   = "storefront"
	OriginStockService = "stock-service"
)

type Storage struct {
	Products domain.ProductRepository
	Orders   domain.OrderStore
	Invoices domain.InvoiceRepository
	Outbox   domain.OutboxRepository
	close    func() error
}

func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStorage connects to the configured driver. The pg driver also applies
// the schema; origin tags the outbox rows this process writes and drains.
func OpenStorage(ctx context.Context, cfg config.Config, origin string, log *slog.Logger) (*Storage, error) {
	switch cfg.StorageDriver {
	case "memory":
		log.Warn("using in-memory storage; data is lost on exit")
		store := memory.NewStore()
		return &Storage{Products: store, Orders: store, Invoices: store, Outbox: store}, nil
	case "pg":
		dbConn, err := sql.Open("pgx", cfg.PgDsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		if err := dbConn.PingContext(ctx); err != nil {
			dbConn.Close()
			return nil, fmt.Errorf("failed to ping postgres: %w", err)
		}
		if err := db.Migrate(ctx, dbConn); err != nil {
			dbConn.Close()
			return nil, err
		}
		return &Storage{
			Products: db.NewPgProductRepository(dbConn),
			Orders:   db.NewPgOrderStore(dbConn),
			Invoices: db.NewPgInvoiceRepository(dbConn),
			Outbox:   db.NewPgOutboxRepository(dbConn, origin),
			close:    dbConn.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// StartOutbox returns the writer services enqueue events through. With
// messaging enabled it also starts the dispatcher loop publishing to
// exchange; otherwise events are dropped.
func StartOutbox(ctx context.Context, cfg config.Config, repo domain.OutboxRepository, exchange, queuePrefix string, log *slog.Logger) application.OutboxWriter {
	if !cfg.MessagingEnabled {
		log.Info("messaging disabled; domain events are not published")
		return application.NopOutboxWriter{}
	}

	producer := messaging.NewProducerBus(cfg.RabbitUri, exchange, queuePrefix)
	dispatcher := outboxinfra.NewDispatcher(
		repo,
		messaging.NewEnvelopePublisher(producer),
		cfg.OutboxMaxRetry,
		cfg.OutboxBatchSize,
		log,
	)
	scheduler := outboxinfra.NewScheduler(dispatcher, time.Duration(cfg.OutboxIntervalSec)*time.Second, log)
	scheduler.Start(ctx)

	return application.NewOutboxWriter(repo)
}

// NewLocker picks Redis when REDIS_URL is set and the in-process lock
// otherwise. The returned close func is never nil.
func NewLocker(cfg config.Config, log *slog.Logger) (domain.Locker, func() error, error) {
	if cfg.RedisURL == "" {
		log.Info("REDIS_URL not set; reconciliation lock is process-local")
		return lock.NewLocalLocker(), func() error { return nil }, nil
	}
	l, err := lock.NewRedisLocker(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return l, l.Close, nil
}
