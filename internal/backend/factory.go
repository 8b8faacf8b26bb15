package backend

import (
	"context"
	"fmt"

	"moneytracker/internal/amqp"
	"moneytracker/internal/cache"
	"moneytracker/internal/core"
	applog "moneytracker/internal/log"
	"moneytracker/internal/ports"
	"moneytracker/internal/services"
	"moneytracker/internal/storage"
	"moneytracker/internal/storage/memory"
	"moneytracker/internal/storage/postgres"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		repo ports.TransactionRepository
		ping PingFunc
	)
	switch config.Type {
	case MemoryBackend:
		repo = memory.New()
		ping = func(context.Context) error { return nil }
		f.logger.Info("Initialized memory backend")
	case SQLiteBackend:
		r, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		repo, ping = r, r.Ping
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case PostgresBackend:
		r, err := postgres.Connect(ctx, config.DatabaseURL, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		repo, ping = r, r.Ping
		f.logger.Info("Initialized Postgres backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	// A nil *amqp.Client must not reach the service as a non-nil interface.
	var publisher services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events",
				applog.FieldError, err.Error())
		} else {
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	size, ttl := config.CacheSize, config.CacheTTL
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	stats := cache.NewLRUCache[[]core.MonthlyStat](size, ttl)

	svc := services.NewTransactionService(repo, publisher, stats, f.logger)
	return &BackendResult{
		Service: svc,
		Stats:   stats,
		Ping:    ping,
		Cleanup: svc.Close,
	}, nil
}
