package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/adapters/event"
	"github.com/khoahotran/devfolio/internal/config"
	"github.com/khoahotran/devfolio/internal/domain/portfolio"
	"github.com/khoahotran/devfolio/pkg/logger"
)

// Backend is the persistence strategy picked by storage.strategy plus the connections it opened.
type Backend struct {
	Repository portfolio.Repository
	// Redis is set whenever redis.addr is configured, for the token denylist.
	Redis *redis.Client
	pool  *pgxpool.Pool
}

// Close releases connections the repository does not own. Close the repository (or the store
// built on it) first.
func (b *Backend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
}

// OpenBackend connects the configured strategy. live controls whether the remote strategy
// subscribes to the change feed; one-shot tools leave it off.
func OpenBackend(ctx context.Context, cfg config.Config, log logger.Logger, live bool) (*Backend, error) {
	b := &Backend{}
	if cfg.Redis.Addr != "" {
		rdb, err := NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		b.Redis = rdb
	}

	switch cfg.Storage.Strategy {
	case config.StrategyLocal:
		blobs, err := openBlobStore(cfg, b.Redis)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Repository = NewLocalRepository(blobs, cfg.Storage.Local.Key, log)
		log.Info("Using local storage", zap.String("driver", cfg.Storage.Local.Driver), zap.String("key", cfg.Storage.Local.Key))

	case config.StrategyRemote:
		pool, err := NewPostgresPool(ctx, cfg, log)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.pool = pool

		var (
			publisher ChangePublisher
			source    ChangeSource
		)
		if len(cfg.Kafka.Brokers) > 0 {
			producer, err := event.NewKafkaProducerClient(cfg, log)
			if err != nil {
				b.Close()
				return nil, err
			}
			publisher = producer
			if live {
				consumer, err := event.NewKafkaChangeConsumer(cfg, log)
				if err != nil {
					_ = producer.Close()
					b.Close()
					return nil, err
				}
				source = consumer
			}
		} else {
			log.Warn("No Kafka brokers configured, live updates between instances are off")
		}
		b.Repository = NewPostgresRepository(pool, cfg.Storage.OwnerID, publisher, source, log)
		log.Info("Using remote storage", zap.String("owner_id", cfg.Storage.OwnerID))

	default:
		b.Close()
		return nil, fmt.Errorf("unknown storage strategy %q", cfg.Storage.Strategy)
	}
	return b, nil
}

func openBlobStore(cfg config.Config, rdb *redis.Client) (BlobStore, error) {
	switch cfg.Storage.Local.Driver {
	case config.DriverRedis:
		if rdb == nil {
			return nil, fmt.Errorf("local driver %q needs redis.addr", config.DriverRedis)
		}
		// the denylist shares this client, so the blob store must not close it
		return &redisBlobStore{rdb: rdb}, nil
	case config.DriverSQLite:
		return OpenSQLiteBlobStore(cfg.Storage.Local.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown local driver %q", cfg.Storage.Local.Driver)
	}
}
