package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/spotify-auth/config"
	"github.com/target/spotify-auth/internal/data"
	httpx "github.com/target/spotify-auth/internal/http"
	"github.com/target/spotify-auth/internal/ports"
)

// Storage is the opened config store together with the connections behind it.
type Storage struct {
	Store ports.KeyValueStore
	// Health is nil for the memory and file backends.
	Health httpx.HealthChecker

	db    *sql.DB
	redis redis.UniversalClient
}

// Close releases the database and redis connections, if any.
func (s *Storage) Close() error {
	var errs []error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// OpenStorage opens the configured config store backend. The secrets scope is
// encrypted when an encryption key is configured.
func OpenStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	st, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	wrapped, err := encryptSecrets(st.Store, cfg.EncryptionKey, logger)
	if err != nil {
		if cerr := st.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, err
	}
	st.Store = wrapped

	logger.InfoContext(ctx, "config store opened",
		"backend", cfg.Backend,
		"encrypted", cfg.EncryptionKey != "",
	)
	return st, nil
}

func openBackend(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Storage, error) {
	switch cfg.Backend {
	case config.StoreBackendMemory:
		return &Storage{Store: data.NewMemoryStore()}, nil

	case config.StoreBackendFile, "":
		fs, err := data.OpenFileStore(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return &Storage{Store: fs}, nil

	case config.StoreBackendRedis:
		client, err := ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		rs := data.NewRedisStore(client, cfg.Redis.KeyPrefix)
		return &Storage{Store: rs, Health: rs, redis: client}, nil

	case config.StoreBackendPostgres:
		db, err := ConnectDB(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		st := &Storage{db: db}
		if cfg.RunMigrations {
			if err = RunMigrations(ctx, db, logger); err != nil {
				return nil, errors.Join(err, st.Close())
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
		ps := data.NewPostgresStore(db)
		st.Store, st.Health = ps, ps
		return st, nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Backend)
	}
}
