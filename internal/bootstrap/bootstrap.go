// Package bootstrap opens the configured storage backend and wires the core
// services. The server and the versionctl CLI share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"artifact-version-service/internal/adapters/secondary/badger"
	"artifact-version-service/internal/adapters/secondary/memory"
	"artifact-version-service/internal/adapters/secondary/postgres"
	"artifact-version-service/internal/config"
	"artifact-version-service/internal/core/ports/output"
	"artifact-version-service/internal/core/services"
)

// Storage is one opened backend behind the output ports.
type Storage struct {
	Driver   string
	Versions ports.ProjectVersionRepository
	Entities ports.BaseEntityRepository
	Records  ports.VersionRecordRepository

	ping  func(ctx context.Context) error
	close func()
}

func (s *Storage) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// Registry wires the core services over the storage.
func (s *Storage) Registry(notifier ports.ChangeNotifier) *services.Registry {
	return services.NewRegistry(s.Versions, s.Entities, s.Records, notifier)
}

// OpenStorage opens the backend named by cfg.Storage.Driver. For postgres it
// applies pending migrations first when cfg.Database.Migrate is set.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		if cfg.Database.Migrate {
			if err := postgres.MigrateUp(cfg.Database.DSN()); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Driver:   cfg.Storage.Driver,
			Versions: postgres.NewProjectVersionRepository(pool),
			Entities: postgres.NewBaseEntityRepository(pool),
			Records:  postgres.NewVersionRecordRepository(pool),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil

	case config.StorageBadger:
		bcfg := badger.DefaultConfig()
		bcfg.Path = cfg.Badger.Path
		bcfg.SyncWrites = cfg.Badger.SyncWrites
		db, err := badger.Open(bcfg)
		if err != nil {
			return nil, err
		}
		store := badger.NewStore(db)
		return &Storage{
			Driver:   cfg.Storage.Driver,
			Versions: store.Versions(),
			Entities: store.Entities(),
			Records:  store.Records(),
			ping: func(context.Context) error {
				if db.IsClosed() {
					return errors.New("badger database is closed")
				}
				return nil
			},
			close: func() {
				if err := db.Close(); err != nil {
					log.WithError(err).Warn("close badger")
				}
			},
		}, nil

	case config.StorageMemory:
		log.Warn("using in-memory storage; data is lost on exit")
		store := memory.NewStore()
		return &Storage{
			Driver:   cfg.Storage.Driver,
			Versions: store.Versions(),
			Entities: store.Entities(),
			Records:  store.Records(),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func InitLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
