// Package badger persists versions, base entities and version records in an
// embedded BadgerDB. It serves single-node deployments and tests, where it
// runs in Badger's in-memory mode.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

// Config holds configuration for the embedded database.
type Config struct {
	// Path is the directory for database files. Ignored when InMemory is true.
	Path string

	// InMemory disables disk persistence.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// GCInterval is how often value log garbage collection runs. Zero disables it.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum ratio of discardable data before GC.
	GCDiscardRatio float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger routes Badger's internal logging through logrus. Badger is
// chatty at info level, so its info lines are logged at debug.
type badgerLogger struct {
	entry *log.Entry
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// DB wraps a Badger instance with its garbage collection loop.
type DB struct {
	*badger.DB
	stopGC context.CancelFunc
	gcDone chan struct{}
}

// Open opens the database described by cfg. The caller must Close it.
func Open(cfg Config) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{entry: log.WithField("component", "badger")})

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	db := &DB{DB: bdb}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		ctx, cancel := context.WithCancel(context.Background())
		db.stopGC = cancel
		db.gcDone = make(chan struct{})
		go db.runGC(ctx, cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return db, nil
}

// OpenInMemory opens an in-memory database. Data is lost when it is closed.
func OpenInMemory() (*DB, error) {
	return Open(InMemoryConfig())
}

func (d *DB) runGC(ctx context.Context, interval time.Duration, ratio float64) {
	defer close(d.gcDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// ErrNoRewrite means there was nothing to collect.
			if err := d.RunValueLogGC(ratio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				log.WithError(err).Warn("badger value log GC failed")
			}
		}
	}
}

// Close stops garbage collection and closes the database.
func (d *DB) Close() error {
	if d.stopGC != nil {
		d.stopGC()
		<-d.gcDone
	}
	return d.DB.Close()
}
