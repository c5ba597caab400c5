package db

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// Config selects where the local key-value database lives.
type Config struct {
	Path     string
	InMemory bool
	// Logger receives badger's internal logs. Nil disables them.
	Logger *logrus.Logger
}

// Initialize opens the badger database described by cfg. The caller owns
// the returned handle and must Close it.
func Initialize(cfg Config) (*badger.DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("storage path is required for a persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("error creating storage directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(cfg.Logger)
	} else {
		opts = opts.WithLogger(nil)
	}

	database, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("error opening storage: %w", err)
	}
	return database, nil
}

// Ping checks that the database still accepts reads.
func Ping(database *badger.DB) error {
	if database == nil || database.IsClosed() {
		return errors.New("storage is closed")
	}
	return database.View(func(txn *badger.Txn) error { return nil })
}
