// Package storage provides persistence with pluggable backends.
package storage

import (
	"fmt"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/storage/badger"
	"github.com/bobmcallan/fathom/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendSurrealDB = "surrealdb"
	BackendBadger    = "badger"
)

// NewManager creates a storage manager based on the configuration.
// Supported backends: "surrealdb" (default), "badger" (embedded).
func NewManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = BackendSurrealDB
	}

	switch backend {
	case BackendSurrealDB:
		return surrealdb.NewManager(logger, config)

	case BackendBadger:
		return badger.NewManager(logger, config)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: surrealdb, badger)", backend)
	}
}
