// Package badger provides an embedded BadgerHold storage backend.
package badger

import (
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
)

// Store wraps a BadgerHold database connection.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new BadgerHold store at the given directory path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("BadgerHold store opened")

	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Manager implements interfaces.StorageManager over a single embedded
// BadgerHold store.
type Manager struct {
	store *Store

	factsStorage    *factsStorage
	analysisStorage *analysisStorage
	kvStorage       *kvStorage
}

// NewManager creates a new embedded StorageManager.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	path := config.Storage.Path
	if path == "" {
		path = "data/fathom"
	}

	store, err := NewStore(logger, path)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("path", path).Msg("Badger storage manager initialized")

	return &Manager{
		store:           store,
		factsStorage:    &factsStorage{store: store, logger: logger},
		analysisStorage: &analysisStorage{store: store, logger: logger},
		kvStorage:       &kvStorage{store: store, logger: logger},
	}, nil
}

func (m *Manager) FactsStorage() interfaces.FactsStorage {
	return m.factsStorage
}

func (m *Manager) AnalysisStorage() interfaces.AnalysisStorage {
	return m.analysisStorage
}

func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kvStorage
}

func (m *Manager) Close() error {
	return m.store.Close()
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
