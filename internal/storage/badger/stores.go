package badger

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/models"
)

// factsRecord wraps company facts for BadgerHold indexing.
type factsRecord struct {
	Symbol string `badgerhold:"key"`
	Facts  *models.CompanyFacts
}

type factsStorage struct {
	store  *Store
	logger *common.Logger
}

func (s *factsStorage) GetCompanyFacts(_ context.Context, symbol string) (*models.CompanyFacts, error) {
	var rec factsRecord
	if err := s.store.db.Get(symbol, &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("company facts not found for %s", symbol)
		}
		return nil, fmt.Errorf("failed to get company facts: %w", err)
	}
	return rec.Facts, nil
}

func (s *factsStorage) SaveCompanyFacts(_ context.Context, facts *models.CompanyFacts) error {
	rec := factsRecord{Symbol: facts.Symbol, Facts: facts}
	if err := s.store.db.Upsert(facts.Symbol, &rec); err != nil {
		return fmt.Errorf("failed to save company facts: %w", err)
	}
	return nil
}

// analysisRecord wraps a stock analysis for BadgerHold indexing.
type analysisRecord struct {
	Symbol   string `badgerhold:"key"`
	Analysis *models.StockAnalysis
}

// scoreRecord wraps a composite score for BadgerHold indexing.
type scoreRecord struct {
	Symbol string `badgerhold:"key"`
	Score  *models.CompositeScore
}

type analysisStorage struct {
	store  *Store
	logger *common.Logger
}

func (s *analysisStorage) GetAnalysis(_ context.Context, symbol string) (*models.StockAnalysis, error) {
	var rec analysisRecord
	if err := s.store.db.Get(symbol, &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("analysis not found for %s", symbol)
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return rec.Analysis, nil
}

func (s *analysisStorage) SaveAnalysis(_ context.Context, analysis *models.StockAnalysis) error {
	rec := analysisRecord{Symbol: analysis.Symbol, Analysis: analysis}
	if err := s.store.db.Upsert(analysis.Symbol, &rec); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

func (s *analysisStorage) ListAnalyzedSymbols(_ context.Context) ([]string, error) {
	var recs []analysisRecord
	if err := s.store.db.Find(&recs, nil); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	symbols := make([]string, 0, len(recs))
	for _, rec := range recs {
		symbols = append(symbols, rec.Symbol)
	}
	return symbols, nil
}

func (s *analysisStorage) GetCompositeScore(_ context.Context, symbol string) (*models.CompositeScore, error) {
	var rec scoreRecord
	if err := s.store.db.Get(symbol, &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("composite score not found for %s", symbol)
		}
		return nil, fmt.Errorf("failed to get composite score: %w", err)
	}
	return rec.Score, nil
}

func (s *analysisStorage) SaveCompositeScore(_ context.Context, score *models.CompositeScore) error {
	rec := scoreRecord{Symbol: score.Symbol, Score: score}
	if err := s.store.db.Upsert(score.Symbol, &rec); err != nil {
		return fmt.Errorf("failed to save composite score: %w", err)
	}
	return nil
}

// KVEntry represents a key-value pair stored in BadgerDB.
type KVEntry struct {
	Key   string `badgerhold:"key"`
	Value string
}

type kvStorage struct {
	store  *Store
	logger *common.Logger
}

func (s *kvStorage) Get(_ context.Context, key string) (string, error) {
	var entry KVEntry
	err := s.store.db.Get(key, &entry)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return "", fmt.Errorf("key '%s' not found", key)
		}
		return "", fmt.Errorf("failed to get key '%s': %w", key, err)
	}
	return entry.Value, nil
}

func (s *kvStorage) Set(_ context.Context, key, value string) error {
	entry := KVEntry{Key: key, Value: value}
	if err := s.store.db.Upsert(key, &entry); err != nil {
		return fmt.Errorf("failed to set key '%s': %w", key, err)
	}
	return nil
}

func (s *kvStorage) Delete(_ context.Context, key string) error {
	err := s.store.db.Delete(key, KVEntry{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete key '%s': %w", key, err)
	}
	return nil
}
