package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/models"
)

// FactsStore persists raw company facts as one record per symbol.
type FactsStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewFactsStore(db *surrealdb.DB, logger *common.Logger) *FactsStore {
	return &FactsStore{db: db, logger: logger}
}

func (s *FactsStore) GetCompanyFacts(ctx context.Context, symbol string) (*models.CompanyFacts, error) {
	data, err := surrealdb.Select[models.CompanyFacts](ctx, s.db, surrealmodels.NewRecordID("company_facts", symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to select company facts: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("company facts not found for %s", symbol)
	}
	return data, nil
}

func (s *FactsStore) SaveCompanyFacts(ctx context.Context, facts *models.CompanyFacts) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("company_facts", facts.Symbol), "data": facts}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.CompanyFacts](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save company facts after retries: %w", lastErr)
}

// AnalysisStore persists analyses and composite scores, one record per
// symbol each.
type AnalysisStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewAnalysisStore(db *surrealdb.DB, logger *common.Logger) *AnalysisStore {
	return &AnalysisStore{db: db, logger: logger}
}

func (s *AnalysisStore) GetAnalysis(ctx context.Context, symbol string) (*models.StockAnalysis, error) {
	data, err := surrealdb.Select[models.StockAnalysis](ctx, s.db, surrealmodels.NewRecordID("analysis", symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to select analysis: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("analysis not found for %s", symbol)
	}
	return data, nil
}

func (s *AnalysisStore) SaveAnalysis(ctx context.Context, analysis *models.StockAnalysis) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("analysis", analysis.Symbol), "data": analysis}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.StockAnalysis](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save analysis after retries: %w", lastErr)
}

func (s *AnalysisStore) ListAnalyzedSymbols(ctx context.Context) ([]string, error) {
	sql := "SELECT symbol FROM analysis"

	type symbolResult struct {
		Symbol string `json:"symbol"`
	}

	results, err := surrealdb.Query[[]symbolResult](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyzed symbols: %w", err)
	}

	var symbols []string
	if results != nil && len(*results) > 0 {
		for _, res := range (*results)[0].Result {
			symbols = append(symbols, res.Symbol)
		}
	}
	return symbols, nil
}

func (s *AnalysisStore) GetCompositeScore(ctx context.Context, symbol string) (*models.CompositeScore, error) {
	data, err := surrealdb.Select[models.CompositeScore](ctx, s.db, surrealmodels.NewRecordID("composite_score", symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to select composite score: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("composite score not found for %s", symbol)
	}
	return data, nil
}

func (s *AnalysisStore) SaveCompositeScore(ctx context.Context, score *models.CompositeScore) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("composite_score", score.Symbol), "data": score}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.CompositeScore](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save composite score after retries: %w", lastErr)
}

// KVStore implements simple string key-value storage in the system_kv table.
type KVStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewKVStore(db *surrealdb.DB, logger *common.Logger) *KVStore {
	return &KVStore{db: db, logger: logger}
}

type kvRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	data, err := surrealdb.Select[kvRecord](ctx, s.db, surrealmodels.NewRecordID("system_kv", key))
	if err != nil {
		return "", fmt.Errorf("failed to select kv entry: %w", err)
	}
	if data == nil {
		return "", fmt.Errorf("key not found: %s", key)
	}
	return data.Value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{
		"rid":  surrealmodels.NewRecordID("system_kv", key),
		"data": kvRecord{Key: key, Value: value},
	}

	if _, err := surrealdb.Query[[]kvRecord](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to set kv entry: %w", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := surrealdb.Delete[kvRecord](ctx, s.db, surrealmodels.NewRecordID("system_kv", key)); err != nil {
		return fmt.Errorf("failed to delete kv entry: %w", err)
	}
	return nil
}
