// Package interfaces defines service contracts for Fathom
package interfaces

import (
	"context"

	"github.com/bobmcallan/fathom/internal/models"
)

// FactsStorage persists raw company facts keyed by symbol.
type FactsStorage interface {
	GetCompanyFacts(ctx context.Context, symbol string) (*models.CompanyFacts, error)
	SaveCompanyFacts(ctx context.Context, facts *models.CompanyFacts) error
}

// AnalysisStorage persists full stock analyses and composite scores.
type AnalysisStorage interface {
	GetAnalysis(ctx context.Context, symbol string) (*models.StockAnalysis, error)
	SaveAnalysis(ctx context.Context, analysis *models.StockAnalysis) error
	ListAnalyzedSymbols(ctx context.Context) ([]string, error)

	GetCompositeScore(ctx context.Context, symbol string) (*models.CompositeScore, error)
	SaveCompositeScore(ctx context.Context, score *models.CompositeScore) error
}

// KeyValueStorage provides simple system configuration storage.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// StorageManager provides access to all storage areas.
type StorageManager interface {
	FactsStorage() FactsStorage
	AnalysisStorage() AnalysisStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}
