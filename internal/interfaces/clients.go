// Package interfaces defines service contracts for Fathom
package interfaces

import (
	"context"

	"github.com/bobmcallan/fathom/internal/models"
)

// FactsClient provides access to a regulatory company-facts source.
type FactsClient interface {
	// GetCompanyFacts retrieves every reported fact for a symbol, keyed by
	// accounting concept.
	GetCompanyFacts(ctx context.Context, symbol string) (*models.CompanyFacts, error)
}

// MarketDataClient provides market quotes used for valuation inputs.
type MarketDataClient interface {
	// GetQuote retrieves the current quote for a symbol.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// MoatClient provides externally computed moat scores. Implementations may
// return (nil, nil) when no score exists for the symbol; moat then
// contributes zero to business quality.
type MoatClient interface {
	// GetMoatScore retrieves the moat score for a symbol.
	GetMoatScore(ctx context.Context, symbol string) (*models.MoatScore, error)
}

// GeminiClient provides AI commentary generation. Treated as an opaque
// enrichment called with already-computed metrics.
type GeminiClient interface {
	// GenerateContent generates AI content from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// SummarizeScore generates a short plain-language commentary for a
	// computed composite score.
	SummarizeScore(ctx context.Context, analysis *models.StockAnalysis, score *models.CompositeScore) (string, error)
}
