// Package interfaces defines service contracts for Fathom
package interfaces

import (
	"context"

	"github.com/bobmcallan/fathom/internal/models"
)

// AnalysisService runs the normalization-and-analysis pipeline.
type AnalysisService interface {
	// AnalyzeStock fetches facts (honoring stored-copy freshness unless
	// force is set), normalizes statements and computes ratios, flags,
	// trends and the health score.
	AnalyzeStock(ctx context.Context, symbol string, force bool) (*models.StockAnalysis, error)

	// GetAnalysis returns the stored analysis for a symbol, or an error if
	// none exists.
	GetAnalysis(ctx context.Context, symbol string) (*models.StockAnalysis, error)

	// NormalizeStatements converts raw company facts into canonical
	// statement series without persisting anything.
	NormalizeStatements(facts *models.CompanyFacts) *models.Statements

	// RefreshStale re-analyzes every stored symbol whose analysis has aged
	// past the freshness TTL.
	RefreshStale(ctx context.Context) error
}

// ScoreService computes composite investability scores.
type ScoreService interface {
	// ComputeCompositeScore gathers the health score, moat score and market
	// inputs for a symbol and produces the composite score.
	ComputeCompositeScore(ctx context.Context, symbol string, force bool) (*models.CompositeScore, error)
}
