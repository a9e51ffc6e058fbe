// Package analyzer orchestrates the fetch-normalize-analyze pipeline for
// one symbol at a time.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/fathom/internal/analysis"
	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/fundamentals"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// ErrInsufficientData indicates no usable statements could be produced for
// a symbol. Callers present it as a clear user-facing condition rather than
// a generic failure.
var ErrInsufficientData = errors.New("insufficient data for analysis")

// Service implements interfaces.AnalysisService.
type Service struct {
	storage    interfaces.StorageManager
	facts      interfaces.FactsClient
	normalizer *fundamentals.Normalizer
	logger     *common.Logger
}

// NewService creates a new analysis service.
func NewService(storage interfaces.StorageManager, facts interfaces.FactsClient, logger *common.Logger) *Service {
	return &Service{
		storage:    storage,
		facts:      facts,
		normalizer: fundamentals.NewNormalizer(logger),
		logger:     logger,
	}
}

// AnalyzeStock fetches facts, normalizes statements, and computes the full
// analysis for a symbol. Stored facts within the freshness TTL are reused
// unless force is set.
func (s *Service) AnalyzeStock(ctx context.Context, symbol string, force bool) (*models.StockAnalysis, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	facts, err := s.getFacts(ctx, symbol, force)
	if err != nil {
		return nil, err
	}
	if facts == nil || len(facts.Facts) == 0 {
		return nil, fmt.Errorf("%w: no facts for %s", ErrInsufficientData, symbol)
	}

	statements := s.normalizer.Normalize(facts)
	if statements.IsEmpty() {
		return nil, fmt.Errorf("%w: no statements derivable for %s", ErrInsufficientData, symbol)
	}

	result := analysis.AnalyzeStatements(statements)
	result.Symbol = symbol

	if err := s.storage.AnalysisStorage().SaveAnalysis(ctx, result); err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Failed to persist analysis")
	}

	s.logger.Info().
		Str("symbol", symbol).
		Float64("health", result.HealthScore.Overall).
		Str("grade", result.HealthScore.Grade).
		Int("red_flags", len(result.RedFlags)).
		Int("green_flags", len(result.GreenFlags)).
		Msg("Stock analyzed")

	return result, nil
}

// getFacts returns stored facts when fresh, fetching and persisting
// otherwise.
func (s *Service) getFacts(ctx context.Context, symbol string, force bool) (*models.CompanyFacts, error) {
	if !force {
		stored, err := s.storage.FactsStorage().GetCompanyFacts(ctx, symbol)
		if err == nil && common.IsFresh(stored.RetrievedAt, common.FreshnessFacts) {
			s.logger.Debug().Str("symbol", symbol).Msg("Using stored company facts")
			return stored, nil
		}
	}

	facts, err := s.facts.GetCompanyFacts(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company facts for %s: %w", symbol, err)
	}

	if err := s.storage.FactsStorage().SaveCompanyFacts(ctx, facts); err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Failed to persist company facts")
	}

	return facts, nil
}

// GetAnalysis returns the stored analysis for a symbol.
func (s *Service) GetAnalysis(ctx context.Context, symbol string) (*models.StockAnalysis, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return s.storage.AnalysisStorage().GetAnalysis(ctx, symbol)
}

// NormalizeStatements converts raw facts into canonical statement series
// without persisting anything.
func (s *Service) NormalizeStatements(facts *models.CompanyFacts) *models.Statements {
	return s.normalizer.Normalize(facts)
}

// RefreshStale re-analyzes every stored symbol whose analysis has aged past
// the freshness TTL. Per-symbol failures are logged and skipped.
func (s *Service) RefreshStale(ctx context.Context) error {
	symbols, err := s.storage.AnalysisStorage().ListAnalyzedSymbols(ctx)
	if err != nil {
		return fmt.Errorf("failed to list analyzed symbols: %w", err)
	}

	refreshed := 0
	for _, symbol := range symbols {
		stored, err := s.storage.AnalysisStorage().GetAnalysis(ctx, symbol)
		if err == nil && common.IsFresh(stored.GeneratedAt, common.FreshnessAnalysis) {
			continue
		}

		if _, err := s.AnalyzeStock(ctx, symbol, false); err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Stale refresh failed for symbol")
			continue
		}
		refreshed++
	}

	s.logger.Info().
		Int("symbols", len(symbols)).
		Int("refreshed", refreshed).
		Dur("ttl", common.FreshnessAnalysis).
		Time("at", time.Now()).
		Msg("Stale analyses refreshed")

	return nil
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
