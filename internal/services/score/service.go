// Package score computes composite investability scores from analysis
// output and external market inputs.
package score

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/fathom/internal/analysis"
	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// Service implements interfaces.ScoreService.
type Service struct {
	storage  interfaces.StorageManager
	analyzer interfaces.AnalysisService
	market   interfaces.MarketDataClient
	moat     interfaces.MoatClient   // optional
	gemini   interfaces.GeminiClient // optional
	logger   *common.Logger
}

// NewService creates a new score service. market, moat and gemini may be
// nil; the corresponding inputs then degrade (neutral timing, zero moat,
// no commentary).
func NewService(
	storage interfaces.StorageManager,
	analyzer interfaces.AnalysisService,
	market interfaces.MarketDataClient,
	moat interfaces.MoatClient,
	gemini interfaces.GeminiClient,
	logger *common.Logger,
) *Service {
	return &Service{
		storage:  storage,
		analyzer: analyzer,
		market:   market,
		moat:     moat,
		gemini:   gemini,
		logger:   logger,
	}
}

// ComputeCompositeScore gathers every sub-score for a symbol and produces
// the composite. A stored score within the freshness TTL is returned
// unless force is set.
func (s *Service) ComputeCompositeScore(ctx context.Context, symbol string, force bool) (*models.CompositeScore, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	if !force {
		stored, err := s.storage.AnalysisStorage().GetCompositeScore(ctx, symbol)
		if err == nil && common.IsFresh(stored.GeneratedAt, common.FreshnessComposite) {
			s.logger.Debug().Str("symbol", symbol).Msg("Using stored composite score")
			return stored, nil
		}
	}

	stockAnalysis, err := s.analyzer.AnalyzeStock(ctx, symbol, false)
	if err != nil {
		return nil, err
	}

	inputs := analysis.CompositeInputs{
		FinancialHealth: stockAnalysis.HealthScore.Overall,
		Growth:          analysis.GrowthSubScore(stockAnalysis.Trends),
		Moat:            s.moatScore(ctx, symbol),
	}
	inputs.Valuation, inputs.Technical = s.timingScores(ctx, symbol)

	result := analysis.ComputeCompositeScore(symbol, inputs)
	result.Commentary = s.commentary(ctx, stockAnalysis, result)

	if err := s.storage.AnalysisStorage().SaveCompositeScore(ctx, result); err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Failed to persist composite score")
	}

	s.logger.Info().
		Str("symbol", symbol).
		Float64("overall", result.Overall).
		Str("recommendation", string(result.Recommendation)).
		Msg("Composite score computed")

	return result, nil
}

// moatScore fetches the externally computed moat score. A missing analysis
// or client contributes zero.
func (s *Service) moatScore(ctx context.Context, symbol string) float64 {
	if s.moat == nil {
		return 0
	}
	ms, err := s.moat.GetMoatScore(ctx, symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Moat score unavailable")
		return 0
	}
	if ms == nil {
		return 0
	}
	return ms.OverallScore
}

// timingScores derives valuation and technical sub-scores from the current
// quote. A failed quote degrades both to neutral 50 rather than failing
// the composite, since statements alone still make a meaningful score.
func (s *Service) timingScores(ctx context.Context, symbol string) (valuation, technical float64) {
	if s.market == nil {
		return 50, 50
	}
	quote, err := s.market.GetQuote(ctx, symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote unavailable, timing scores neutral")
		return 50, 50
	}
	return valuationScore(quote), technicalScore(quote)
}

// valuationScore measures the discount from the 52-week high: a price at
// the high scores 0, at the low 100. Without a usable range it is neutral.
func valuationScore(q *models.Quote) float64 {
	span := q.High52Week - q.Low52Week
	if span <= 0 || q.Price <= 0 {
		return 50
	}
	discount := (q.High52Week - q.Price) / span * 100
	return clamp(discount, 0, 100)
}

// technicalScore measures short-term momentum around a neutral 50: each
// percent of daily change moves the score five points.
func technicalScore(q *models.Quote) float64 {
	return clamp(50+q.ChangePct*5, 0, 100)
}

// commentary asks the AI client for a short summary. Failures are logged
// and the score ships without commentary.
func (s *Service) commentary(ctx context.Context, stockAnalysis *models.StockAnalysis, result *models.CompositeScore) string {
	if s.gemini == nil {
		return ""
	}
	text, err := s.gemini.SummarizeScore(ctx, stockAnalysis, result)
	if err != nil {
		s.logger.Debug().Err(err).Str("symbol", result.Symbol).Msg("Commentary generation skipped")
		return ""
	}
	return text
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Ensure Service implements ScoreService
var _ interfaces.ScoreService = (*Service)(nil)
