package app

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/services/analyzer"
)

// warmCache pre-analyzes the configured symbols on startup so the first
// user query is fast. Analyses and scores already within their freshness
// TTLs are reused, so a restart with warm storage is close to free.
func warmCache(ctx context.Context, analysisService interfaces.AnalysisService, scoreService interfaces.ScoreService, symbols []string, logger *common.Logger) {
	if os.Getenv("FATHOM_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via FATHOM_WARM_CACHE=off")
		return
	}

	if len(symbols) == 0 {
		logger.Info().Msg("Warm cache: no symbols configured, skipping")
		return
	}

	start := time.Now()
	logger.Info().Int("symbols", len(symbols)).Msg("Warm cache: starting")

	analyzed := 0
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			logger.Info().Msg("Warm cache: cancelled")
			return
		}

		if _, err := analysisService.AnalyzeStock(ctx, symbol, false); err != nil {
			if errors.Is(err, analyzer.ErrInsufficientData) {
				logger.Info().Str("symbol", symbol).Msg("Warm cache: insufficient data, skipping")
			} else {
				logger.Warn().Err(err).Str("symbol", symbol).Msg("Warm cache: analysis failed")
			}
			continue
		}

		if _, err := scoreService.ComputeCompositeScore(ctx, symbol, false); err != nil {
			logger.Warn().Err(err).Str("symbol", symbol).Msg("Warm cache: composite score failed")
			continue
		}
		analyzed++
	}

	logger.Info().
		Int("symbols", len(symbols)).
		Int("analyzed", analyzed).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: complete")
}
