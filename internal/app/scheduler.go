package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
)

// StartScheduler launches the cron-driven analysis refresh. Every tick
// re-analyzes stored symbols whose analysis has aged past the freshness
// TTL, then refreshes composite scores for the configured symbols.
func (a *App) StartScheduler() {
	if !a.Config.Scheduler.Enabled {
		a.Logger.Info().Msg("Scheduler: disabled via config")
		return
	}

	spec := a.Config.Scheduler.Spec
	if spec == "" {
		spec = "0 2 * * *"
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		refreshAnalyses(a.AnalysisService, a.ScoreService, a.Config.Symbols, a.Logger)
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("spec", spec).Msg("Scheduler: invalid cron spec, refresh disabled")
		return
	}

	c.Start()
	a.schedulerStop = func() {
		stopCtx := c.Stop()
		<-stopCtx.Done()
		a.Logger.Info().Msg("Scheduler: stopped")
	}

	a.Logger.Info().Str("spec", spec).Msg("Scheduler: started")
}

func refreshAnalyses(analysisService interfaces.AnalysisService, scoreService interfaces.ScoreService, symbols []string, logger *common.Logger) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := analysisService.RefreshStale(ctx); err != nil {
		logger.Warn().Err(err).Msg("Scheduled refresh: stale analysis pass failed")
	}

	scored := 0
	for _, symbol := range symbols {
		if _, err := scoreService.ComputeCompositeScore(ctx, symbol, false); err != nil {
			logger.Warn().Err(err).Str("symbol", symbol).Msg("Scheduled refresh: composite score failed")
			continue
		}
		scored++
	}

	logger.Info().
		Int("symbols", len(symbols)).
		Int("scored", scored).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled refresh: complete")
}
