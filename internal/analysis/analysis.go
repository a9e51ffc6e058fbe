// Package analysis derives ratios, flags, trends, and scores from
// normalized financial statements. Everything here is pure: functions take
// immutable statement inputs and return fresh structures, so callers can
// fan out across symbols without coordination.
package analysis

import (
	"time"

	"github.com/bobmcallan/fathom/internal/models"
)

// AnalyzeStatements runs the full derivation pipeline over one symbol's
// normalized statements: ratio catalogue, flag rules, trend analysis, and
// the weighted health score.
func AnalyzeStatements(s *models.Statements) *models.StockAnalysis {
	ratios := ComputeRatios(s)
	red, green := DetectFlags(s)
	trends := ComputeTrends(s)

	annotateRatioTrends(ratios, trends)

	return &models.StockAnalysis{
		Symbol:      s.Symbol,
		Statements:  s,
		Ratios:      ratios,
		RedFlags:    red,
		GreenFlags:  green,
		Trends:      trends,
		HealthScore: ComputeHealthScore(ratios, red, green, trends),
		GeneratedAt: time.Now(),
	}
}

// annotateRatioTrends copies trend directions onto the margin ratios that
// have a matching trend metric.
func annotateRatioTrends(ratios []models.Ratio, trends []models.Trend) {
	for id, metric := range map[string]string{
		"operating_margin": "operating_margin",
		"net_margin":       "net_margin",
	} {
		r := ratioByID(ratios, id)
		t := trendByMetric(trends, metric)
		if r != nil && t != nil {
			r.Trend = t.Direction
		}
	}
}
