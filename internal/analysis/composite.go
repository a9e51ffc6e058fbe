package analysis

import (
	"time"

	"github.com/bobmcallan/fathom/internal/models"
)

// Weight budgets for the composite score. Business quality carries 60 of
// the 100 points, timing the remaining 40.
const (
	weightFinancialHealth = 25.0
	weightMoat            = 20.0
	weightGrowth          = 15.0
	weightValuation       = 25.0
	weightTechnical       = 15.0
)

// CompositeInputs are the five 0-100 sub-scores feeding the composite.
// FinancialHealth comes from the health scorer; Growth from trend CAGR
// buckets; the rest are externally supplied. A missing moat analysis means
// Moat stays 0 and contributes nothing.
type CompositeInputs struct {
	FinancialHealth float64
	Moat            float64
	Growth          float64
	Valuation       float64
	Technical       float64
}

// ComputeCompositeScore combines the sub-scores into the 60/40 business
// quality and timing split with a banded recommendation. Pure: identical
// inputs always produce an identical score.
func ComputeCompositeScore(symbol string, in CompositeInputs) *models.CompositeScore {
	bq := scale(in.FinancialHealth, weightFinancialHealth) +
		scale(in.Moat, weightMoat) +
		scale(in.Growth, weightGrowth)
	timing := scale(in.Valuation, weightValuation) +
		scale(in.Technical, weightTechnical)
	overall := bq + timing

	return &models.CompositeScore{
		Symbol:          symbol,
		BusinessQuality: bq,
		Timing:          timing,
		Overall:         overall,
		FinancialHealth: clamp(in.FinancialHealth, 0, 100),
		Moat:            clamp(in.Moat, 0, 100),
		Growth:          clamp(in.Growth, 0, 100),
		Valuation:       clamp(in.Valuation, 0, 100),
		Technical:       clamp(in.Technical, 0, 100),
		Recommendation:  recommendationFor(overall),
		GeneratedAt:     time.Now(),
	}
}

// scale maps a 0-100 sub-score into its weight budget, clamping out-of-range
// inputs first.
func scale(score, weight float64) float64 {
	return clamp(score, 0, 100) / 100 * weight
}

// recommendationFor maps an overall 0-100 score onto the fixed action bands.
func recommendationFor(overall float64) models.Recommendation {
	switch {
	case overall >= 80:
		return models.RecStrongBuy
	case overall >= 65:
		return models.RecBuy
	case overall >= 45:
		return models.RecHold
	case overall >= 30:
		return models.RecSell
	default:
		return models.RecStrongSell
	}
}

// GrowthSubScore converts trend CAGRs into the 0-100 growth input of the
// composite score, reusing the health scorer's CAGR buckets.
func GrowthSubScore(trends []models.Trend) float64 {
	return growthScore(trends)
}
