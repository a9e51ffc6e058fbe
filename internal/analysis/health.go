package analysis

import (
	"math"
	"sort"

	"github.com/bobmcallan/fathom/internal/models"
)

// Category weights, summing to exactly 100.
var categoryWeights = []struct {
	Name   string
	Weight float64
}{
	{CategoryLiquidity, 20},
	{CategoryLeverage, 20},
	{CategoryProfitability, 25},
	{CategoryCashGeneration, 20},
	{CategoryGrowth, 15},
}

// criticalCeiling caps a category's score when a critical red flag sits in
// that category.
const criticalCeiling = 40

// bucketScores maps qualitative buckets onto the 0-100 scale.
var bucketScores = map[models.ScoreBucket]float64{
	models.BucketPoor:      25,
	models.BucketFair:      50,
	models.BucketGood:      75,
	models.BucketExcellent: 100,
}

// ComputeHealthScore aggregates ratio buckets, flags, and growth trends
// into weighted category scores and an overall 0-100 grade.
func ComputeHealthScore(ratios []models.Ratio, red, green []models.Flag, trends []models.Trend) *models.HealthScore {
	hs := &models.HealthScore{}

	var overall float64
	for _, cw := range categoryWeights {
		score := categoryScore(cw.Name, ratios, trends)
		if hasCriticalFlag(red, cw.Name) && score > criticalCeiling {
			score = criticalCeiling
		}
		hs.Categories = append(hs.Categories, models.CategoryScore{
			Name:   cw.Name,
			Score:  score,
			Weight: cw.Weight,
		})
		overall += score * cw.Weight / 100
	}

	hs.Overall = clamp(overall, 0, 100)
	hs.Grade = gradeFor(hs.Overall)
	hs.KeyStrengths = topGreenFlags(green, 3)
	hs.KeyWeaknesses = topRedFlags(red, 3)
	return hs
}

// categoryScore averages the bucket scores of the category's ratios. The
// growth category has no ratios and scores from trend CAGRs instead. A
// category with no usable inputs scores neutral.
func categoryScore(category string, ratios []models.Ratio, trends []models.Trend) float64 {
	if category == CategoryGrowth {
		return growthScore(trends)
	}

	var sum float64
	var n int
	for _, r := range ratios {
		if r.Category != category {
			continue
		}
		sum += bucketScores[r.Bucket]
		n++
	}
	if n == 0 {
		return bucketScores[models.BucketFair]
	}
	return sum / float64(n)
}

// growthScore buckets revenue and net income CAGR into the same 25-100
// scale as ratios, then averages. Metrics without a CAGR score neutral.
func growthScore(trends []models.Trend) float64 {
	var sum float64
	var n int
	for _, metric := range []string{"revenue", "net_income"} {
		t := trendByMetric(trends, metric)
		if t == nil || t.CAGR == nil {
			sum += bucketScores[models.BucketFair]
			n++
			continue
		}
		sum += bucketScores[cagrBucket(*t.CAGR)]
		n++
	}
	if n == 0 {
		return bucketScores[models.BucketFair]
	}
	return sum / float64(n)
}

// cagrBucket grades an annual growth rate (as a fraction).
func cagrBucket(cagr float64) models.ScoreBucket {
	switch {
	case cagr >= 0.15:
		return models.BucketExcellent
	case cagr >= 0.07:
		return models.BucketGood
	case cagr >= 0:
		return models.BucketFair
	default:
		return models.BucketPoor
	}
}

func hasCriticalFlag(red []models.Flag, category string) bool {
	for _, f := range red {
		if f.Category == category && f.Severity == models.SeverityCritical {
			return true
		}
	}
	return false
}

// gradeFor maps an overall score onto the ten-band letter scale.
func gradeFor(score float64) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 90:
		return "A"
	case score >= 85:
		return "A-"
	case score >= 80:
		return "B+"
	case score >= 75:
		return "B"
	case score >= 70:
		return "B-"
	case score >= 65:
		return "C+"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

var severityRank = map[models.Severity]int{
	models.SeverityCritical: 4,
	models.SeverityHigh:     3,
	models.SeverityMedium:   2,
	models.SeverityLow:      1,
}

var strengthRank = map[models.Strength]int{
	models.StrengthExceptional: 3,
	models.StrengthStrong:      2,
	models.StrengthNotable:     1,
}

// topRedFlags returns the n most severe red flags, ties broken by
// confidence then rule id for determinism.
func topRedFlags(red []models.Flag, n int) []models.Flag {
	sorted := make([]models.Flag, len(red))
	copy(sorted, red)
	sort.SliceStable(sorted, func(i, j int) bool {
		if severityRank[sorted[i].Severity] != severityRank[sorted[j].Severity] {
			return severityRank[sorted[i].Severity] > severityRank[sorted[j].Severity]
		}
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func topGreenFlags(green []models.Flag, n int) []models.Flag {
	sorted := make([]models.Flag, len(green))
	copy(sorted, green)
	sort.SliceStable(sorted, func(i, j int) bool {
		if strengthRank[sorted[i].Strength] != strengthRank[sorted[j].Strength] {
			return strengthRank[sorted[i].Strength] > strengthRank[sorted[j].Strength]
		}
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
