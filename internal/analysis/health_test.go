package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fathom/internal/models"
)

func TestCategoryWeightsSumTo100(t *testing.T) {
	var total float64
	for _, cw := range categoryWeights {
		total += cw.Weight
	}
	assert.Equal(t, 100.0, total)
}

func TestComputeHealthScoreBounds(t *testing.T) {
	analysis := AnalyzeStatements(healthyStatements())
	hs := analysis.HealthScore
	require.NotNil(t, hs)

	assert.GreaterOrEqual(t, hs.Overall, 0.0)
	assert.LessOrEqual(t, hs.Overall, 100.0)
	assert.Len(t, hs.Categories, len(categoryWeights))

	var total float64
	for _, c := range hs.Categories {
		total += c.Weight
		assert.GreaterOrEqual(t, c.Score, 0.0)
		assert.LessOrEqual(t, c.Score, 100.0)
	}
	assert.Equal(t, 100.0, total)
}

func TestCriticalFlagCapsCategory(t *testing.T) {
	// A strong leverage picture with an insolvency flag forced in.
	ratios := ComputeRatios(healthyStatements())
	red := []models.Flag{{
		ID:       "insolvency_risk",
		Kind:     models.FlagRed,
		Severity: models.SeverityCritical,
		Category: CategoryLeverage,
	}}

	hs := ComputeHealthScore(ratios, red, nil, nil)
	for _, c := range hs.Categories {
		if c.Name == CategoryLeverage {
			assert.LessOrEqual(t, c.Score, float64(criticalCeiling))
		}
	}
}

func TestGradeMonotonic(t *testing.T) {
	tests := []struct {
		score float64
		grade string
	}{
		{100, "A+"}, {95, "A+"}, {94.9, "A"}, {90, "A"}, {85, "A-"},
		{80, "B+"}, {75, "B"}, {70, "B-"}, {65, "C+"}, {60, "C"},
		{55, "D"}, {50, "D"}, {49.9, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.grade, gradeFor(tt.score), "score %.1f", tt.score)
	}

	// Monotonic: a higher score never maps to a lower grade.
	prev := gradeRank(gradeFor(0))
	for s := 0.0; s <= 100; s += 0.5 {
		cur := gradeRank(gradeFor(s))
		assert.GreaterOrEqual(t, cur, prev, "score %.1f", s)
		prev = cur
	}
}

func gradeRank(grade string) int {
	order := []string{"F", "D", "C", "C+", "B-", "B", "B+", "A-", "A", "A+"}
	for i, g := range order {
		if g == grade {
			return i
		}
	}
	return -1
}

func TestTopFlagsOrdering(t *testing.T) {
	red := []models.Flag{
		{ID: "b", Severity: models.SeverityMedium, Confidence: 90},
		{ID: "a", Severity: models.SeverityCritical, Confidence: 50},
		{ID: "c", Severity: models.SeverityHigh, Confidence: 70},
		{ID: "d", Severity: models.SeverityMedium, Confidence: 95},
	}

	top := topRedFlags(red, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "a", top[0].ID)
	assert.Equal(t, "c", top[1].ID)
	assert.Equal(t, "d", top[2].ID)

	green := []models.Flag{
		{ID: "x", Strength: models.StrengthNotable, Confidence: 90},
		{ID: "y", Strength: models.StrengthExceptional, Confidence: 50},
	}
	topG := topGreenFlags(green, 3)
	require.Len(t, topG, 2)
	assert.Equal(t, "y", topG[0].ID)
}

func TestGrowthScoreFromCAGR(t *testing.T) {
	mk := func(cagr float64) []models.Trend {
		return []models.Trend{
			{Metric: "revenue", CAGR: &cagr},
			{Metric: "net_income", CAGR: &cagr},
		}
	}

	assert.Equal(t, 100.0, growthScore(mk(0.20)))
	assert.Equal(t, 75.0, growthScore(mk(0.10)))
	assert.Equal(t, 50.0, growthScore(mk(0.03)))
	assert.Equal(t, 25.0, growthScore(mk(-0.05)))

	// Missing CAGR scores neutral.
	assert.Equal(t, 50.0, growthScore(nil))
}

func TestEmptyStatementsScoreNeutral(t *testing.T) {
	analysis := AnalyzeStatements(&models.Statements{Symbol: "EMPTY"})
	hs := analysis.HealthScore
	require.NotNil(t, hs)

	// All-null ratios bucket as fair, so every category sits at 50.
	for _, c := range hs.Categories {
		assert.Equal(t, 50.0, c.Score, c.Name)
	}
	assert.Equal(t, 50.0, hs.Overall)
	assert.Equal(t, "D", hs.Grade)
}
