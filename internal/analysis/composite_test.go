package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fathom/internal/models"
)

func TestComputeCompositeScoreWeightedSum(t *testing.T) {
	score := ComputeCompositeScore("ACME", CompositeInputs{
		FinancialHealth: 80,
		Moat:            70,
		Growth:          60,
		Valuation:       50,
		Technical:       40,
	})

	// Business quality: 80%*25 + 70%*20 + 60%*15 = 20 + 14 + 9.
	assert.InDelta(t, 43.0, score.BusinessQuality, 0.0001)
	// Timing: 50%*25 + 40%*15 = 12.5 + 6.
	assert.InDelta(t, 18.5, score.Timing, 0.0001)
	assert.InDelta(t, 61.5, score.Overall, 0.0001)
	assert.Equal(t, models.RecHold, score.Recommendation)
}

func TestCompositeRecommendationBands(t *testing.T) {
	tests := []struct {
		overall float64
		want    models.Recommendation
	}{
		{100, models.RecStrongBuy},
		{80, models.RecStrongBuy},
		{79.9, models.RecBuy},
		{65, models.RecBuy},
		{64.9, models.RecHold},
		{45, models.RecHold},
		{44.9, models.RecSell},
		{30, models.RecSell},
		{29.9, models.RecStrongSell},
		{0, models.RecStrongSell},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, recommendationFor(tt.overall), "overall %.1f", tt.overall)
	}
}

func TestCompositeScoreDeterministic(t *testing.T) {
	in := CompositeInputs{FinancialHealth: 72, Moat: 55, Growth: 80, Valuation: 65, Technical: 30}
	a := ComputeCompositeScore("ACME", in)
	b := ComputeCompositeScore("ACME", in)

	a.GeneratedAt = b.GeneratedAt
	assert.Equal(t, a, b)
}

func TestCompositeScoreClampsInputs(t *testing.T) {
	score := ComputeCompositeScore("ACME", CompositeInputs{
		FinancialHealth: 150,
		Moat:            -20,
		Growth:          100,
		Valuation:       100,
		Technical:       100,
	})

	assert.Equal(t, 100.0, score.FinancialHealth)
	assert.Equal(t, 0.0, score.Moat)
	// 100%*25 + 0 + 100%*15 = 40 business quality; full timing budget.
	assert.InDelta(t, 40.0, score.BusinessQuality, 0.0001)
	assert.InDelta(t, 40.0, score.Timing, 0.0001)
	assert.LessOrEqual(t, score.Overall, 100.0)
}

func TestCompositeMissingMoatContributesZero(t *testing.T) {
	score := ComputeCompositeScore("ACME", CompositeInputs{
		FinancialHealth: 100,
		Growth:          100,
		Valuation:       100,
		Technical:       100,
	})

	require.NotNil(t, score)
	// Everything maxed except moat: 25 + 0 + 15 + 25 + 15.
	assert.InDelta(t, 80.0, score.Overall, 0.0001)
	assert.Equal(t, models.RecStrongBuy, score.Recommendation)
}
