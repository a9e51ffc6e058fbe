package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/models"
)

func testManager(t *testing.T) *Manager {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Storage.Backend = "badger"
	config.Storage.Path = t.TempDir()

	m, err := NewManager(common.NewSilentLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestFactsStorageRoundTrip(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	facts := &models.CompanyFacts{
		Symbol:     "AAPL",
		CIK:        "0000320193",
		EntityName: "Apple Inc.",
		Facts: map[string][]models.Observation{
			"Assets": {{
				End:   time.Date(2024, time.September, 28, 0, 0, 0, 0, time.UTC),
				Unit:  "USD",
				Value: 364980000000,
			}},
		},
	}

	require.NoError(t, m.FactsStorage().SaveCompanyFacts(ctx, facts))

	got, err := m.FactsStorage().GetCompanyFacts(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", got.EntityName)
	assert.Len(t, got.Facts["Assets"], 1)

	_, err = m.FactsStorage().GetCompanyFacts(ctx, "MISSING")
	assert.Error(t, err)
}

func TestAnalysisStorageRoundTrip(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	for _, symbol := range []string{"AAPL", "MSFT"} {
		analysis := &models.StockAnalysis{
			Symbol:      symbol,
			HealthScore: &models.HealthScore{Overall: 75, Grade: "B"},
			GeneratedAt: time.Now(),
		}
		require.NoError(t, m.AnalysisStorage().SaveAnalysis(ctx, analysis))
	}

	got, err := m.AnalysisStorage().GetAnalysis(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "B", got.HealthScore.Grade)

	symbols, err := m.AnalysisStorage().ListAnalyzedSymbols(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, symbols)
}

func TestCompositeScoreStorage(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	score := &models.CompositeScore{
		Symbol:         "AAPL",
		Overall:        61.5,
		Recommendation: models.RecHold,
		GeneratedAt:    time.Now(),
	}
	require.NoError(t, m.AnalysisStorage().SaveCompositeScore(ctx, score))

	got, err := m.AnalysisStorage().GetCompositeScore(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, models.RecHold, got.Recommendation)

	// Overwrite replaces wholesale.
	score.Overall = 70
	score.Recommendation = models.RecBuy
	require.NoError(t, m.AnalysisStorage().SaveCompositeScore(ctx, score))
	got, err = m.AnalysisStorage().GetCompositeScore(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, models.RecBuy, got.Recommendation)
}

func TestKVStorage(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	kv := m.KeyValueStorage()
	require.NoError(t, kv.Set(ctx, "warm_cache_done", "true"))

	val, err := kv.Get(ctx, "warm_cache_done")
	require.NoError(t, err)
	assert.Equal(t, "true", val)

	require.NoError(t, kv.Delete(ctx, "warm_cache_done"))
	_, err = kv.Get(ctx, "warm_cache_done")
	assert.Error(t, err)

	// Deleting a missing key is not an error.
	assert.NoError(t, kv.Delete(ctx, "never_existed"))
}
