package score

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// memoryStorage is a minimal in-memory StorageManager for score tests.
type memoryStorage struct {
	scores map[string]*models.CompositeScore
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{scores: map[string]*models.CompositeScore{}}
}

func (m *memoryStorage) FactsStorage() interfaces.FactsStorage       { return nil }
func (m *memoryStorage) AnalysisStorage() interfaces.AnalysisStorage { return m }
func (m *memoryStorage) KeyValueStorage() interfaces.KeyValueStorage { return nil }
func (m *memoryStorage) Close() error                                { return nil }

func (m *memoryStorage) GetAnalysis(_ context.Context, symbol string) (*models.StockAnalysis, error) {
	return nil, fmt.Errorf("not stored")
}
func (m *memoryStorage) SaveAnalysis(_ context.Context, _ *models.StockAnalysis) error { return nil }
func (m *memoryStorage) ListAnalyzedSymbols(_ context.Context) ([]string, error)       { return nil, nil }

func (m *memoryStorage) GetCompositeScore(_ context.Context, symbol string) (*models.CompositeScore, error) {
	if s, ok := m.scores[symbol]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("composite score not found for %s", symbol)
}

func (m *memoryStorage) SaveCompositeScore(_ context.Context, score *models.CompositeScore) error {
	m.scores[score.Symbol] = score
	return nil
}

// fakeAnalyzer returns a canned analysis.
type fakeAnalyzer struct {
	analysis *models.StockAnalysis
	err      error
	calls    int
}

func (f *fakeAnalyzer) AnalyzeStock(_ context.Context, symbol string, _ bool) (*models.StockAnalysis, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.analysis, nil
}

func (f *fakeAnalyzer) GetAnalysis(_ context.Context, _ string) (*models.StockAnalysis, error) {
	return f.analysis, f.err
}

func (f *fakeAnalyzer) NormalizeStatements(_ *models.CompanyFacts) *models.Statements { return nil }
func (f *fakeAnalyzer) RefreshStale(_ context.Context) error                          { return nil }

type fakeMarket struct {
	quote *models.Quote
	err   error
}

func (f *fakeMarket) GetQuote(_ context.Context, _ string) (*models.Quote, error) {
	return f.quote, f.err
}

type fakeMoat struct {
	score *models.MoatScore
	err   error
}

func (f *fakeMoat) GetMoatScore(_ context.Context, _ string) (*models.MoatScore, error) {
	return f.score, f.err
}

type fakeGemini struct {
	text string
	err  error
}

func (f *fakeGemini) GenerateContent(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

func (f *fakeGemini) SummarizeScore(_ context.Context, _ *models.StockAnalysis, _ *models.CompositeScore) (string, error) {
	return f.text, f.err
}

func testAnalysis() *models.StockAnalysis {
	cagr := 0.20
	return &models.StockAnalysis{
		Symbol:      "ACME",
		HealthScore: &models.HealthScore{Overall: 80, Grade: "B+"},
		Trends: []models.Trend{
			{Metric: "revenue", CAGR: &cagr},
			{Metric: "net_income", CAGR: &cagr},
		},
		GeneratedAt: time.Now(),
	}
}

func testQuote() *models.Quote {
	return &models.Quote{
		Symbol:     "ACME",
		Price:      75,
		High52Week: 100,
		Low52Week:  50,
		ChangePct:  1.0,
	}
}

func TestComputeCompositeScore(t *testing.T) {
	storage := newMemoryStorage()
	svc := NewService(storage, &fakeAnalyzer{analysis: testAnalysis()},
		&fakeMarket{quote: testQuote()},
		&fakeMoat{score: &models.MoatScore{Symbol: "ACME", OverallScore: 70}},
		&fakeGemini{text: "Solid fundamentals."},
		common.NewSilentLogger())

	result, err := svc.ComputeCompositeScore(context.Background(), "acme", false)
	require.NoError(t, err)

	assert.Equal(t, "ACME", result.Symbol)
	assert.Equal(t, 80.0, result.FinancialHealth)
	assert.Equal(t, 70.0, result.Moat)
	assert.Equal(t, 100.0, result.Growth) // 20% CAGR buckets as excellent
	assert.Equal(t, 50.0, result.Valuation)
	assert.Equal(t, 55.0, result.Technical)

	// 80%*25 + 70%*20 + 100%*15 = 49; 50%*25 + 55%*15 = 20.75.
	assert.InDelta(t, 49.0, result.BusinessQuality, 0.0001)
	assert.InDelta(t, 20.75, result.Timing, 0.0001)
	assert.Equal(t, models.RecBuy, result.Recommendation)
	assert.Equal(t, "Solid fundamentals.", result.Commentary)

	// Persisted.
	assert.Contains(t, storage.scores, "ACME")
}

func TestComputeCompositeScoreUsesFreshStored(t *testing.T) {
	storage := newMemoryStorage()
	storage.scores["ACME"] = &models.CompositeScore{
		Symbol:      "ACME",
		Overall:     55,
		GeneratedAt: time.Now(),
	}
	analyzer := &fakeAnalyzer{analysis: testAnalysis()}
	svc := NewService(storage, analyzer, &fakeMarket{quote: testQuote()}, nil, nil, common.NewSilentLogger())

	result, err := svc.ComputeCompositeScore(context.Background(), "ACME", false)
	require.NoError(t, err)
	assert.Equal(t, 55.0, result.Overall)
	assert.Zero(t, analyzer.calls)

	// Force recomputes.
	_, err = svc.ComputeCompositeScore(context.Background(), "ACME", true)
	require.NoError(t, err)
	assert.Equal(t, 1, analyzer.calls)
}

func TestComputeCompositeScoreMissingMoat(t *testing.T) {
	cases := map[string]interfaces.MoatClient{
		"nil client":  nil,
		"no analysis": &fakeMoat{score: nil},
		"client error": &fakeMoat{
			err: fmt.Errorf("service unavailable"),
		},
	}
	for name, moatClient := range cases {
		t.Run(name, func(t *testing.T) {
			svc := NewService(newMemoryStorage(), &fakeAnalyzer{analysis: testAnalysis()},
				&fakeMarket{quote: testQuote()}, moatClient, nil, common.NewSilentLogger())

			result, err := svc.ComputeCompositeScore(context.Background(), "ACME", true)
			require.NoError(t, err)
			assert.Equal(t, 0.0, result.Moat)
		})
	}
}

func TestComputeCompositeScoreQuoteFailureNeutralTiming(t *testing.T) {
	svc := NewService(newMemoryStorage(), &fakeAnalyzer{analysis: testAnalysis()},
		&fakeMarket{err: fmt.Errorf("timeout")}, nil, nil, common.NewSilentLogger())

	result, err := svc.ComputeCompositeScore(context.Background(), "ACME", true)
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.Valuation)
	assert.Equal(t, 50.0, result.Technical)
}

func TestComputeCompositeScoreAnalysisFailure(t *testing.T) {
	svc := NewService(newMemoryStorage(), &fakeAnalyzer{err: fmt.Errorf("no data")},
		&fakeMarket{quote: testQuote()}, nil, nil, common.NewSilentLogger())

	_, err := svc.ComputeCompositeScore(context.Background(), "ACME", true)
	require.Error(t, err)
}

func TestValuationScore(t *testing.T) {
	tests := []struct {
		name  string
		quote *models.Quote
		want  float64
	}{
		{"at the high", &models.Quote{Price: 100, High52Week: 100, Low52Week: 50}, 0},
		{"at the low", &models.Quote{Price: 50, High52Week: 100, Low52Week: 50}, 100},
		{"midpoint", &models.Quote{Price: 75, High52Week: 100, Low52Week: 50}, 50},
		{"no range", &models.Quote{Price: 75}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valuationScore(tt.quote))
		})
	}
}

func TestTechnicalScore(t *testing.T) {
	assert.Equal(t, 50.0, technicalScore(&models.Quote{ChangePct: 0}))
	assert.Equal(t, 60.0, technicalScore(&models.Quote{ChangePct: 2}))
	assert.Equal(t, 0.0, technicalScore(&models.Quote{ChangePct: -15}))
	assert.Equal(t, 100.0, technicalScore(&models.Quote{ChangePct: 15}))
}
