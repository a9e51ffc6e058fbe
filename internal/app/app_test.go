package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/models"
	"github.com/bobmcallan/fathom/internal/services/analyzer"
)

type fakeAnalysisService struct {
	refreshCalls int
	analyzed     []string
	failSymbols  map[string]error
}

func (f *fakeAnalysisService) AnalyzeStock(ctx context.Context, symbol string, force bool) (*models.StockAnalysis, error) {
	if err, ok := f.failSymbols[symbol]; ok {
		return nil, err
	}
	f.analyzed = append(f.analyzed, symbol)
	return &models.StockAnalysis{Symbol: symbol}, nil
}

func (f *fakeAnalysisService) GetAnalysis(ctx context.Context, symbol string) (*models.StockAnalysis, error) {
	return &models.StockAnalysis{Symbol: symbol}, nil
}

func (f *fakeAnalysisService) NormalizeStatements(facts *models.CompanyFacts) *models.Statements {
	return &models.Statements{}
}

func (f *fakeAnalysisService) RefreshStale(ctx context.Context) error {
	f.refreshCalls++
	return nil
}

type fakeScoreService struct {
	scored      []string
	failSymbols map[string]error
}

func (f *fakeScoreService) ComputeCompositeScore(ctx context.Context, symbol string, force bool) (*models.CompositeScore, error) {
	if err, ok := f.failSymbols[symbol]; ok {
		return nil, err
	}
	f.scored = append(f.scored, symbol)
	return &models.CompositeScore{Symbol: symbol}, nil
}

func TestRefreshAnalyses(t *testing.T) {
	analysisSvc := &fakeAnalysisService{}
	scoreSvc := &fakeScoreService{
		failSymbols: map[string]error{"BAD": fmt.Errorf("upstream down")},
	}

	refreshAnalyses(analysisSvc, scoreSvc, []string{"AAPL", "BAD", "MSFT"}, common.NewSilentLogger())

	assert.Equal(t, 1, analysisSvc.refreshCalls)
	assert.Equal(t, []string{"AAPL", "MSFT"}, scoreSvc.scored)
}

func TestWarmCacheAnalyzesSymbols(t *testing.T) {
	analysisSvc := &fakeAnalysisService{}
	scoreSvc := &fakeScoreService{}

	warmCache(context.Background(), analysisSvc, scoreSvc, []string{"AAPL", "MSFT"}, common.NewSilentLogger())

	assert.Equal(t, []string{"AAPL", "MSFT"}, analysisSvc.analyzed)
	assert.Equal(t, []string{"AAPL", "MSFT"}, scoreSvc.scored)
}

func TestWarmCacheSkipsInsufficientData(t *testing.T) {
	analysisSvc := &fakeAnalysisService{
		failSymbols: map[string]error{"THIN": fmt.Errorf("%w: no facts", analyzer.ErrInsufficientData)},
	}
	scoreSvc := &fakeScoreService{}

	warmCache(context.Background(), analysisSvc, scoreSvc, []string{"THIN", "AAPL"}, common.NewSilentLogger())

	assert.Equal(t, []string{"AAPL"}, analysisSvc.analyzed)
	assert.Equal(t, []string{"AAPL"}, scoreSvc.scored)
}

func TestWarmCacheDisabledViaEnv(t *testing.T) {
	t.Setenv("FATHOM_WARM_CACHE", "off")

	analysisSvc := &fakeAnalysisService{}
	scoreSvc := &fakeScoreService{}

	warmCache(context.Background(), analysisSvc, scoreSvc, []string{"AAPL"}, common.NewSilentLogger())

	assert.Empty(t, analysisSvc.analyzed)
	assert.Empty(t, scoreSvc.scored)
}

func TestWarmCacheHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analysisSvc := &fakeAnalysisService{}
	scoreSvc := &fakeScoreService{}

	warmCache(ctx, analysisSvc, scoreSvc, []string{"AAPL"}, common.NewSilentLogger())

	assert.Empty(t, analysisSvc.analyzed)
}
