package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fathom/internal/models"
)

// healthyStatements builds a fixture with strong figures across all three
// statements.
func healthyStatements() *models.Statements {
	end := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	return &models.Statements{
		Symbol: "ACME",
		Income: models.IncomeSeries{Annual: []*models.IncomeStatement{{
			EndDate:          end,
			Revenue:          models.Float(1000),
			CostOfRevenue:    models.Float(400),
			GrossProfit:      models.Float(600),
			OperatingIncome:  models.Float(250),
			InterestExpense:  models.Float(10),
			PretaxIncome:     models.Float(240),
			IncomeTaxExpense: models.Float(48),
			NetIncome:        models.Float(192),
		}}},
		Balance: models.BalanceSeries{Annual: []*models.BalanceSheet{{
			EndDate:            end,
			TotalAssets:        models.Float(2000),
			CurrentAssets:      models.Float(800),
			CashAndEquivalents: models.Float(500),
			Receivables:        models.Float(150),
			Inventory:          models.Float(100),
			TotalLiabilities:   models.Float(1100),
			CurrentLiabilities: models.Float(300),
			TotalDebt:          models.Float(400),
			TotalEquity:        models.Float(900),
		}}},
		CashFlow: models.CashFlowSeries{Annual: []*models.CashFlowStatement{{
			EndDate:            end,
			OperatingCashFlow:  models.Float(260),
			CapitalExpenditure: models.Float(60),
			FreeCashFlow:       models.Float(200),
		}}},
	}
}

func TestComputeRatiosCatalogueComplete(t *testing.T) {
	ratios := ComputeRatios(healthyStatements())

	// Every declared ratio appears exactly once, even on sparse data.
	require.Len(t, ratios, len(ratioCatalogue))
	seen := map[string]int{}
	for _, r := range ratios {
		seen[r.ID]++
	}
	for _, def := range ratioCatalogue {
		assert.Equal(t, 1, seen[def.ID], def.ID)
	}

	sparse := ComputeRatios(&models.Statements{})
	require.Len(t, sparse, len(ratioCatalogue))
	for _, r := range sparse {
		assert.Nil(t, r.Value, r.ID)
		assert.Equal(t, models.BucketFair, r.Bucket, r.ID)
	}
}

func TestComputeRatiosValues(t *testing.T) {
	ratios := ComputeRatios(healthyStatements())

	tests := []struct {
		id     string
		value  float64
		bucket models.ScoreBucket
	}{
		{"current_ratio", 800.0 / 300.0, models.BucketExcellent},
		{"quick_ratio", 700.0 / 300.0, models.BucketExcellent},
		{"debt_to_equity", 400.0 / 900.0, models.BucketGood},
		{"interest_coverage", 25.0, models.BucketExcellent},
		{"gross_margin", 60.0, models.BucketExcellent},
		{"operating_margin", 25.0, models.BucketExcellent},
		{"net_margin", 19.2, models.BucketExcellent},
		{"roe", 192.0 / 900.0 * 100, models.BucketExcellent},
		{"fcf_margin", 20.0, models.BucketExcellent},
		{"ocf_to_net_income", 260.0 / 192.0, models.BucketExcellent},
		{"asset_turnover", 0.5, models.BucketPoor},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r := ratioByID(ratios, tt.id)
			require.NotNil(t, r)
			require.NotNil(t, r.Value)
			assert.InDelta(t, tt.value, *r.Value, 0.0001)
			assert.Equal(t, tt.bucket, r.Bucket)
		})
	}
}

func TestCurrentRatioPoorBucket(t *testing.T) {
	s := &models.Statements{
		Balance: models.BalanceSeries{Annual: []*models.BalanceSheet{{
			CurrentAssets:      models.Float(50),
			CurrentLiabilities: models.Float(100),
		}}},
	}

	r := ratioByID(ComputeRatios(s), "current_ratio")
	require.NotNil(t, r)
	require.NotNil(t, r.Value)
	assert.Equal(t, 0.5, *r.Value)
	assert.Equal(t, models.BucketPoor, r.Bucket)
}

func TestRatioZeroDenominator(t *testing.T) {
	s := healthyStatements()
	s.Balance.Annual[0].CurrentLiabilities = models.Float(0)

	r := ratioByID(ComputeRatios(s), "current_ratio")
	require.NotNil(t, r)
	assert.Nil(t, r.Value)
	assert.Equal(t, models.BucketFair, r.Bucket)
}

func TestRatioMissingInput(t *testing.T) {
	s := healthyStatements()
	s.Balance.Annual[0].Inventory = nil

	r := ratioByID(ComputeRatios(s), "quick_ratio")
	require.NotNil(t, r)
	assert.Nil(t, r.Value)
	assert.Equal(t, models.BucketFair, r.Bucket)
}

func TestComputeRatiosPrefersTTM(t *testing.T) {
	s := healthyStatements()
	s.Income.TTM = &models.IncomeStatement{
		FiscalPeriod: "TTM",
		Revenue:      models.Float(2000),
		NetIncome:    models.Float(100),
	}

	r := ratioByID(ComputeRatios(s), "net_margin")
	require.NotNil(t, r)
	require.NotNil(t, r.Value)
	assert.InDelta(t, 5.0, *r.Value, 0.0001)
}

func TestComputeNOPAT(t *testing.T) {
	inc := &models.IncomeStatement{
		OperatingIncome:  models.Float(100),
		PretaxIncome:     models.Float(80),
		IncomeTaxExpense: models.Float(20),
	}
	nopat := computeNOPAT(inc)
	require.NotNil(t, nopat)
	assert.InDelta(t, 75.0, *nopat, 0.0001)

	inc.PretaxIncome = models.Float(0)
	assert.Nil(t, computeNOPAT(inc))
	assert.Nil(t, computeNOPAT(nil))
}

func TestBenchmarkBucket(t *testing.T) {
	higher := models.Benchmark{Poor: 1, Fair: 2, Good: 3}
	assert.Equal(t, models.BucketPoor, higher.Bucket(0.5))
	assert.Equal(t, models.BucketFair, higher.Bucket(1.5))
	assert.Equal(t, models.BucketGood, higher.Bucket(2.5))
	assert.Equal(t, models.BucketExcellent, higher.Bucket(3.0))

	lower := models.Benchmark{Poor: 2.0, Fair: 1.0, Good: 0.3, LowerIsBetter: true}
	assert.Equal(t, models.BucketPoor, lower.Bucket(2.5))
	assert.Equal(t, models.BucketFair, lower.Bucket(1.5))
	assert.Equal(t, models.BucketGood, lower.Bucket(0.5))
	assert.Equal(t, models.BucketExcellent, lower.Bucket(0.2))
}
