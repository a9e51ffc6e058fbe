package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fathom/internal/models"
)

func flagByID(flags []models.Flag, id string) *models.Flag {
	for i := range flags {
		if flags[i].ID == id {
			return &flags[i]
		}
	}
	return nil
}

func TestDetectFlagsInsolvency(t *testing.T) {
	s := &models.Statements{
		Balance: models.BalanceSeries{Annual: []*models.BalanceSheet{{
			TotalAssets:      models.Float(100),
			TotalLiabilities: models.Float(120),
		}}},
	}

	red, _ := DetectFlags(s)
	f := flagByID(red, "insolvency_risk")
	require.NotNil(t, f)
	assert.Equal(t, models.SeverityCritical, f.Severity)
	assert.Equal(t, models.FlagRed, f.Kind)
	require.NotNil(t, f.Value)
	assert.InDelta(t, 1.2, *f.Value, 0.0001)
}

func TestDetectFlagsLiquidity(t *testing.T) {
	s := &models.Statements{
		Balance: models.BalanceSeries{Annual: []*models.BalanceSheet{{
			CurrentAssets:      models.Float(50),
			CurrentLiabilities: models.Float(100),
		}}},
	}

	red, _ := DetectFlags(s)
	f := flagByID(red, "liquidity_concern")
	require.NotNil(t, f)
	assert.Equal(t, models.SeverityHigh, f.Severity)
	require.NotNil(t, f.Value)
	assert.Equal(t, 0.5, *f.Value)
}

func TestDetectFlagsEarningsQuality(t *testing.T) {
	mk := func(ocf float64) *models.Statements {
		return &models.Statements{
			Income: models.IncomeSeries{Annual: []*models.IncomeStatement{{
				NetIncome: models.Float(10),
			}}},
			CashFlow: models.CashFlowSeries{Annual: []*models.CashFlowStatement{{
				OperatingCashFlow: models.Float(ocf),
			}}},
		}
	}

	// OCF/NI = 1.5: superior cash generation, no earnings-quality red flag.
	red, green := DetectFlags(mk(15))
	assert.Nil(t, flagByID(red, "weak_earnings_quality"))
	f := flagByID(green, "superior_cash_generation")
	require.NotNil(t, f)
	require.NotNil(t, f.Value)
	assert.InDelta(t, 1.5, *f.Value, 0.0001)

	// OCF/NI = 0.5: weak earnings quality, no green flag.
	red, green = DetectFlags(mk(5))
	assert.Nil(t, flagByID(green, "superior_cash_generation"))
	f = flagByID(red, "weak_earnings_quality")
	require.NotNil(t, f)
	require.NotNil(t, f.Value)
	assert.InDelta(t, 0.5, *f.Value, 0.0001)
}

func TestDetectFlagsSkipsNegativeNetIncome(t *testing.T) {
	// The earnings-quality rules only apply to positive net income.
	s := &models.Statements{
		Income: models.IncomeSeries{Annual: []*models.IncomeStatement{{
			NetIncome: models.Float(-10),
		}}},
		CashFlow: models.CashFlowSeries{Annual: []*models.CashFlowStatement{{
			OperatingCashFlow: models.Float(5),
		}}},
	}

	red, green := DetectFlags(s)
	assert.Nil(t, flagByID(red, "weak_earnings_quality"))
	assert.Nil(t, flagByID(green, "superior_cash_generation"))
}

func TestDetectFlagsCashBurn(t *testing.T) {
	s := &models.Statements{
		CashFlow: models.CashFlowSeries{Annual: []*models.CashFlowStatement{{
			OperatingCashFlow: models.Float(-50),
		}}},
	}

	red, _ := DetectFlags(s)
	f := flagByID(red, "cash_burn")
	require.NotNil(t, f)
	assert.Equal(t, models.SeverityHigh, f.Severity)
}

func TestDetectFlagsHighLeverage(t *testing.T) {
	s := &models.Statements{
		Balance: models.BalanceSeries{Annual: []*models.BalanceSheet{{
			TotalDebt:   models.Float(500),
			TotalEquity: models.Float(200),
		}}},
	}

	red, _ := DetectFlags(s)
	f := flagByID(red, "high_leverage")
	require.NotNil(t, f)
	require.NotNil(t, f.Value)
	assert.InDelta(t, 2.5, *f.Value, 0.0001)
}

func TestDetectFlagsNetCash(t *testing.T) {
	s := &models.Statements{
		Balance: models.BalanceSeries{Annual: []*models.BalanceSheet{{
			CashAndEquivalents: models.Float(800),
			TotalDebt:          models.Float(200),
		}}},
	}

	_, green := DetectFlags(s)
	f := flagByID(green, "net_cash_position")
	require.NotNil(t, f)
	assert.Equal(t, models.StrengthNotable, f.Strength)
}

func TestDetectFlagsGreenOnHealthyFixture(t *testing.T) {
	red, green := DetectFlags(healthyStatements())

	assert.Empty(t, red)
	assert.NotNil(t, flagByID(green, "excellent_fcf_margin"))
	assert.NotNil(t, flagByID(green, "superior_cash_generation"))
	assert.NotNil(t, flagByID(green, "exceptional_roe"))
	assert.NotNil(t, flagByID(green, "net_cash_position"))
}

func TestDetectFlagsNullInputsNeverFire(t *testing.T) {
	red, green := DetectFlags(&models.Statements{})
	assert.Empty(t, red)
	assert.Empty(t, green)
}

func TestDetectFlagsIdempotent(t *testing.T) {
	s := healthyStatements()
	red1, green1 := DetectFlags(s)
	red2, green2 := DetectFlags(s)
	assert.Equal(t, red1, red2)
	assert.Equal(t, green1, green2)

	// No rule fires twice within one run.
	seen := map[string]bool{}
	for _, f := range append(red1, green1...) {
		assert.False(t, seen[f.ID], f.ID)
		seen[f.ID] = true
	}
}

func TestFlagConfidence(t *testing.T) {
	// A complete fixture yields near-full confidence; a minimal one much less.
	_, green := DetectFlags(healthyStatements())
	require.NotEmpty(t, green)
	assert.Greater(t, green[0].Confidence, 80)

	s := &models.Statements{
		Balance: models.BalanceSeries{Annual: []*models.BalanceSheet{{
			TotalAssets:      models.Float(100),
			TotalLiabilities: models.Float(120),
		}}},
	}
	red, _ := DetectFlags(s)
	require.NotEmpty(t, red)
	assert.Less(t, red[0].Confidence, 50)
}
