package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fathom/internal/models"
)

// growthStatements builds four annual income statements with revenue
// compounding at roughly 20% per year, most recent first.
func growthStatements() *models.Statements {
	s := &models.Statements{Symbol: "ACME"}
	revenues := []float64{1728, 1440, 1200, 1000}
	for i, rev := range revenues {
		year := 2024 - i
		s.Income.Annual = append(s.Income.Annual, &models.IncomeStatement{
			EndDate:         time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
			FiscalYear:      year,
			Revenue:         models.Float(rev),
			OperatingIncome: models.Float(rev * 0.2),
			NetIncome:       models.Float(rev * 0.15),
		})
	}
	return s
}

func TestTrendRevenueGrowth(t *testing.T) {
	trends := ComputeTrends(growthStatements())
	tr := trendByMetric(trends, "revenue")
	require.NotNil(t, tr)

	assert.Equal(t, "up", tr.Direction)
	require.Len(t, tr.Points, 4)

	// Chronological order.
	assert.Equal(t, 1000.0, tr.Points[0].Value)
	assert.Equal(t, 1728.0, tr.Points[3].Value)
	assert.Nil(t, tr.Points[0].ChangePct)
	require.NotNil(t, tr.Points[1].ChangePct)
	assert.InDelta(t, 20.0, *tr.Points[1].ChangePct, 0.01)

	// (1+cagr)^years * earliest == latest.
	require.NotNil(t, tr.CAGR)
	years := tr.Points[3].Date.Sub(tr.Points[0].Date).Hours() / 24 / 365.25
	reproduced := 1000 * math.Pow(1+*tr.CAGR, years)
	assert.InDelta(t, 1728.0, reproduced, 0.01)
}

func TestTrendDirectionTolerance(t *testing.T) {
	mk := func(earliest, latest float64) *models.Statements {
		return &models.Statements{Income: models.IncomeSeries{Annual: []*models.IncomeStatement{
			{EndDate: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), Revenue: models.Float(latest)},
			{EndDate: time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC), Revenue: models.Float(earliest)},
		}}}
	}

	tests := []struct {
		name      string
		earliest  float64
		latest    float64
		direction string
	}{
		{"clear growth", 100, 120, "up"},
		{"clear decline", 100, 80, "down"},
		{"within tolerance", 100, 100.5, "flat"},
		{"just above tolerance", 100, 101.5, "up"},
		{"just below tolerance", 100, 98.5, "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trends := ComputeTrends(mk(tt.earliest, tt.latest))
			tr := trendByMetric(trends, "revenue")
			require.NotNil(t, tr)
			assert.Equal(t, tt.direction, tr.Direction)
		})
	}
}

func TestTrendCAGRSignRules(t *testing.T) {
	tests := []struct {
		name     string
		earliest float64
		latest   float64
		wantNil  bool
	}{
		{"both positive", 100, 150, false},
		{"both negative", -100, -50, false},
		{"sign change", -100, 150, true},
		{"zero endpoint", 0, 150, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			earliest := models.TrendPoint{
				Date:  time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC),
				Value: tt.earliest,
			}
			latest := models.TrendPoint{
				Date:  time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
				Value: tt.latest,
			}
			cagr := computeCAGR(earliest, latest)
			if tt.wantNil {
				assert.Nil(t, cagr)
			} else {
				assert.NotNil(t, cagr)
			}
		})
	}
}

func TestTrendSinglePeriod(t *testing.T) {
	s := &models.Statements{Income: models.IncomeSeries{Annual: []*models.IncomeStatement{
		{EndDate: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), Revenue: models.Float(100)},
	}}}

	trends := ComputeTrends(s)
	tr := trendByMetric(trends, "revenue")
	require.NotNil(t, tr)
	assert.Equal(t, "flat", tr.Direction)
	assert.Nil(t, tr.CAGR)
	assert.Len(t, tr.Points, 1)
}

func TestTrendSkipsNullPeriods(t *testing.T) {
	s := growthStatements()
	s.Income.Annual[1].Revenue = nil

	trends := ComputeTrends(s)
	tr := trendByMetric(trends, "revenue")
	require.NotNil(t, tr)
	assert.Len(t, tr.Points, 3)
}

func TestTrendMarginMetric(t *testing.T) {
	trends := ComputeTrends(growthStatements())
	tr := trendByMetric(trends, "operating_margin")
	require.NotNil(t, tr)

	// Margin is constant at 20%, so direction is flat.
	assert.Equal(t, "flat", tr.Direction)
	for _, p := range tr.Points {
		assert.InDelta(t, 20.0, p.Value, 0.0001)
	}
}

func TestTrendSequenceRestartable(t *testing.T) {
	s := growthStatements()
	seq := incomeSeq(func(st *models.IncomeStatement) *float64 { return st.Revenue })(s)

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	assert.Equal(t, 4, count())
	assert.Equal(t, 4, count())

	// Early break must not exhaust the sequence.
	for range seq {
		break
	}
	assert.Equal(t, 4, count())
}
