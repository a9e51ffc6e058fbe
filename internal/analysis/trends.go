package analysis

import (
	"iter"
	"math"
	"time"

	"github.com/bobmcallan/fathom/internal/models"
)

// directionTolerance is the relative change below which a trend counts as
// flat rather than up or down.
const directionTolerance = 0.01

// metricPoint is one dated observation inside a trend sequence.
type metricPoint struct {
	Date  time.Time
	Value float64
}

// trendMetric names a metric and knows how to read it from the annual
// history. Margin metrics compute a per-period ratio before trend logic.
type trendMetric struct {
	Name   string
	series func(s *models.Statements) iter.Seq[metricPoint]
}

var trendMetrics = []trendMetric{
	{Name: "revenue", series: incomeSeq(func(st *models.IncomeStatement) *float64 { return st.Revenue })},
	{Name: "net_income", series: incomeSeq(func(st *models.IncomeStatement) *float64 { return st.NetIncome })},
	{Name: "operating_income", series: incomeSeq(func(st *models.IncomeStatement) *float64 { return st.OperatingIncome })},
	{Name: "operating_cash_flow", series: cashFlowSeq(func(st *models.CashFlowStatement) *float64 { return st.OperatingCashFlow })},
	{Name: "free_cash_flow", series: cashFlowSeq(func(st *models.CashFlowStatement) *float64 { return st.FreeCashFlow })},
	{Name: "total_equity", series: balanceSeq(func(st *models.BalanceSheet) *float64 { return st.TotalEquity })},
	{Name: "operating_margin", series: marginSeq(func(st *models.IncomeStatement) *float64 { return st.OperatingIncome })},
	{Name: "net_margin", series: marginSeq(func(st *models.IncomeStatement) *float64 { return st.NetIncome })},
}

// ComputeTrends analyzes every catalogue metric across the annual history.
// Metrics with no usable periods are omitted.
func ComputeTrends(s *models.Statements) []models.Trend {
	var out []models.Trend
	for _, m := range trendMetrics {
		t := analyzeTrend(m.Name, m.series(s))
		if len(t.Points) == 0 {
			continue
		}
		out = append(out, t)
	}
	return out
}

// analyzeTrend materializes a metric sequence into a Trend. Series
// functions are restartable, so a sequence can be analyzed more than once.
func analyzeTrend(name string, seq iter.Seq[metricPoint]) models.Trend {
	t := models.Trend{Metric: name, Direction: "flat"}

	var prev *metricPoint
	for p := range seq {
		tp := models.TrendPoint{Date: p.Date, Value: p.Value}
		if prev != nil && prev.Value != 0 {
			pct := (p.Value - prev.Value) / math.Abs(prev.Value) * 100
			tp.ChangePct = &pct
		}
		q := p
		prev = &q
		t.Points = append(t.Points, tp)
	}
	if len(t.Points) < 2 {
		return t
	}

	earliest := t.Points[0]
	latest := t.Points[len(t.Points)-1]
	t.Direction = direction(earliest.Value, latest.Value)
	t.CAGR = computeCAGR(earliest, latest)
	return t
}

// direction compares endpoints with a 1% relative tolerance.
func direction(earliest, latest float64) string {
	base := math.Abs(earliest)
	if base == 0 {
		switch {
		case latest > 0:
			return "up"
		case latest < 0:
			return "down"
		default:
			return "flat"
		}
	}
	change := (latest - earliest) / base
	switch {
	case change > directionTolerance:
		return "up"
	case change < -directionTolerance:
		return "down"
	default:
		return "flat"
	}
}

// computeCAGR returns the compound annual growth rate between two points,
// or nil when the endpoints differ in sign, either is zero, or no time has
// elapsed.
func computeCAGR(earliest, latest models.TrendPoint) *float64 {
	if earliest.Value == 0 || latest.Value == 0 {
		return nil
	}
	if (earliest.Value > 0) != (latest.Value > 0) {
		return nil
	}
	years := latest.Date.Sub(earliest.Date).Hours() / 24 / 365.25
	if years <= 0 {
		return nil
	}
	cagr := math.Pow(latest.Value/earliest.Value, 1/years) - 1
	return &cagr
}

// incomeSeq yields a non-null income field in chronological order. The
// returned sequence is finite and restartable.
func incomeSeq(get func(*models.IncomeStatement) *float64) func(*models.Statements) iter.Seq[metricPoint] {
	return func(s *models.Statements) iter.Seq[metricPoint] {
		return func(yield func(metricPoint) bool) {
			annual := s.Income.Annual
			for i := len(annual) - 1; i >= 0; i-- {
				v := get(annual[i])
				if v == nil {
					continue
				}
				if !yield(metricPoint{Date: annual[i].EndDate, Value: *v}) {
					return
				}
			}
		}
	}
}

func cashFlowSeq(get func(*models.CashFlowStatement) *float64) func(*models.Statements) iter.Seq[metricPoint] {
	return func(s *models.Statements) iter.Seq[metricPoint] {
		return func(yield func(metricPoint) bool) {
			annual := s.CashFlow.Annual
			for i := len(annual) - 1; i >= 0; i-- {
				v := get(annual[i])
				if v == nil {
					continue
				}
				if !yield(metricPoint{Date: annual[i].EndDate, Value: *v}) {
					return
				}
			}
		}
	}
}

func balanceSeq(get func(*models.BalanceSheet) *float64) func(*models.Statements) iter.Seq[metricPoint] {
	return func(s *models.Statements) iter.Seq[metricPoint] {
		return func(yield func(metricPoint) bool) {
			annual := s.Balance.Annual
			for i := len(annual) - 1; i >= 0; i-- {
				v := get(annual[i])
				if v == nil {
					continue
				}
				if !yield(metricPoint{Date: annual[i].EndDate, Value: *v}) {
					return
				}
			}
		}
	}
}

// marginSeq yields a per-period margin (numerator over revenue, as
// percentage points), skipping periods where either side is missing or
// revenue is zero.
func marginSeq(get func(*models.IncomeStatement) *float64) func(*models.Statements) iter.Seq[metricPoint] {
	return func(s *models.Statements) iter.Seq[metricPoint] {
		return func(yield func(metricPoint) bool) {
			annual := s.Income.Annual
			for i := len(annual) - 1; i >= 0; i-- {
				num := get(annual[i])
				rev := annual[i].Revenue
				if num == nil || rev == nil || *rev == 0 {
					continue
				}
				margin := *num / *rev * 100
				if !yield(metricPoint{Date: annual[i].EndDate, Value: margin}) {
					return
				}
			}
		}
	}
}

// trendByMetric finds a computed trend, or nil.
func trendByMetric(trends []models.Trend, metric string) *models.Trend {
	for i := range trends {
		if trends[i].Metric == metric {
			return &trends[i]
		}
	}
	return nil
}
