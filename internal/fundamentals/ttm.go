package fundamentals

import (
	"github.com/bobmcallan/fathom/internal/models"
)

// ttmQuarters is the number of discrete quarters a trailing-twelve-month
// aggregate requires. Fewer quarters means no TTM at all, never a partial
// sum.
const ttmQuarters = 4

// BuildIncomeTTM sums the four most recent discrete quarters into a single
// trailing-twelve-month income statement. Each field is summed
// independently: a field missing in any quarter is null in the result.
// Returns nil when fewer than four quarters exist.
func BuildIncomeTTM(quarterly []*models.IncomeStatement) *models.IncomeStatement {
	if len(quarterly) < ttmQuarters {
		return nil
	}
	window := quarterly[:ttmQuarters]
	latest := window[0]
	oldest := window[ttmQuarters-1]

	ttm := &models.IncomeStatement{
		StartDate:    oldest.StartDate,
		EndDate:      latest.EndDate,
		FiscalYear:   latest.FiscalYear,
		FiscalPeriod: "TTM",
	}

	getters := map[string]func(*models.IncomeStatement) *float64{
		"revenue":            func(s *models.IncomeStatement) *float64 { return s.Revenue },
		"cost_of_revenue":    func(s *models.IncomeStatement) *float64 { return s.CostOfRevenue },
		"gross_profit":       func(s *models.IncomeStatement) *float64 { return s.GrossProfit },
		"operating_income":   func(s *models.IncomeStatement) *float64 { return s.OperatingIncome },
		"interest_expense":   func(s *models.IncomeStatement) *float64 { return s.InterestExpense },
		"pretax_income":      func(s *models.IncomeStatement) *float64 { return s.PretaxIncome },
		"income_tax_expense": func(s *models.IncomeStatement) *float64 { return s.IncomeTaxExpense },
		"net_income":         func(s *models.IncomeStatement) *float64 { return s.NetIncome },
	}
	for name, get := range getters {
		setIncomeField(ttm, name, sumQuarters(window, get))
	}
	return ttm
}

// BuildCashFlowTTM sums the four most recent discrete quarters into a
// trailing-twelve-month cash flow statement, with the same per-field null
// propagation as BuildIncomeTTM.
func BuildCashFlowTTM(quarterly []*models.CashFlowStatement) *models.CashFlowStatement {
	if len(quarterly) < ttmQuarters {
		return nil
	}
	window := quarterly[:ttmQuarters]
	latest := window[0]
	oldest := window[ttmQuarters-1]

	ttm := &models.CashFlowStatement{
		StartDate:    oldest.StartDate,
		EndDate:      latest.EndDate,
		FiscalYear:   latest.FiscalYear,
		FiscalPeriod: "TTM",
	}

	getters := map[string]func(*models.CashFlowStatement) *float64{
		"operating_cash_flow":       func(s *models.CashFlowStatement) *float64 { return s.OperatingCashFlow },
		"capital_expenditure":       func(s *models.CashFlowStatement) *float64 { return s.CapitalExpenditure },
		"free_cash_flow":            func(s *models.CashFlowStatement) *float64 { return s.FreeCashFlow },
		"dividends_paid":            func(s *models.CashFlowStatement) *float64 { return s.DividendsPaid },
		"depreciation_amortization": func(s *models.CashFlowStatement) *float64 { return s.DepreciationAmortization },
	}
	for name, get := range getters {
		setCashFlowField(ttm, name, sumQuarters(window, get))
	}
	return ttm
}

// sumQuarters totals one field across a quarterly window. Any nil quarter
// makes the whole sum nil.
func sumQuarters[T any](window []T, get func(T) *float64) *float64 {
	var total float64
	for _, q := range window {
		v := get(q)
		if v == nil {
			return nil
		}
		total += *v
	}
	return &total
}
