package models

import (
	"time"
)

// Absence of a reported figure is a first-class value throughout the
// statement model: every numeric field is a *float64 and nil means "not
// reported". Fields are never coerced to zero, and JSON output carries
// explicit nulls so downstream cache contracts stay stable.

// IncomeStatement holds one period's normalized income statement.
type IncomeStatement struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	FiscalYear   int       `json:"fiscal_year"`
	FiscalPeriod string    `json:"fiscal_period"`

	Revenue          *float64 `json:"revenue"`
	CostOfRevenue    *float64 `json:"cost_of_revenue"`
	GrossProfit      *float64 `json:"gross_profit"`
	OperatingIncome  *float64 `json:"operating_income"`
	InterestExpense  *float64 `json:"interest_expense"`
	PretaxIncome     *float64 `json:"pretax_income"`
	IncomeTaxExpense *float64 `json:"income_tax_expense"`
	NetIncome        *float64 `json:"net_income"`
}

// BalanceSheet holds one period-end's normalized balance sheet.
type BalanceSheet struct {
	EndDate      time.Time `json:"end_date"`
	FiscalYear   int       `json:"fiscal_year"`
	FiscalPeriod string    `json:"fiscal_period"`

	TotalAssets        *float64 `json:"total_assets"`
	CurrentAssets      *float64 `json:"current_assets"`
	CashAndEquivalents *float64 `json:"cash_and_equivalents"`
	Receivables        *float64 `json:"receivables"`
	Inventory          *float64 `json:"inventory"`
	TotalLiabilities   *float64 `json:"total_liabilities"`
	CurrentLiabilities *float64 `json:"current_liabilities"`
	ShortTermDebt      *float64 `json:"short_term_debt"`
	LongTermDebt       *float64 `json:"long_term_debt"`
	TotalDebt          *float64 `json:"total_debt"`
	TotalEquity        *float64 `json:"total_equity"`
}

// CashFlowStatement holds one period's normalized cash flow statement.
type CashFlowStatement struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	FiscalYear   int       `json:"fiscal_year"`
	FiscalPeriod string    `json:"fiscal_period"`

	OperatingCashFlow        *float64 `json:"operating_cash_flow"`
	CapitalExpenditure       *float64 `json:"capital_expenditure"`
	FreeCashFlow             *float64 `json:"free_cash_flow"`
	DividendsPaid            *float64 `json:"dividends_paid"`
	DepreciationAmortization *float64 `json:"depreciation_amortization"`
}

// IncomeSeries holds annual and quarterly income statements, most recent
// first, plus the trailing-twelve-month aggregate when 4 quarters exist.
type IncomeSeries struct {
	Annual    []*IncomeStatement `json:"annual"`
	Quarterly []*IncomeStatement `json:"quarterly"`
	TTM       *IncomeStatement   `json:"ttm"`
}

// BalanceSeries holds annual and quarterly balance sheets, most recent first.
// Balance sheets are point-in-time so no TTM aggregate exists.
type BalanceSeries struct {
	Annual    []*BalanceSheet `json:"annual"`
	Quarterly []*BalanceSheet `json:"quarterly"`
}

// CashFlowSeries holds annual and quarterly cash flow statements, most
// recent first, plus the TTM aggregate when 4 quarters exist.
type CashFlowSeries struct {
	Annual    []*CashFlowStatement `json:"annual"`
	Quarterly []*CashFlowStatement `json:"quarterly"`
	TTM       *CashFlowStatement   `json:"ttm"`
}

// Statements is the full normalized output for a company. Created once per
// normalization pass and treated as immutable by all downstream consumers.
type Statements struct {
	Symbol       string         `json:"symbol"`
	Income       IncomeSeries   `json:"income"`
	Balance      BalanceSeries  `json:"balance"`
	CashFlow     CashFlowSeries `json:"cash_flow"`
	Completeness float64        `json:"completeness"` // pct of canonical fields non-null in the latest statements
	GeneratedAt  time.Time      `json:"generated_at"`
}

// LatestIncome returns the TTM statement when available, otherwise the most
// recent annual statement, otherwise nil.
func (s *Statements) LatestIncome() *IncomeStatement {
	if s.Income.TTM != nil {
		return s.Income.TTM
	}
	if len(s.Income.Annual) > 0 {
		return s.Income.Annual[0]
	}
	return nil
}

// LatestBalance returns the most recent balance sheet of either cadence.
func (s *Statements) LatestBalance() *BalanceSheet {
	if len(s.Balance.Quarterly) > 0 {
		return s.Balance.Quarterly[0]
	}
	if len(s.Balance.Annual) > 0 {
		return s.Balance.Annual[0]
	}
	return nil
}

// LatestCashFlow returns the TTM statement when available, otherwise the
// most recent annual statement, otherwise nil.
func (s *Statements) LatestCashFlow() *CashFlowStatement {
	if s.CashFlow.TTM != nil {
		return s.CashFlow.TTM
	}
	if len(s.CashFlow.Annual) > 0 {
		return s.CashFlow.Annual[0]
	}
	return nil
}

// IsEmpty reports whether normalization produced no statements at all.
func (s *Statements) IsEmpty() bool {
	return len(s.Income.Annual) == 0 && len(s.Income.Quarterly) == 0 &&
		len(s.Balance.Annual) == 0 && len(s.Balance.Quarterly) == 0 &&
		len(s.CashFlow.Annual) == 0 && len(s.CashFlow.Quarterly) == 0
}

// Float returns a pointer to v. Convenience for building statements in
// tests and fixtures.
func Float(v float64) *float64 {
	return &v
}
