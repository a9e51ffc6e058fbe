// Package fundamentals normalizes raw company facts into canonical
// financial statements
package fundamentals

import (
	"github.com/bobmcallan/fathom/internal/models"
)

// fieldDef maps one canonical statement field to its concept aliases, in
// priority order. Instant fields are point-in-time (balance sheet); flow
// fields cover a duration and participate in TTM aggregation and
// cumulative-to-discrete quarterly derivation.
type fieldDef struct {
	Name    string
	Aliases []string
	Instant bool
}

var incomeFields = []fieldDef{
	{Name: "revenue", Aliases: []string{
		"Revenues",
		"RevenueFromContractWithCustomerExcludingAssessedTax",
		"RevenueFromContractWithCustomerIncludingAssessedTax",
		"SalesRevenueNet",
		"SalesRevenueGoodsNet",
	}},
	{Name: "cost_of_revenue", Aliases: []string{
		"CostOfRevenue",
		"CostOfGoodsAndServicesSold",
		"CostOfGoodsSold",
	}},
	{Name: "gross_profit", Aliases: []string{
		"GrossProfit",
	}},
	{Name: "operating_income", Aliases: []string{
		"OperatingIncomeLoss",
	}},
	{Name: "interest_expense", Aliases: []string{
		"InterestExpense",
		"InterestExpenseDebt",
		"InterestAndDebtExpense",
	}},
	{Name: "pretax_income", Aliases: []string{
		"IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest",
		"IncomeLossFromContinuingOperationsBeforeIncomeTaxesMinorityInterestAndIncomeLossFromEquityMethodInvestments",
	}},
	{Name: "income_tax_expense", Aliases: []string{
		"IncomeTaxExpenseBenefit",
	}},
	{Name: "net_income", Aliases: []string{
		"NetIncomeLoss",
		"ProfitLoss",
		"NetIncomeLossAvailableToCommonStockholdersBasic",
	}},
}

var balanceFields = []fieldDef{
	{Name: "total_assets", Instant: true, Aliases: []string{
		"Assets",
	}},
	{Name: "current_assets", Instant: true, Aliases: []string{
		"AssetsCurrent",
	}},
	{Name: "cash_and_equivalents", Instant: true, Aliases: []string{
		"CashAndCashEquivalentsAtCarryingValue",
		"CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalents",
	}},
	{Name: "receivables", Instant: true, Aliases: []string{
		"AccountsReceivableNetCurrent",
		"ReceivablesNetCurrent",
	}},
	{Name: "inventory", Instant: true, Aliases: []string{
		"InventoryNet",
	}},
	{Name: "total_liabilities", Instant: true, Aliases: []string{
		"Liabilities",
	}},
	{Name: "current_liabilities", Instant: true, Aliases: []string{
		"LiabilitiesCurrent",
	}},
	{Name: "short_term_debt", Instant: true, Aliases: []string{
		"LongTermDebtCurrent",
		"DebtCurrent",
		"ShortTermBorrowings",
	}},
	{Name: "long_term_debt", Instant: true, Aliases: []string{
		"LongTermDebtNoncurrent",
		"LongTermDebt",
	}},
	{Name: "total_equity", Instant: true, Aliases: []string{
		"StockholdersEquity",
		"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest",
	}},
}

var cashFlowFields = []fieldDef{
	{Name: "operating_cash_flow", Aliases: []string{
		"NetCashProvidedByUsedInOperatingActivities",
		"NetCashProvidedByUsedInOperatingActivitiesContinuingOperations",
	}},
	{Name: "capital_expenditure", Aliases: []string{
		"PaymentsToAcquirePropertyPlantAndEquipment",
		"PaymentsToAcquireProductiveAssets",
	}},
	{Name: "dividends_paid", Aliases: []string{
		"PaymentsOfDividends",
		"PaymentsOfDividendsCommonStock",
	}},
	{Name: "depreciation_amortization", Aliases: []string{
		"DepreciationDepletionAndAmortization",
		"DepreciationAmortizationAndAccretionNet",
		"Depreciation",
	}},
}

// Monetary units accepted for statement fields. Per-share and share-count
// units are discarded during normalization.
func isMonetaryUnit(unit string) bool {
	return unit == "USD"
}

// setIncomeField assigns a canonical field on an income statement.
// Explicit switches, no reflection.
func setIncomeField(st *models.IncomeStatement, name string, v *float64) {
	switch name {
	case "revenue":
		st.Revenue = v
	case "cost_of_revenue":
		st.CostOfRevenue = v
	case "gross_profit":
		st.GrossProfit = v
	case "operating_income":
		st.OperatingIncome = v
	case "interest_expense":
		st.InterestExpense = v
	case "pretax_income":
		st.PretaxIncome = v
	case "income_tax_expense":
		st.IncomeTaxExpense = v
	case "net_income":
		st.NetIncome = v
	}
}

func setBalanceField(st *models.BalanceSheet, name string, v *float64) {
	switch name {
	case "total_assets":
		st.TotalAssets = v
	case "current_assets":
		st.CurrentAssets = v
	case "cash_and_equivalents":
		st.CashAndEquivalents = v
	case "receivables":
		st.Receivables = v
	case "inventory":
		st.Inventory = v
	case "total_liabilities":
		st.TotalLiabilities = v
	case "current_liabilities":
		st.CurrentLiabilities = v
	case "short_term_debt":
		st.ShortTermDebt = v
	case "long_term_debt":
		st.LongTermDebt = v
	case "total_equity":
		st.TotalEquity = v
	}
}

func setCashFlowField(st *models.CashFlowStatement, name string, v *float64) {
	switch name {
	case "operating_cash_flow":
		st.OperatingCashFlow = v
	case "capital_expenditure":
		st.CapitalExpenditure = v
	case "free_cash_flow":
		st.FreeCashFlow = v
	case "dividends_paid":
		st.DividendsPaid = v
	case "depreciation_amortization":
		st.DepreciationAmortization = v
	}
}
