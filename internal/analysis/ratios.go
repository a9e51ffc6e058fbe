package analysis

import (
	"github.com/bobmcallan/fathom/internal/models"
)

// Category names used by ratios, flags, and the health scorer.
const (
	CategoryLiquidity      = "liquidity"
	CategoryLeverage       = "leverage"
	CategoryProfitability  = "profitability"
	CategoryCashGeneration = "cash_generation"
	CategoryGrowth         = "growth"
)

// ratioInputs carries the latest statement of each type. Any statement may
// be nil; ratio extraction treats a nil statement the same as null fields.
type ratioInputs struct {
	income   *models.IncomeStatement
	balance  *models.BalanceSheet
	cashFlow *models.CashFlowStatement
}

// ratioDef defines one catalogue entry. The extract function returns the
// numerator and denominator, either of which may be nil when a required
// field is missing.
type ratioDef struct {
	ID        string
	Name      string
	Formula   string
	Category  string
	Percent   bool
	Benchmark models.Benchmark
	extract   func(in ratioInputs) (num, den *float64)
}

// ratioCatalogue is the fixed set of ratios. Every entry appears in every
// analysis output, with a null value when inputs are missing.
var ratioCatalogue = []ratioDef{
	{
		ID:        "current_ratio",
		Name:      "Current Ratio",
		Formula:   "Current Assets / Current Liabilities",
		Category:  CategoryLiquidity,
		Benchmark: models.Benchmark{Poor: 1.0, Fair: 1.5, Good: 2.5},
		extract: func(in ratioInputs) (*float64, *float64) {
			if in.balance == nil {
				return nil, nil
			}
			return in.balance.CurrentAssets, in.balance.CurrentLiabilities
		},
	},
	{
		ID:        "quick_ratio",
		Name:      "Quick Ratio",
		Formula:   "(Current Assets - Inventory) / Current Liabilities",
		Category:  CategoryLiquidity,
		Benchmark: models.Benchmark{Poor: 0.5, Fair: 1.0, Good: 1.5},
		extract: func(in ratioInputs) (*float64, *float64) {
			if in.balance == nil || in.balance.CurrentAssets == nil || in.balance.Inventory == nil {
				return nil, nil
			}
			quick := *in.balance.CurrentAssets - *in.balance.Inventory
			return &quick, in.balance.CurrentLiabilities
		},
	},
	{
		ID:        "debt_to_equity",
		Name:      "Debt to Equity",
		Formula:   "Total Debt / Total Equity",
		Category:  CategoryLeverage,
		Benchmark: models.Benchmark{Poor: 2.0, Fair: 1.0, Good: 0.3, LowerIsBetter: true},
		extract: func(in ratioInputs) (*float64, *float64) {
			if in.balance == nil {
				return nil, nil
			}
			return in.balance.TotalDebt, in.balance.TotalEquity
		},
	},
	{
		ID:        "interest_coverage",
		Name:      "Interest Coverage",
		Formula:   "Operating Income / Interest Expense",
		Category:  CategoryLeverage,
		Benchmark: models.Benchmark{Poor: 1.5, Fair: 3.0, Good: 8.0},
		extract: func(in ratioInputs) (*float64, *float64) {
			if in.income == nil {
				return nil, nil
			}
			return in.income.OperatingIncome, in.income.InterestExpense
		},
	},
	{
		ID:        "gross_margin",
		Name:      "Gross Margin",
		Formula:   "Gross Profit / Revenue",
		Category:  CategoryProfitability,
		Percent:   true,
		Benchmark: models.Benchmark{Poor: 20, Fair: 35, Good: 50},
		extract: func(in ratioInputs) (*float64, *float64) {
			if in.income == nil {
				return nil, nil
			}
			return in.income.GrossProfit, in.income.Revenue
		},
	},
	{
		ID:        "operating_margin",
		Name:      "Operating Margin",
		Formula:   "Operating Income / Revenue",
		Category:  CategoryProfitability,
		Percent:   true,
		Benchmark: models.Benchmark{Poor: 5, Fair: 12, Good: 20},
		extract: func(in ratioInputs) (*float64, *float64) {
			if in.income == nil {
				return nil, nil
			}
			return in.income.OperatingIncome, in.income.Revenue
		},
	},
	{
		ID:        "net_margin",
		Name:      "Net Margin",
		Formula:   "Net Income / Revenue",
		Category:  CategoryProfitability,
		Percent:   true,
		Benchmark: models.Benchmark{Poor: 5, Fair: 10, Good: 18},
		extract: func(in ratioInputs) (*float64, *float64) {
			if in.income == nil {
				return nil, nil
			}
			return in.income.NetIncome, in.income.Revenue
		},
	},
	{
		ID:        "roe",
		Name:      "Return on Equity",
		Formula:   "Net Income / Total Equity",
		Category:  CategoryProfitability,
		Percent:   true,
		Benchmark: models.Benchmark{Poor: 8, Fair: 12, Good: 20},
		extract: func(in ratioInputs) (*float64, *float64) {
			if in.income == nil || in.balance == nil {
				return nil, nil
			}
			return in.income.NetIncome, in.balance.TotalEquity
		},
	},
	{
		ID:        "roic",
		Name:      "Return on Invested Capital",
		Formula:   "NOPAT / (Total Debt + Total Equity)",
		Category:  CategoryProfitability,
		Percent:   true,
		Benchmark: models.Benchmark{Poor: 6, Fair: 10, Good: 15},
		extract: func(in ratioInputs) (*float64, *float64) {
			nopat := computeNOPAT(in.income)
			if nopat == nil || in.balance == nil ||
				in.balance.TotalDebt == nil || in.balance.TotalEquity == nil {
				return nil, nil
			}
			capital := *in.balance.TotalDebt + *in.balance.TotalEquity
			return nopat, &capital
		},
	},
	{
		ID:        "fcf_margin",
		Name:      "Free Cash Flow Margin",
		Formula:   "Free Cash Flow / Revenue",
		Category:  CategoryCashGeneration,
		Percent:   true,
		Benchmark: models.Benchmark{Poor: 5, Fair: 10, Good: 15},
		extract: func(in ratioInputs) (*float64, *float64) {
			if in.cashFlow == nil || in.income == nil {
				return nil, nil
			}
			return in.cashFlow.FreeCashFlow, in.income.Revenue
		},
	},
	{
		ID:        "ocf_to_net_income",
		Name:      "OCF to Net Income",
		Formula:   "Operating Cash Flow / Net Income",
		Category:  CategoryCashGeneration,
		Benchmark: models.Benchmark{Poor: 0.8, Fair: 1.0, Good: 1.2},
		extract: func(in ratioInputs) (*float64, *float64) {
			if in.cashFlow == nil || in.income == nil {
				return nil, nil
			}
			return in.cashFlow.OperatingCashFlow, in.income.NetIncome
		},
	},
	{
		ID:        "asset_turnover",
		Name:      "Asset Turnover",
		Formula:   "Revenue / Total Assets",
		Category:  CategoryProfitability,
		Benchmark: models.Benchmark{Poor: 0.3, Fair: 0.6, Good: 1.0},
		extract: func(in ratioInputs) (*float64, *float64) {
			if in.income == nil || in.balance == nil {
				return nil, nil
			}
			return in.income.Revenue, in.balance.TotalAssets
		},
	},
}

// ComputeRatios evaluates the full catalogue over the latest statements.
// Every catalogue entry appears exactly once; missing inputs or a zero
// denominator yield a null value and a neutral "fair" bucket.
func ComputeRatios(s *models.Statements) []models.Ratio {
	in := ratioInputs{
		income:   s.LatestIncome(),
		balance:  s.LatestBalance(),
		cashFlow: s.LatestCashFlow(),
	}

	out := make([]models.Ratio, 0, len(ratioCatalogue))
	for _, def := range ratioCatalogue {
		bench := def.Benchmark
		r := models.Ratio{
			ID:        def.ID,
			Name:      def.Name,
			Formula:   def.Formula,
			Category:  def.Category,
			Bucket:    models.BucketFair,
			Benchmark: &bench,
		}

		num, den := def.extract(in)
		r.Numerator = num
		r.Denominator = den
		if num != nil && den != nil && *den != 0 {
			v := *num / *den
			if def.Percent {
				v *= 100
			}
			r.Value = &v
			r.Bucket = bench.Bucket(v)
		}
		out = append(out, r)
	}
	return out
}

// computeNOPAT derives net operating profit after tax using the effective
// tax rate. Null when any input is missing or pretax income is zero.
func computeNOPAT(inc *models.IncomeStatement) *float64 {
	if inc == nil || inc.OperatingIncome == nil || inc.IncomeTaxExpense == nil ||
		inc.PretaxIncome == nil || *inc.PretaxIncome == 0 {
		return nil
	}
	rate := *inc.IncomeTaxExpense / *inc.PretaxIncome
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	nopat := *inc.OperatingIncome * (1 - rate)
	return &nopat
}

// ratioByID finds a computed ratio in a slice, or nil.
func ratioByID(ratios []models.Ratio, id string) *models.Ratio {
	for i := range ratios {
		if ratios[i].ID == id {
			return &ratios[i]
		}
	}
	return nil
}
