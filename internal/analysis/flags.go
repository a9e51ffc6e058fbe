package analysis

import (
	"math"

	"github.com/bobmcallan/fathom/internal/models"
)

// flagRule is one deterministic detection rule. Each rule fires at most
// once per analysis run and never fires when a required input is null.
type flagRule struct {
	ID       string
	Kind     models.FlagKind
	Severity models.Severity
	Strength models.Strength
	Category string

	Title          string
	Explanation    string
	Technical      string
	Formula        string
	Threshold      float64
	Recommendation string

	// evaluate returns the observed value and whether the rule fired.
	// Null-guarded: must return (nil, false) when any input is missing.
	evaluate func(in ratioInputs) (*float64, bool)
}

var flagRules = []flagRule{
	{
		ID:             "insolvency_risk",
		Kind:           models.FlagRed,
		Severity:       models.SeverityCritical,
		Category:       CategoryLeverage,
		Title:          "Insolvency risk",
		Explanation:    "The company owes more than it owns. If liabilities exceed assets, shareholders' equity is negative and the business may be unable to cover its obligations.",
		Technical:      "Total liabilities exceed total assets on the latest balance sheet.",
		Formula:        "Total Liabilities > Total Assets",
		Threshold:      1.0,
		Recommendation: "Review the balance sheet history and any going-concern disclosures before investing.",
		evaluate: func(in ratioInputs) (*float64, bool) {
			b := in.balance
			if b == nil || b.TotalLiabilities == nil || b.TotalAssets == nil || *b.TotalAssets == 0 {
				return nil, false
			}
			v := *b.TotalLiabilities / *b.TotalAssets
			return &v, *b.TotalLiabilities > *b.TotalAssets
		},
	},
	{
		ID:             "liquidity_concern",
		Kind:           models.FlagRed,
		Severity:       models.SeverityHigh,
		Category:       CategoryLiquidity,
		Title:          "Liquidity concern",
		Explanation:    "Short-term obligations exceed short-term assets. The company may need to borrow or raise capital to pay bills due within a year.",
		Technical:      "Current ratio below 1.0 on the latest balance sheet.",
		Formula:        "Current Ratio < 1.0",
		Threshold:      1.0,
		Recommendation: "Check upcoming debt maturities and the company's access to credit facilities.",
		evaluate: func(in ratioInputs) (*float64, bool) {
			b := in.balance
			if b == nil || b.CurrentAssets == nil || b.CurrentLiabilities == nil || *b.CurrentLiabilities == 0 {
				return nil, false
			}
			v := *b.CurrentAssets / *b.CurrentLiabilities
			return &v, v < 1.0
		},
	},
	{
		ID:             "cash_burn",
		Kind:           models.FlagRed,
		Severity:       models.SeverityHigh,
		Category:       CategoryCashGeneration,
		Title:          "Negative operating cash flow",
		Explanation:    "Core operations consume cash rather than generate it. The business depends on financing or reserves to keep running.",
		Technical:      "Operating cash flow is negative for the latest period.",
		Formula:        "Operating Cash Flow < 0",
		Threshold:      0,
		Recommendation: "Estimate the runway from cash on hand and watch for dilutive capital raises.",
		evaluate: func(in ratioInputs) (*float64, bool) {
			cf := in.cashFlow
			if cf == nil || cf.OperatingCashFlow == nil {
				return nil, false
			}
			return cf.OperatingCashFlow, *cf.OperatingCashFlow < 0
		},
	},
	{
		ID:             "weak_earnings_quality",
		Kind:           models.FlagRed,
		Severity:       models.SeverityMedium,
		Category:       CategoryCashGeneration,
		Title:          "Weak earnings quality",
		Explanation:    "Reported profit is not backed by cash. When cash flow lags net income, earnings may rely on accruals that could reverse.",
		Technical:      "Operating cash flow below 80% of positive net income.",
		Formula:        "OCF / Net Income < 0.8",
		Threshold:      0.8,
		Recommendation: "Compare receivables and inventory growth against revenue growth over recent quarters.",
		evaluate: func(in ratioInputs) (*float64, bool) {
			if in.cashFlow == nil || in.income == nil ||
				in.cashFlow.OperatingCashFlow == nil || in.income.NetIncome == nil ||
				*in.income.NetIncome <= 0 {
				return nil, false
			}
			v := *in.cashFlow.OperatingCashFlow / *in.income.NetIncome
			return &v, v < 0.8
		},
	},
	{
		ID:             "high_leverage",
		Kind:           models.FlagRed,
		Severity:       models.SeverityMedium,
		Category:       CategoryLeverage,
		Title:          "High leverage",
		Explanation:    "Debt is more than double shareholders' equity. Heavy borrowing amplifies losses and interest-rate exposure.",
		Technical:      "Debt-to-equity ratio above 2.0 on the latest balance sheet.",
		Formula:        "Total Debt / Total Equity > 2.0",
		Threshold:      2.0,
		Recommendation: "Check interest coverage and the maturity schedule of outstanding debt.",
		evaluate: func(in ratioInputs) (*float64, bool) {
			b := in.balance
			if b == nil || b.TotalDebt == nil || b.TotalEquity == nil || *b.TotalEquity <= 0 {
				return nil, false
			}
			v := *b.TotalDebt / *b.TotalEquity
			return &v, v > 2.0
		},
	},
	{
		ID:             "excellent_fcf_margin",
		Kind:           models.FlagGreen,
		Strength:       models.StrengthStrong,
		Category:       CategoryCashGeneration,
		Title:          "Excellent free cash flow margin",
		Explanation:    "More than 15 cents of every revenue dollar becomes free cash, leaving plenty for dividends, buybacks, or reinvestment.",
		Technical:      "Free cash flow exceeds 15% of revenue for the latest period.",
		Threshold:      15,
		Recommendation: "Strong cash conversion supports shareholder returns and self-funded growth.",
		evaluate: func(in ratioInputs) (*float64, bool) {
			if in.cashFlow == nil || in.income == nil ||
				in.cashFlow.FreeCashFlow == nil || in.income.Revenue == nil ||
				*in.income.Revenue == 0 {
				return nil, false
			}
			v := *in.cashFlow.FreeCashFlow / *in.income.Revenue * 100
			return &v, v > 15
		},
	},
	{
		ID:             "exceptional_roe",
		Kind:           models.FlagGreen,
		Strength:       models.StrengthExceptional,
		Category:       CategoryProfitability,
		Title:          "Exceptional return on equity",
		Explanation:    "The company earns over 20% annually on shareholder capital, a mark of a highly profitable business.",
		Technical:      "Return on equity above 20% for the latest period.",
		Threshold:      20,
		Recommendation: "Verify the return is driven by margins rather than leverage.",
		evaluate: func(in ratioInputs) (*float64, bool) {
			if in.income == nil || in.balance == nil ||
				in.income.NetIncome == nil || in.balance.TotalEquity == nil ||
				*in.balance.TotalEquity <= 0 {
				return nil, false
			}
			v := *in.income.NetIncome / *in.balance.TotalEquity * 100
			return &v, v > 20
		},
	},
	{
		ID:             "superior_cash_generation",
		Kind:           models.FlagGreen,
		Strength:       models.StrengthStrong,
		Category:       CategoryCashGeneration,
		Title:          "Superior cash generation",
		Explanation:    "Operations produce more cash than reported profit, a sign of conservative accounting and healthy working capital.",
		Technical:      "Operating cash flow exceeds 120% of net income.",
		Threshold:      1.2,
		Recommendation: "High cash conversion makes reported earnings more trustworthy.",
		evaluate: func(in ratioInputs) (*float64, bool) {
			if in.cashFlow == nil || in.income == nil ||
				in.cashFlow.OperatingCashFlow == nil || in.income.NetIncome == nil ||
				*in.income.NetIncome <= 0 {
				return nil, false
			}
			v := *in.cashFlow.OperatingCashFlow / *in.income.NetIncome
			return &v, v > 1.2
		},
	},
	{
		ID:             "net_cash_position",
		Kind:           models.FlagGreen,
		Strength:       models.StrengthNotable,
		Category:       CategoryLeverage,
		Title:          "Net cash balance sheet",
		Explanation:    "Cash on hand exceeds all debt. The company could pay off every borrowing tomorrow and still have money left.",
		Technical:      "Cash and equivalents exceed total debt on the latest balance sheet.",
		Threshold:      1.0,
		Recommendation: "A net cash position gives management flexibility in downturns.",
		evaluate: func(in ratioInputs) (*float64, bool) {
			b := in.balance
			if b == nil || b.CashAndEquivalents == nil || b.TotalDebt == nil {
				return nil, false
			}
			var v float64
			if *b.TotalDebt != 0 {
				v = *b.CashAndEquivalents / *b.TotalDebt
			} else {
				v = math.Inf(1)
				if *b.CashAndEquivalents == 0 {
					v = 0
				}
			}
			fired := *b.CashAndEquivalents > *b.TotalDebt
			if math.IsInf(v, 1) {
				return b.CashAndEquivalents, fired
			}
			return &v, fired
		},
	},
}

// DetectFlags runs the rule set over the latest statements and returns red
// and green flags separately. Each rule contributes at most one flag.
func DetectFlags(s *models.Statements) (red, green []models.Flag) {
	in := ratioInputs{
		income:   s.LatestIncome(),
		balance:  s.LatestBalance(),
		cashFlow: s.LatestCashFlow(),
	}
	confidence := statementConfidence(in)

	for _, rule := range flagRules {
		value, fired := rule.evaluate(in)
		if !fired {
			continue
		}
		f := models.Flag{
			ID:             rule.ID,
			Kind:           rule.Kind,
			Severity:       rule.Severity,
			Strength:       rule.Strength,
			Title:          rule.Title,
			Explanation:    rule.Explanation,
			Technical:      rule.Technical,
			Formula:        rule.Formula,
			Value:          value,
			Threshold:      rule.Threshold,
			Recommendation: rule.Recommendation,
			Confidence:     confidence,
			Category:       rule.Category,
		}
		if rule.Kind == models.FlagRed {
			red = append(red, f)
		} else {
			green = append(green, f)
		}
	}
	return red, green
}

// statementConfidence measures input completeness as the pct of canonical
// fields that are non-null across the latest statements, rounded to the
// nearest integer.
func statementConfidence(in ratioInputs) int {
	total := 0
	present := 0
	count := func(fields ...*float64) {
		for _, f := range fields {
			total++
			if f != nil {
				present++
			}
		}
	}

	if in.income != nil {
		count(in.income.Revenue, in.income.CostOfRevenue, in.income.GrossProfit,
			in.income.OperatingIncome, in.income.InterestExpense, in.income.PretaxIncome,
			in.income.IncomeTaxExpense, in.income.NetIncome)
	}
	if in.balance != nil {
		count(in.balance.TotalAssets, in.balance.CurrentAssets, in.balance.CashAndEquivalents,
			in.balance.Receivables, in.balance.Inventory, in.balance.TotalLiabilities,
			in.balance.CurrentLiabilities, in.balance.ShortTermDebt, in.balance.LongTermDebt,
			in.balance.TotalDebt, in.balance.TotalEquity)
	}
	if in.cashFlow != nil {
		count(in.cashFlow.OperatingCashFlow, in.cashFlow.CapitalExpenditure,
			in.cashFlow.FreeCashFlow, in.cashFlow.DividendsPaid,
			in.cashFlow.DepreciationAmortization)
	}

	if total == 0 {
		return 0
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}
