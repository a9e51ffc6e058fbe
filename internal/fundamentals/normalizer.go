package fundamentals

import (
	"math"
	"sort"
	"time"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/models"
)

// Period-length bounds in days. Fiscal calendars drift (52/53-week years,
// 13-week quarters), so cadence matching uses ranges rather than exact
// lengths. A 9-month cumulative value never fits either range and can only
// enter a quarterly slot through cumulative subtraction.
const (
	annualMinDays  = 330
	annualMaxDays  = 390
	quarterMinDays = 75
	quarterMaxDays = 105

	// Cumulative (year-to-date) periods run from 2 quarters up to a full year.
	cumulativeMinDays = 150
	cumulativeMaxDays = 390

	maxAnnualPeriods    = 10
	maxQuarterlyPeriods = 12
)

type cadence int

const (
	cadenceAnnual cadence = iota
	cadenceQuarterly
)

// Normalizer converts raw company facts into canonical statement series.
// Failures are per-field: a bad or missing concept leaves that field null
// and never aborts the statement.
type Normalizer struct {
	logger *common.Logger
}

// NewNormalizer creates a new fact normalizer.
func NewNormalizer(logger *common.Logger) *Normalizer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Normalizer{logger: logger}
}

// Normalize builds the three canonical statement series from raw facts.
// The result is never nil; with unusable input it is simply empty.
func (n *Normalizer) Normalize(facts *models.CompanyFacts) *models.Statements {
	s := &models.Statements{
		GeneratedAt: time.Now(),
	}
	if facts == nil {
		return s
	}
	s.Symbol = facts.Symbol

	s.Income.Annual = n.buildIncome(facts, cadenceAnnual)
	s.Income.Quarterly = n.buildIncome(facts, cadenceQuarterly)
	s.Balance.Annual = n.buildBalance(facts, cadenceAnnual)
	s.Balance.Quarterly = n.buildBalance(facts, cadenceQuarterly)
	s.CashFlow.Annual = n.buildCashFlow(facts, cadenceAnnual)
	s.CashFlow.Quarterly = n.buildCashFlow(facts, cadenceQuarterly)

	s.Income.TTM = BuildIncomeTTM(s.Income.Quarterly)
	s.CashFlow.TTM = BuildCashFlowTTM(s.CashFlow.Quarterly)

	s.Completeness = completeness(s)

	n.logger.Debug().
		Str("symbol", facts.Symbol).
		Int("annual_income", len(s.Income.Annual)).
		Int("quarterly_income", len(s.Income.Quarterly)).
		Float64("completeness", s.Completeness).
		Msg("Normalized statements")

	return s
}

// buildIncome assembles the income statement series for one cadence.
func (n *Normalizer) buildIncome(facts *models.CompanyFacts, c cadence) []*models.IncomeStatement {
	ends := n.collectFlowEnds(facts, incomeFields, c)
	var out []*models.IncomeStatement

	for _, end := range ends {
		st := &models.IncomeStatement{EndDate: end}
		populated := false

		for _, f := range incomeFields {
			val, src := n.pickFlowValue(facts, f, end, c)
			if val == nil {
				continue
			}
			setIncomeField(st, f.Name, val)
			populated = true
			if st.FiscalYear == 0 {
				st.StartDate = src.Start
				st.FiscalYear = src.FiscalYear
				st.FiscalPeriod = src.FiscalPeriod
			}
		}

		if !populated {
			continue
		}
		deriveIncomeFields(st)
		out = append(out, st)
		if c == cadenceAnnual && len(out) >= maxAnnualPeriods {
			break
		}
		if c == cadenceQuarterly && len(out) >= maxQuarterlyPeriods {
			break
		}
	}
	return out
}

// buildBalance assembles the balance sheet series for one cadence. Balance
// sheet concepts are instants; the fiscal-year-end snapshot serves both the
// annual series and the Q4 quarterly slot.
func (n *Normalizer) buildBalance(facts *models.CompanyFacts, c cadence) []*models.BalanceSheet {
	ends := n.collectInstantEnds(facts, balanceFields, c)
	var out []*models.BalanceSheet

	for _, end := range ends {
		st := &models.BalanceSheet{EndDate: end}
		populated := false

		for _, f := range balanceFields {
			val, src := n.pickInstantValue(facts, f, end)
			if val == nil {
				continue
			}
			setBalanceField(st, f.Name, val)
			populated = true
			if st.FiscalYear == 0 {
				st.FiscalYear = src.FiscalYear
				st.FiscalPeriod = src.FiscalPeriod
			}
		}

		if !populated {
			continue
		}
		deriveBalanceFields(st)
		out = append(out, st)
		if c == cadenceAnnual && len(out) >= maxAnnualPeriods {
			break
		}
		if c == cadenceQuarterly && len(out) >= maxQuarterlyPeriods {
			break
		}
	}
	return out
}

// buildCashFlow assembles the cash flow series. Interim filings report cash
// flows cumulatively, so quarterly values almost always come from
// cumulative subtraction.
func (n *Normalizer) buildCashFlow(facts *models.CompanyFacts, c cadence) []*models.CashFlowStatement {
	ends := n.collectFlowEnds(facts, cashFlowFields, c)
	var out []*models.CashFlowStatement

	for _, end := range ends {
		st := &models.CashFlowStatement{EndDate: end}
		populated := false

		for _, f := range cashFlowFields {
			val, src := n.pickFlowValue(facts, f, end, c)
			if val == nil {
				continue
			}
			setCashFlowField(st, f.Name, val)
			populated = true
			if st.FiscalYear == 0 {
				st.StartDate = src.Start
				st.FiscalYear = src.FiscalYear
				st.FiscalPeriod = src.FiscalPeriod
			}
		}

		if !populated {
			continue
		}
		deriveCashFlowFields(st)
		out = append(out, st)
		if c == cadenceAnnual && len(out) >= maxAnnualPeriods {
			break
		}
		if c == cadenceQuarterly && len(out) >= maxQuarterlyPeriods {
			break
		}
	}
	return out
}

// collectFlowEnds gathers candidate period-end dates for duration concepts,
// sorted most recent first with duplicates removed. For the quarterly
// cadence, cumulative period ends are included so that slots only reachable
// by subtraction (Q4, cumulative-only filers) still get a target.
func (n *Normalizer) collectFlowEnds(facts *models.CompanyFacts, fields []fieldDef, c cadence) []time.Time {
	seen := make(map[time.Time]bool)
	var ends []time.Time

	add := func(end time.Time) {
		day := end.Truncate(24 * time.Hour)
		if !seen[day] {
			seen[day] = true
			ends = append(ends, day)
		}
	}

	for _, f := range fields {
		for _, alias := range f.Aliases {
			for _, o := range facts.Facts[alias] {
				if o.IsInstant() || !isMonetaryUnit(o.Unit) {
					continue
				}
				days := o.PeriodDays()
				switch c {
				case cadenceAnnual:
					if days >= annualMinDays && days <= annualMaxDays {
						add(o.End)
					}
				case cadenceQuarterly:
					if days >= quarterMinDays && days <= quarterMaxDays {
						add(o.End)
					} else if days >= cumulativeMinDays && days <= cumulativeMaxDays {
						add(o.End)
					}
				}
			}
		}
	}

	sort.Slice(ends, func(i, j int) bool { return ends[i].After(ends[j]) })
	return ends
}

// collectInstantEnds gathers candidate period-end dates for instant
// concepts. Annual cadence keeps fiscal-year ends only.
func (n *Normalizer) collectInstantEnds(facts *models.CompanyFacts, fields []fieldDef, c cadence) []time.Time {
	seen := make(map[time.Time]bool)
	var ends []time.Time

	for _, f := range fields {
		for _, alias := range f.Aliases {
			for _, o := range facts.Facts[alias] {
				if !o.IsInstant() || !isMonetaryUnit(o.Unit) {
					continue
				}
				if c == cadenceAnnual && o.FiscalPeriod != "FY" {
					continue
				}
				day := o.End.Truncate(24 * time.Hour)
				if !seen[day] {
					seen[day] = true
					ends = append(ends, day)
				}
			}
		}
	}

	sort.Slice(ends, func(i, j int) bool { return ends[i].After(ends[j]) })
	return ends
}

// pickFlowValue resolves one duration field for a target period end.
// Aliases are tried in priority order; within an alias the most recently
// filed observation covering the exact period wins. When the quarterly
// cadence finds no discrete quarter, the value is derived by subtracting
// the prior cumulative period from the cumulative period ending at the
// target date.
func (n *Normalizer) pickFlowValue(facts *models.CompanyFacts, f fieldDef, end time.Time, c cadence) (*float64, *models.Observation) {
	for _, alias := range f.Aliases {
		obs := facts.Facts[alias]
		if len(obs) == 0 {
			continue
		}

		if c == cadenceAnnual {
			if best := bestObservation(obs, end, annualMinDays, annualMaxDays); best != nil {
				v := best.Value
				return &v, best
			}
			continue
		}

		// Quarterly: direct quarter first.
		if best := bestObservation(obs, end, quarterMinDays, quarterMaxDays); best != nil {
			v := best.Value
			return &v, best
		}

		// Cumulative derivation: value = YTD(end) - YTD(one quarter earlier).
		if v, src := deriveDiscreteQuarter(obs, end); v != nil {
			return v, src
		}
	}
	return nil, nil
}

// pickInstantValue resolves one point-in-time field for a target date.
func (n *Normalizer) pickInstantValue(facts *models.CompanyFacts, f fieldDef, end time.Time) (*float64, *models.Observation) {
	for _, alias := range f.Aliases {
		obs := facts.Facts[alias]
		if len(obs) == 0 {
			continue
		}
		if best := bestInstant(obs, end); best != nil {
			v := best.Value
			return &v, best
		}
	}
	return nil, nil
}

// bestObservation returns the most authoritative duration observation
// ending at end with a period length inside [minDays, maxDays], or nil.
// Latest filing date wins; ties prefer the longer period, then annual
// filings over interim ones.
func bestObservation(obs []models.Observation, end time.Time, minDays, maxDays int) *models.Observation {
	var best *models.Observation
	for i := range obs {
		o := &obs[i]
		if o.IsInstant() || !isMonetaryUnit(o.Unit) || !sameDay(o.End, end) {
			continue
		}
		days := o.PeriodDays()
		if days < minDays || days > maxDays {
			continue
		}
		if best == nil || moreAuthoritative(o, best) {
			best = o
		}
	}
	return best
}

// bestInstant returns the most authoritative instant observation at end.
func bestInstant(obs []models.Observation, end time.Time) *models.Observation {
	var best *models.Observation
	for i := range obs {
		o := &obs[i]
		if !o.IsInstant() || !isMonetaryUnit(o.Unit) || !sameDay(o.End, end) {
			continue
		}
		if best == nil || moreAuthoritative(o, best) {
			best = o
		}
	}
	return best
}

// moreAuthoritative reports whether a supersedes b for the same period.
func moreAuthoritative(a, b *models.Observation) bool {
	if !a.Filed.Equal(b.Filed) {
		return a.Filed.After(b.Filed)
	}
	if a.PeriodDays() != b.PeriodDays() {
		return a.PeriodDays() > b.PeriodDays()
	}
	if (a.Form == "10-K") != (b.Form == "10-K") {
		return a.Form == "10-K"
	}
	return false
}

// deriveDiscreteQuarter computes a discrete quarterly flow from cumulative
// observations: the cumulative period ending at end minus the cumulative
// period sharing its start date and ending one quarter earlier. Returns nil
// when either side is missing; a cumulative value is never placed into a
// quarterly slot directly.
func deriveDiscreteQuarter(obs []models.Observation, end time.Time) (*float64, *models.Observation) {
	cum := bestObservation(obs, end, cumulativeMinDays, cumulativeMaxDays)
	if cum == nil {
		return nil, nil
	}

	var prior *models.Observation
	for i := range obs {
		o := &obs[i]
		if o.IsInstant() || !isMonetaryUnit(o.Unit) || !sameDay(o.Start, cum.Start) {
			continue
		}
		gap := cum.PeriodDays() - o.PeriodDays()
		if gap < quarterMinDays || gap > quarterMaxDays {
			continue
		}
		if prior == nil || moreAuthoritative(o, prior) {
			prior = o
		}
	}
	if prior == nil {
		return nil, nil
	}

	v := cum.Value - prior.Value
	src := *cum
	src.Start = prior.End
	if cum.FiscalPeriod == "FY" {
		src.FiscalPeriod = "Q4"
	}
	return &v, &src
}

// sameDay compares dates ignoring the time-of-day component.
func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// deriveIncomeFields fills fields computable from reported siblings.
// Derivation requires every input present; nulls propagate.
func deriveIncomeFields(st *models.IncomeStatement) {
	if st.GrossProfit == nil && st.Revenue != nil && st.CostOfRevenue != nil {
		gp := *st.Revenue - *st.CostOfRevenue
		st.GrossProfit = &gp
	}
}

// deriveBalanceFields fills total debt from its reported components. Debt
// is the one derivation where a missing component means "none reported"
// rather than unknown, so the sum uses whichever parts exist, but only
// when at least one part was actually reported.
func deriveBalanceFields(st *models.BalanceSheet) {
	if st.TotalDebt == nil && (st.ShortTermDebt != nil || st.LongTermDebt != nil) {
		var total float64
		if st.ShortTermDebt != nil {
			total += *st.ShortTermDebt
		}
		if st.LongTermDebt != nil {
			total += *st.LongTermDebt
		}
		st.TotalDebt = &total
	}
}

func deriveCashFlowFields(st *models.CashFlowStatement) {
	if st.FreeCashFlow == nil && st.OperatingCashFlow != nil && st.CapitalExpenditure != nil {
		fcf := *st.OperatingCashFlow - *st.CapitalExpenditure
		st.FreeCashFlow = &fcf
	}
}

// completeness measures the pct of canonical fields that are non-null
// across the latest statement of each type, rounded to one decimal.
func completeness(s *models.Statements) float64 {
	total := 0
	present := 0

	if inc := s.LatestIncome(); inc != nil {
		fields := []*float64{
			inc.Revenue, inc.CostOfRevenue, inc.GrossProfit, inc.OperatingIncome,
			inc.InterestExpense, inc.PretaxIncome, inc.IncomeTaxExpense, inc.NetIncome,
		}
		total += len(fields)
		present += countPresent(fields)
	}
	if bal := s.LatestBalance(); bal != nil {
		fields := []*float64{
			bal.TotalAssets, bal.CurrentAssets, bal.CashAndEquivalents, bal.Receivables,
			bal.Inventory, bal.TotalLiabilities, bal.CurrentLiabilities,
			bal.ShortTermDebt, bal.LongTermDebt, bal.TotalDebt, bal.TotalEquity,
		}
		total += len(fields)
		present += countPresent(fields)
	}
	if cf := s.LatestCashFlow(); cf != nil {
		fields := []*float64{
			cf.OperatingCashFlow, cf.CapitalExpenditure, cf.FreeCashFlow,
			cf.DividendsPaid, cf.DepreciationAmortization,
		}
		total += len(fields)
		present += countPresent(fields)
	}

	if total == 0 {
		return 0
	}
	pct := float64(present) / float64(total) * 100
	return math.Round(pct*10) / 10
}

func countPresent(fields []*float64) int {
	n := 0
	for _, f := range fields {
		if f != nil {
			n++
		}
	}
	return n
}
