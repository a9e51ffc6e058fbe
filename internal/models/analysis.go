package models

import (
	"time"
)

// ScoreBucket is the qualitative rating of a ratio against its benchmark.
type ScoreBucket string

const (
	BucketPoor      ScoreBucket = "poor"
	BucketFair      ScoreBucket = "fair"
	BucketGood      ScoreBucket = "good"
	BucketExcellent ScoreBucket = "excellent"
)

// Benchmark defines bucket boundaries for a ratio. For a higher-is-better
// ratio, value < Poor scores poor, < Fair scores fair, < Good scores good,
// and >= Good scores excellent. LowerIsBetter inverts the comparison.
type Benchmark struct {
	Poor          float64 `json:"poor"`
	Fair          float64 `json:"fair"`
	Good          float64 `json:"good"`
	LowerIsBetter bool    `json:"lower_is_better"`
}

// Bucket places a value into its qualitative bucket.
func (b Benchmark) Bucket(v float64) ScoreBucket {
	if b.LowerIsBetter {
		switch {
		case v > b.Poor:
			return BucketPoor
		case v > b.Fair:
			return BucketFair
		case v > b.Good:
			return BucketGood
		default:
			return BucketExcellent
		}
	}
	switch {
	case v < b.Poor:
		return BucketPoor
	case v < b.Fair:
		return BucketFair
	case v < b.Good:
		return BucketGood
	default:
		return BucketExcellent
	}
}

// Ratio is one computed entry from the fixed ratio catalogue. Value is nil
// iff a required input was missing or the denominator was zero; the ratio
// still appears in output with a neutral bucket.
type Ratio struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Formula     string      `json:"formula"`
	Value       *float64    `json:"value"`
	Numerator   *float64    `json:"numerator"`
	Denominator *float64    `json:"denominator"`
	Bucket      ScoreBucket `json:"bucket"`
	Trend       string      `json:"trend,omitempty"` // "up", "down", "flat" when annual history allows
	Benchmark   *Benchmark  `json:"benchmark,omitempty"`
	Category    string      `json:"category"` // health-score category this ratio feeds
}

// FlagKind distinguishes risk flags from strength flags.
type FlagKind string

const (
	FlagRed   FlagKind = "red"
	FlagGreen FlagKind = "green"
)

// Severity grades red flags.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Strength grades green flags.
type Strength string

const (
	StrengthExceptional Strength = "exceptional"
	StrengthStrong      Strength = "strong"
	StrengthNotable     Strength = "notable"
)

// Flag is a rule-triggered qualitative signal. Confidence reflects the data
// completeness of the inputs the rule read (pct of required fields that were
// non-null), not statistical certainty.
type Flag struct {
	ID             string   `json:"id"`
	Kind           FlagKind `json:"kind"`
	Severity       Severity `json:"severity,omitempty"` // red flags only
	Strength       Strength `json:"strength,omitempty"` // green flags only
	Title          string   `json:"title"`
	Explanation    string   `json:"explanation"`
	Technical      string   `json:"technical"`
	Formula        string   `json:"formula,omitempty"` // red flags only
	Value          *float64 `json:"value"`
	Threshold      float64  `json:"threshold"`
	Recommendation string   `json:"recommendation"`
	Confidence     int      `json:"confidence"` // 0-100
	Category       string   `json:"category"`
}

// TrendPoint is one chronological observation in a metric trend.
type TrendPoint struct {
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
	ChangePct *float64  `json:"change_pct"` // nil for the first point or a zero prior value
}

// Trend captures direction and compound growth for a metric across the
// annual history. CAGR is nil unless two same-sign non-zero endpoints exist.
type Trend struct {
	Metric    string       `json:"metric"`
	Direction string       `json:"direction"` // "up", "down", "flat"
	CAGR      *float64     `json:"cagr"`      // fraction, e.g. 0.12 = 12% p.a.
	Points    []TrendPoint `json:"points"`
}

// CategoryScore is one weighted component of the health score.
type CategoryScore struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`  // 0-100
	Weight float64 `json:"weight"` // pct, all categories sum to 100
}

// HealthScore is the weighted aggregate of ratio buckets and flags.
type HealthScore struct {
	Overall       float64         `json:"overall"` // 0-100
	Grade         string          `json:"grade"`   // "A+" .. "F"
	Categories    []CategoryScore `json:"categories"`
	KeyStrengths  []Flag          `json:"key_strengths"`
	KeyWeaknesses []Flag          `json:"key_weaknesses"`
}

// Recommendation is the action band derived from the composite score.
type Recommendation string

const (
	RecStrongBuy  Recommendation = "strong_buy"
	RecBuy        Recommendation = "buy"
	RecHold       Recommendation = "hold"
	RecSell       Recommendation = "sell"
	RecStrongSell Recommendation = "strong_sell"
)

// CompositeScore combines financial health with externally supplied moat,
// valuation and technical scores. It is recomputed wholesale whenever any
// input changes, never mutated in place.
type CompositeScore struct {
	Symbol          string         `json:"symbol"`
	BusinessQuality float64        `json:"business_quality"` // 0-60
	Timing          float64        `json:"timing"`           // 0-40
	Overall         float64        `json:"overall"`          // 0-100
	FinancialHealth float64        `json:"financial_health"` // input sub-score 0-100
	Moat            float64        `json:"moat"`             // input sub-score 0-100
	Growth          float64        `json:"growth"`           // input sub-score 0-100
	Valuation       float64        `json:"valuation"`        // input sub-score 0-100
	Technical       float64        `json:"technical"`        // input sub-score 0-100
	Recommendation  Recommendation `json:"recommendation"`
	Commentary      string         `json:"commentary,omitempty"` // optional AI enrichment
	GeneratedAt     time.Time      `json:"generated_at"`
}

// StockAnalysis is the full analysis output for one symbol: normalized
// statements plus every derived metric.
type StockAnalysis struct {
	Symbol      string       `json:"symbol"`
	Statements  *Statements  `json:"statements"`
	Ratios      []Ratio      `json:"ratios"`
	RedFlags    []Flag       `json:"red_flags"`
	GreenFlags  []Flag       `json:"green_flags"`
	Trends      []Trend      `json:"trends"`
	HealthScore *HealthScore `json:"health_score"`
	GeneratedAt time.Time    `json:"generated_at"`
}
