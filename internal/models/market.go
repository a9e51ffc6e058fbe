package models

import (
	"time"
)

// Quote holds a market snapshot used for valuation and technical inputs.
type Quote struct {
	Symbol            string    `json:"symbol"`
	Price             float64   `json:"price"`
	PreviousClose     float64   `json:"previous_close"`
	Change            float64   `json:"change"`
	ChangePct         float64   `json:"change_pct"`
	High52Week        float64   `json:"high_52_week"`
	Low52Week         float64   `json:"low_52_week"`
	Volume            int64     `json:"volume"`
	SharesOutstanding int64     `json:"shares_outstanding"`
	MarketCap         float64   `json:"market_cap"`
	Timestamp         time.Time `json:"timestamp"`
}

// MoatScore is the externally computed competitive-advantage score. Fathom
// consumes it but never computes it.
type MoatScore struct {
	Symbol       string    `json:"symbol"`
	OverallScore float64   `json:"overall_score"` // 0-100
	Summary      string    `json:"summary,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}
