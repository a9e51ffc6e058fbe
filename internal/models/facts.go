// Package models defines data structures for Fathom
package models

import (
	"time"
)

// Observation is a single reported value for an accounting concept, as
// published in a regulatory filing. A concept usually carries many
// observations covering overlapping periods (restatements, amendments,
// comparative columns in later filings).
type Observation struct {
	Start        time.Time `json:"start"` // zero for instant (balance sheet) concepts
	End          time.Time `json:"end"`
	Unit         string    `json:"unit"`
	Value        float64   `json:"value"`
	Filed        time.Time `json:"filed"`
	FiscalYear   int       `json:"fiscal_year"`
	FiscalPeriod string    `json:"fiscal_period"` // "FY", "Q1".."Q4"
	Form         string    `json:"form"`          // "10-K", "10-Q", "8-K", ...
}

// IsInstant reports whether the observation is a point-in-time value.
func (o Observation) IsInstant() bool {
	return o.Start.IsZero()
}

// PeriodDays returns the covered period length in days, or 0 for instants.
func (o Observation) PeriodDays() int {
	if o.IsInstant() {
		return 0
	}
	return int(o.End.Sub(o.Start).Hours() / 24)
}

// CompanyFacts holds every reported fact for a company, keyed by concept
// name (e.g. "Revenues", "Assets"). This is the raw input to normalization.
type CompanyFacts struct {
	Symbol      string                   `json:"symbol"`
	CIK         string                   `json:"cik"`
	EntityName  string                   `json:"entity_name"`
	Facts       map[string][]Observation `json:"facts"`
	RetrievedAt time.Time                `json:"retrieved_at"`
}
