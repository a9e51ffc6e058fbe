package common

import "time"

// Freshness TTLs for stored data components
const (
	FreshnessFacts     = 7 * 24 * time.Hour  // raw company facts; filings are slow-moving
	FreshnessAnalysis  = 24 * time.Hour      // normalized statements + ratios/flags/health
	FreshnessQuote     = 1 * time.Hour       // market quote used for valuation inputs
	FreshnessMoat      = 30 * 24 * time.Hour // externally computed moat score
	FreshnessComposite = 1 * time.Hour       // tracks quote freshness
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
