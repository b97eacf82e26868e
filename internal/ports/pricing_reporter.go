package ports

import (
	"time"

	"github.com/daunfamily/maritime-vrp/internal/domain"
)

// PricingReport counts what happened to the candidate routes of one pricing
// round. Generated always equals the sum of the four outcomes.
type PricingReport struct {
	NodeID              string
	Generated           int
	DiscardedPrc        int
	DiscardedInfeasible int
	DiscardedInPool     int
	Accepted            int
	Origin              domain.ColumnOrigin
	ElementarityPct     float64
	Elapsed             time.Duration
}

// Balanced reports whether every generated candidate has an outcome.
func (r PricingReport) Balanced() bool {
	return r.Generated == r.DiscardedPrc+r.DiscardedInfeasible+r.DiscardedInPool+r.Accepted
}

// PricingReporter is the diagnostics sink of the pricing subproblem.
type PricingReporter interface {
	Report(r PricingReport)
}
