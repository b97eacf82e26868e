package services

import (
	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/ports"
)

// LogReporter writes pricing reports to a logrus logger.
type LogReporter struct {
	logger *log.Logger
}

func NewLogReporter(logger *log.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(rep ports.PricingReport) {
	entry := r.logger.WithFields(log.Fields{
		"node":         rep.NodeID,
		"generated":    rep.Generated,
		"discard_prc":  rep.DiscardedPrc,
		"discard_inf":  rep.DiscardedInfeasible,
		"discard_pool": rep.DiscardedInPool,
		"accepted":     rep.Accepted,
		"origin":       rep.Origin.String(),
		"elem_pct":     rep.ElementarityPct,
		"dur_ms":       rep.Elapsed.Milliseconds(),
	})
	if !rep.Balanced() {
		entry.Error("pricing counters do not add up")
		return
	}
	entry.Debug("pricing round")
}
