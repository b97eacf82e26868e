package obs

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ctxKey string

const RunIDKey ctxKey = "run_id"

// WithRunID tags ctx with a fresh run id unless it already carries one.
func WithRunID(ctx context.Context) context.Context {
	if id := RunID(ctx); id != "" {
		return ctx
	}
	return context.WithValue(ctx, RunIDKey, uuid.NewString())
}

// RunID returns the run id of ctx, or "" if there is none.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(RunIDKey).(string)
	return id
}

// Time logs the duration of an operation. Use as:
//
//	defer obs.Time(ctx, "op")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	entry := log.WithFields(log.Fields{"run_id": RunID(ctx), "op": name})

	return func(errp *error) {
		entry = entry.WithField("dur_ms", time.Since(start).Milliseconds())

		if errp != nil && *errp != nil {
			entry.WithError(*errp).Warn("operation failed")
			return
		}
		entry.Debug("operation done")
	}
}
