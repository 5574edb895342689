package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// OutcomeWorker processes dispatch outcome jobs from the River queue.
// For now it records the outcome in the structured log; future versions
// will feed delivery stats and operator digests.
type OutcomeWorker struct {
	river.WorkerDefaults[OutcomeJobArgs]
}

// Work processes a single outcome job.
func (w *OutcomeWorker) Work(ctx context.Context, job *river.Job[OutcomeJobArgs]) error {
	slog.InfoContext(ctx, "notification dispatched",
		"scenario", job.Args.Scenario,
		"listing_id", job.Args.ListingID,
		"recipients", job.Args.Recipients,
		"delivered", job.Args.Delivered,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
