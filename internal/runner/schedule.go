package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// Schedule runs a snapshot on every tick of the standard five-field cron spec
// until ctx is done. A tick that arrives while a run is still in progress is
// skipped. A failed run is logged and the schedule continues.
func (r *Runner) Schedule(ctx context.Context, spec string) error {
	c := cron.New(cron.WithLocation(r.loc))

	var mu sync.Mutex
	_, err := c.AddFunc(spec, func() {
		if !mu.TryLock() {
			r.logger.Warn("previous snapshot still running, skipping tick")
			return
		}
		defer mu.Unlock()

		summary, err := r.Run(ctx)
		if err != nil {
			r.logger.Error("scheduled snapshot failed", "error", err)
			return
		}
		r.logger.Info("scheduled snapshot complete",
			"rows", summary.Rows,
			"failed", summary.Failed)
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}

	c.Start()
	r.logger.Info("snapshot scheduler started", "schedule", spec, "timezone", r.loc.String())

	<-ctx.Done()

	// Stop returns a context that is done once running jobs have finished.
	<-c.Stop().Done()
	r.logger.Info("snapshot scheduler stopped")

	return nil
}
