// Package scheduler runs periodic jobs (favorite reminders, feedback requests) as supervised
// services. Every tick takes a lease "scheduler:<job>" so that only one instance runs it.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campusengage/internal/domain"
	"campusengage/internal/metrics"
)

// Job is a periodic unit of work. Run receives the tick time; Timeout bounds a single run and
// must be shorter than Period.
type Job struct {
	Name       string
	Period     time.Duration
	Timeout    time.Duration
	RunOnStart bool
	Run        func(ctx context.Context, now time.Time) error
}

// Validate checks the period and timeout of the job.
func (j Job) Validate() error {
	if j.Name == "" || j.Run == nil {
		return errors.New("job needs a name and a run function")
	}
	if j.Period <= 0 {
		return fmt.Errorf("job %s: period must be positive", j.Name)
	}
	if j.Timeout <= 0 || j.Timeout >= j.Period {
		return fmt.Errorf("job %s: timeout must be positive and shorter than the period", j.Name)
	}
	return nil
}

// Runner drives one Job on a ticker. It implements suture.Service.
type Runner struct {
	job    Job
	locker domain.Locker
	clock  Clock
	logger *slog.Logger
}

// NewRunner returns a Runner for job. A nil locker runs every tick without a lease.
func NewRunner(job Job, locker domain.Locker, clock Clock, logger *slog.Logger) *Runner {
	if clock == nil {
		clock = RealClock{}
	}
	return &Runner{
		job:    job,
		locker: locker,
		clock:  clock,
		logger: logger.With("job", job.Name),
	}
}

// Serve runs the job on every tick until ctx is done.
func (r *Runner) Serve(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.job.Period)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "job scheduled", "period", r.job.Period, "timeout", r.job.Timeout)
	if r.job.RunOnStart {
		r.RunOnce(ctx, r.clock.Now())
	}
	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "job stopped")
			return ctx.Err()
		case now := <-ticker.C():
			r.RunOnce(ctx, now)
		}
	}
}

// RunOnce executes a single tick and returns its outcome (see metrics.Outcome*). Errors and
// panics in the job are logged and recorded, never propagated, so one bad tick does not
// restart the service.
func (r *Runner) RunOnce(ctx context.Context, now time.Time) (outcome string) {
	start := r.clock.Now()
	defer func() {
		metrics.RecordJobRun(r.job.Name, outcome, r.clock.Now().Sub(start))
	}()

	if r.locker != nil {
		unlock, ok, err := r.locker.TryLock(ctx, "scheduler:"+r.job.Name, r.job.Timeout)
		if err != nil {
			r.logger.ErrorContext(ctx, "job lease failed", "error", err)
			return metrics.OutcomeError
		}
		if !ok {
			r.logger.DebugContext(ctx, "job skipped: lease held elsewhere")
			return metrics.OutcomeSkipped
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				r.logger.WarnContext(ctx, "job lease release failed", "error", err)
			}
		}()
	}

	runCtx, cancel := context.WithTimeout(ctx, r.job.Timeout)
	defer cancel()
	return r.run(runCtx, now)
}

func (r *Runner) run(ctx context.Context, now time.Time) (outcome string) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.ErrorContext(ctx, "job panicked", "panic", fmt.Sprint(p))
			outcome = metrics.OutcomePanic
		}
	}()
	if err := r.job.Run(ctx, now); err != nil {
		r.logger.ErrorContext(ctx, "job failed", "error", err)
		return metrics.OutcomeError
	}
	return metrics.OutcomeOK
}

// String implements fmt.Stringer for suture's logs.
func (r *Runner) String() string {
	return "job-" + r.job.Name
}
