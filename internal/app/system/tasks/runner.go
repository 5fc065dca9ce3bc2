// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/stratasched/internal/app/system/metrics"
	"go.uber.org/zap"
)

// ErrUnknownJob is returned by RunOnce for a name that was never registered.
var ErrUnknownJob = errors.New("tasks: unknown job")

// Job is a periodic background task.
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single run. Zero means the run is bounded only by
	// shutdown.
	Timeout time.Duration
	// Delayed skips the run at Start; the first run happens after one
	// Interval.
	Delayed bool
	Run     func(ctx context.Context) error
}

// Runner runs registered jobs on their intervals until Stop.
type Runner struct {
	logger *zap.Logger
	jobs   []Job
	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu      sync.Mutex
	running map[string]time.Time // job name -> run start
}

// New creates a Runner.
func New(logger *zap.Logger) *Runner {
	return &Runner{
		logger:  logger,
		running: make(map[string]time.Time),
	}
}

// Register adds a job. Jobs registered after Start are not run.
func (r *Runner) Register(job Job) {
	r.jobs = append(r.jobs, job)
}

// Start launches one goroutine per job.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	names := make([]string, 0, len(r.jobs))
	for _, job := range r.jobs {
		names = append(names, job.Name)
		r.wg.Add(1)
		go r.loop(ctx, job)
	}

	r.logger.Info("background task runner started", zap.Strings("jobs", names))
}

// Stop cancels every job and waits for the running ones to return, up to
// ctx's deadline. On timeout it logs the jobs still running and returns
// ctx.Err().
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("background task runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("background task runner shutdown timed out",
			zap.Strings("jobs_still_running", r.Running()))
		return ctx.Err()
	}
}

// Running returns the names of the jobs executing right now, sorted.
func (r *Runner) Running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.running))
	for name := range r.running {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	if !job.Delayed {
		r.execute(ctx, job)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.execute(ctx, job)
		}
	}
}

func (r *Runner) execute(ctx context.Context, job Job) {
	start := time.Now()
	r.mu.Lock()
	r.running[job.Name] = start
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.running, job.Name)
		r.mu.Unlock()
	}()

	runCtx := ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	err := job.Run(runCtx)
	d := time.Since(start)
	switch {
	case err == nil:
		metrics.ObserveJob(job.Name, "ok", d)
		r.logger.Debug("job completed", zap.String("job", job.Name), zap.Duration("duration", d))
	case ctx.Err() != nil:
		// Shutdown, not a failure.
		metrics.ObserveJob(job.Name, "cancelled", d)
		r.logger.Debug("job cancelled", zap.String("job", job.Name), zap.Duration("duration", d))
	default:
		metrics.ObserveJob(job.Name, "error", d)
		r.logger.Error("job failed",
			zap.String("job", job.Name),
			zap.Duration("duration", d),
			zap.Error(err))
	}
}

// RunOnce runs the named job immediately on the caller's goroutine.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	for _, job := range r.jobs {
		if job.Name == name {
			return job.Run(ctx)
		}
	}
	return ErrUnknownJob
}
