package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Job is a unit of periodic background work.
type Job func(ctx context.Context) error

// RunnerConfig configures retry behaviour and instrumentation.
type RunnerConfig struct {
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
	Registerer prometheus.Registerer
}

// Runner schedules named jobs on fixed intervals until stopped.
type Runner struct {
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	runs     *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewRunner builds a runner. Metrics are registered only when a Registerer is supplied.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := &Runner{
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_job_runs_total",
			Help: "Total background job runs",
		}, []string{"job"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_job_errors_total",
			Help: "Total background job errors",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registrar_job_duration_seconds",
			Help:    "Background job duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
	}
	if cfg.Registerer != nil {
		cfg.Registerer.MustRegister(r.runs, r.errors, r.duration)
	}
	return r
}

// Start enables scheduling. Safe to call once.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.started = true
}

// Stop cancels scheduled jobs and waits for in-flight runs to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.mu.Unlock()
	r.wg.Wait()
	r.logger.Sugar().Infow("job runner stopped")
}

// Every runs fn each interval until the runner stops.
func (r *Runner) Every(interval time.Duration, name string, fn Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return fmt.Errorf("runner not started, cannot schedule %s", name)
	}
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}

	ctx := r.ctx
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				_ = r.RunOnce(ctx, name, fn)
			}
		}
	}()
	r.logger.Sugar().Infow("job scheduled", "job", name, "interval", interval.String())
	return nil
}

// RunOnce executes fn immediately, retrying failures up to the configured limit.
func (r *Runner) RunOnce(ctx context.Context, name string, fn Job) error {
	start := time.Now()
	defer func() {
		r.runs.WithLabelValues(name).Inc()
		r.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	var err error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == r.maxRetries {
			break
		}
		r.logger.Sugar().Warnw("job failed, retrying", "job", name, "attempt", attempt+1, "error", err)

		timer := time.NewTimer(r.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.errors.WithLabelValues(name).Inc()
			return ctx.Err()
		case <-timer.C:
		}
	}

	r.errors.WithLabelValues(name).Inc()
	r.logger.Sugar().Errorw("job exceeded retries", "job", name, "error", err)
	return err
}
