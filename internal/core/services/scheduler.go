package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/turf45/courtbook/internal/core/ports"
)

type JobName string

const (
	JobDedup     JobName = "dedup"
	JobReconcile JobName = "reconcile"
)

var ErrJobInFlight = errors.New("job already running")

type SchedulerConfig struct {
	DedupSpec     string
	ReconcileSpec string
	// Budget is the expected upper bound of one run. Runs over budget are
	// logged and left to finish.
	Budget time.Duration
}

type jobState struct {
	running atomic.Bool
}

// Scheduler runs the reconciler jobs on a cron schedule and on demand. Each
// job has at most one run in flight per instance, and at most one across
// instances when a Locker is configured.
type Scheduler struct {
	reconciler *Reconciler
	locker     ports.Locker
	logger     *zap.Logger
	cfg        SchedulerConfig
	cron       *cron.Cron
	jobs       map[JobName]*jobState
}

func NewScheduler(reconciler *Reconciler, locker ports.Locker, logger *zap.Logger, cfg SchedulerConfig) *Scheduler {
	if cfg.Budget <= 0 {
		cfg.Budget = 60 * time.Second
	}

	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	return &Scheduler{
		reconciler: reconciler,
		locker:     locker,
		logger:     logger,
		cfg:        cfg,
		cron:       cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.Recover(cronLogger))),
		jobs: map[JobName]*jobState{
			JobDedup:     {},
			JobReconcile: {},
		},
	}
}

// Start registers the schedules and starts the cron loop. An empty schedule
// disables that job's schedule; on-demand runs still work.
func (s *Scheduler) Start() error {
	if s.cfg.DedupSpec != "" {
		if _, err := s.cron.AddFunc(s.cfg.DedupSpec, func() { s.scheduled(JobDedup) }); err != nil {
			return fmt.Errorf("schedule %s: %w", JobDedup, err)
		}
	}
	if s.cfg.ReconcileSpec != "" {
		if _, err := s.cron.AddFunc(s.cfg.ReconcileSpec, func() { s.scheduled(JobReconcile) }); err != nil {
			return fmt.Errorf("schedule %s: %w", JobReconcile, err)
		}
	}

	s.cron.Start()
	s.logger.Info("background jobs started",
		zap.String("dedup", s.cfg.DedupSpec),
		zap.String("reconcile", s.cfg.ReconcileSpec),
		zap.Duration("budget", s.cfg.Budget),
	)
	return nil
}

// Stop halts scheduling and returns a context that is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) Running(job JobName) bool {
	st, ok := s.jobs[job]
	return ok && st.running.Load()
}

func (s *Scheduler) RunDedup(ctx context.Context) (DedupResult, error) {
	var res DedupResult
	err := s.guard(ctx, JobDedup, func(ctx context.Context) error {
		var err error
		res, err = s.reconciler.CleanupDuplicates(ctx)
		return err
	})
	return res, err
}

func (s *Scheduler) RunReconcile(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult
	err := s.guard(ctx, JobReconcile, func(ctx context.Context) error {
		var err error
		res, err = s.reconciler.ReconcilePayments(ctx)
		return err
	})
	return res, err
}

func (s *Scheduler) scheduled(job JobName) {
	var err error
	switch job {
	case JobDedup:
		_, err = s.RunDedup(context.Background())
	case JobReconcile:
		_, err = s.RunReconcile(context.Background())
	}

	if errors.Is(err, ErrJobInFlight) {
		s.logger.Debug("previous run still in flight, skipping", zap.String("job", string(job)))
		return
	}
	if err != nil {
		s.logger.Error("scheduled job failed", zap.String("job", string(job)), zap.Error(err))
	}
}

func (s *Scheduler) guard(ctx context.Context, job JobName, fn func(context.Context) error) error {
	st, ok := s.jobs[job]
	if !ok {
		return fmt.Errorf("unknown job %q", job)
	}
	if !st.running.CompareAndSwap(false, true) {
		return ErrJobInFlight
	}
	defer st.running.Store(false)

	// a started run is never cancelled by its caller going away
	runCtx := context.WithoutCancel(ctx)

	if s.locker != nil {
		key := "courtbook:job:" + string(job)
		token, acquired, err := s.locker.TryLock(runCtx, key, 2*s.cfg.Budget)
		switch {
		case err != nil:
			s.logger.Warn("job lock unavailable, using local guard only", zap.String("job", string(job)), zap.Error(err))
		case !acquired:
			return ErrJobInFlight
		default:
			defer func() {
				if err := s.locker.Unlock(runCtx, key, token); err != nil {
					s.logger.Warn("release job lock failed", zap.String("job", string(job)), zap.Error(err))
				}
			}()
		}
	}

	start := time.Now()
	overrun := time.AfterFunc(s.cfg.Budget, func() {
		s.logger.Warn("job exceeded its time budget, letting it finish",
			zap.String("job", string(job)),
			zap.Duration("budget", s.cfg.Budget),
		)
	})
	defer overrun.Stop()

	err := fn(runCtx)
	s.logger.Info("job finished",
		zap.String("job", string(job)),
		zap.Duration("took", time.Since(start)),
		zap.Error(err),
	)
	return err
}
