package scheduler

import (
	"context"
	"errors"
	"time"

	cartdomain "github.com/nahomjim91/spice-marketplace/internal/cart/domain"
	cartservice "github.com/nahomjim91/spice-marketplace/internal/cart/service"
	"github.com/nahomjim91/spice-marketplace/internal/clock"
	obsmetrics "github.com/nahomjim91/spice-marketplace/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	JobEvictIdleSessions = "evict_idle_sessions"
	JobPurgeSnapshots    = "purge_cart_snapshots"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

// SnapshotPurger is implemented by stores that do not expire snapshots on their own.
type SnapshotPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Carts   *cartservice.Manager
	Store   cartdomain.Store             `optional:"true"`
	Metrics *obsmetrics.SchedulerMetrics `optional:"true"`
	Config  Config                       `optional:"true"`
}

type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	clock   clock.Clock
	carts   *cartservice.Manager
	purger  SnapshotPurger
	metrics *obsmetrics.SchedulerMetrics
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Carts == nil {
		return nil, ErrInvalidConfig
	}
	s := &Scheduler{
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     p.Config.withDefaults(),
		clock:   p.Clock,
		carts:   p.Carts,
		metrics: p.Metrics,
	}
	if purger, ok := p.Store.(SnapshotPurger); ok {
		s.purger = purger
	}
	return s, nil
}

// runJob bounds fn by timeout. A timeout is logged and counted but not returned,
// so the next tick simply tries again.
func (s *Scheduler) runJob(parent context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	s.metrics.IncJobRun(name)

	err := fn(ctx)
	s.metrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	if err == nil {
		return nil
	}

	s.metrics.IncJobError(name, err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.metrics.IncJobTimeout(name)
		log.Warn("job timed out", zap.Duration("timeout", timeout), zap.Error(err))
		return nil
	}

	log.Error("job failed", zap.Error(err))
	return err
}

// RunOnce runs every janitor job a single time.
func (s *Scheduler) RunOnce(parent context.Context) error {
	var runErr error
	if err := s.runJob(parent, JobEvictIdleSessions, s.cfg.JobTimeout, s.EvictIdleSessionsJob); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if err := s.runJob(parent, JobPurgeSnapshots, s.cfg.JobTimeout, s.PurgeSnapshotsJob); err != nil {
		runErr = errors.Join(runErr, err)
	}
	return runErr
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.RunInterval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if lag := s.clock.Now().Sub(nextRun); lag > 0 {
			s.metrics.ObserveRunLoopLag(lag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)
	}
}

// EvictIdleSessionsJob closes in-memory sessions nobody touched within
// IdleSessionAfter. Their snapshots stay in the store.
func (s *Scheduler) EvictIdleSessionsJob(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	evicted := s.carts.EvictIdle(s.clock.Now().Add(-s.cfg.IdleSessionAfter))
	s.metrics.AddBatchProcessed(JobEvictIdleSessions, obsmetrics.SchedulerResourceSessions, evicted)
	if evicted > 0 {
		s.log.Debug("evicted idle cart sessions", zap.Int("count", evicted))
	}
	return nil
}

// PurgeSnapshotsJob deletes database snapshots older than SnapshotRetention.
func (s *Scheduler) PurgeSnapshotsJob(ctx context.Context) error {
	if s.purger == nil || s.cfg.SnapshotRetention <= 0 {
		return nil
	}
	purged, err := s.purger.PurgeBefore(ctx, s.clock.Now().Add(-s.cfg.SnapshotRetention))
	if err != nil {
		return err
	}
	s.metrics.AddBatchProcessed(JobPurgeSnapshots, obsmetrics.SchedulerResourceSnapshots, int(purged))
	if purged > 0 {
		s.log.Info("purged stale cart snapshots", zap.Int64("count", purged))
	}
	return nil
}
