package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/smallbiznis/counterreport/internal/clock"
	obslogger "github.com/smallbiznis/counterreport/internal/observability/logger"
	"github.com/smallbiznis/counterreport/internal/observability/metrics"
	"github.com/smallbiznis/counterreport/internal/report"
	royaltydomain "github.com/smallbiznis/counterreport/internal/royalty/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const jobRoyaltyUsage = "royalty_usage"

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log     *zap.Logger
	Config  Config
	Royalty royaltydomain.Service
	Clock   clock.Clock
	GenID   *snowflake.Node
	Locker  *Locker                `optional:"true"`
	Metrics *metrics.ReportMetrics `optional:"true"`
	Pusher  metrics.Pusher         `optional:"true"`
}

// Scheduler runs the monthly royalty delivery for each configured press.
type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	royalty royaltydomain.Service
	clock   clock.Clock
	genID   *snowflake.Node
	locker  *Locker
	metrics *metrics.ReportMetrics
	pusher  metrics.Pusher
	gather  prometheus.Gatherer
	cron    *cron.Cron
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Royalty == nil || p.Clock == nil || p.GenID == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	if _, err := cron.NewParser(cronFields).Parse(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, cfg.Schedule, err)
	}
	return &Scheduler{
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     cfg,
		royalty: p.Royalty,
		clock:   p.Clock,
		genID:   p.GenID,
		locker:  p.Locker,
		metrics: p.Metrics,
		pusher:  p.Pusher,
		gather:  prometheus.DefaultGatherer,
		cron:    cron.New(cron.WithSeconds()),
	}, nil
}

const cronFields = cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor

// Start registers the royalty job on the cron schedule.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		if err := s.RunRoyaltyUsage(context.Background()); err != nil {
			s.log.Warn("royalty usage job finished with errors", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("scheduler started",
		zap.String("schedule", s.cfg.Schedule),
		zap.Strings("presses", s.cfg.Presses),
	)
	return nil
}

// Stop waits for a running job or for ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PreviousMonth is the full calendar month before now.
func PreviousMonth(now time.Time) report.Period {
	first := report.MonthStart(now)
	return report.NewPeriod(first.AddDate(0, -1, 0), first.AddDate(0, 0, -1))
}

// RunRoyaltyUsage builds and delivers last month's royalty reports for every
// configured press. One press failing does not stop the others.
func (s *Scheduler) RunRoyaltyUsage(ctx context.Context) error {
	run := s.newJobRun(jobRoyaltyUsage)
	ctx = obslogger.ContextWithReportID(ctx, jobRoyaltyUsage)
	period := PreviousMonth(s.clock.Now())
	s.logJobStart(ctx, run, zap.String("period", period.Label()))

	var errs []error
	for _, press := range s.cfg.Presses {
		press = strings.TrimSpace(press)
		if press == "" {
			continue
		}
		if err := s.runPress(ctx, run, press, period); err != nil {
			errs = append(errs, fmt.Errorf("press %s: %w", press, err))
		}
	}

	err := errors.Join(errs...)
	s.metrics.ObserveJob(jobRoyaltyUsage, s.clock.Now().Sub(run.startedAt), err)
	s.pushMetrics(ctx)
	s.logJobFinish(ctx, run)
	return err
}

func (s *Scheduler) runPress(parent context.Context, run *jobRun, press string, period report.Period) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.Timeout)
	defer cancel()

	key := lockKey(press, period)
	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, key, s.cfg.LockTTL)
		if err != nil {
			s.logJobError(ctx, run, "scheduler.lock.failed", err, zap.String("press", press))
			return err
		}
		if !ok {
			run.IncSkipped()
			s.logger(ctx).Info("scheduler.lock.held",
				zap.String("job", run.job),
				zap.String("press", press),
				zap.String("lock_key", key),
			)
			return nil
		}
		defer func() {
			if err := s.locker.Release(context.Background(), key, token); err != nil {
				s.logger(ctx).Warn("scheduler.lock.release_failed", zap.String("lock_key", key), zap.Error(err))
			}
		}()
	}

	result, err := s.royalty.DeliverUsageReports(ctx, royaltydomain.UsageRequest{
		Press:     press,
		StartDate: period.Start,
		EndDate:   period.End,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger(ctx).Warn("job timed out",
				zap.String("job", run.job),
				zap.String("press", press),
				zap.Duration("timeout", s.cfg.Timeout),
			)
		}
		s.logJobError(ctx, run, "scheduler.royalty.failed", err, zap.String("press", press))
		return err
	}

	run.AddProcessed(len(result.Reports))
	s.logger(ctx).Info("scheduler.royalty.delivered",
		zap.String("job", run.job),
		zap.String("press", press),
		zap.Int("reports", len(result.Reports)),
		zap.Int64("total_hits", result.TotalHits),
	)
	return nil
}

func lockKey(press string, period report.Period) string {
	return "counterreport:lock:" + jobRoyaltyUsage + ":" + press + ":" + period.FileStamp()
}

func (s *Scheduler) pushMetrics(ctx context.Context) {
	if s.pusher == nil {
		return
	}
	if err := s.pusher.Push(ctx, s.gather); err != nil {
		obslogger.WithContext(ctx, s.log).Warn("metrics push failed", zap.Error(err))
	}
}
