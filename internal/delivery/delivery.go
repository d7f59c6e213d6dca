package delivery

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/counterreport/internal/config"
	"github.com/smallbiznis/counterreport/internal/observability/logger"
	"github.com/smallbiznis/counterreport/internal/observability/metrics"
	"github.com/smallbiznis/counterreport/internal/report"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrDeliveryFailed     = errors.New("delivery_failed")
	ErrInvalidDestination = errors.New("invalid_destination")
	ErrDirectoryExists    = errors.New("directory_exists")
)

// Transport moves files to a destination. Mkdir returns ErrDirectoryExists
// when the directory is already there.
type Transport interface {
	Name() string
	Mkdir(ctx context.Context, dir string) error
	Put(ctx context.Context, name string, data []byte) error
	Close() error
}

// Dialer opens a transport for the current destination config.
type Dialer func(ctx context.Context, cfg config.DeliveryConfig) (Transport, error)

type Params struct {
	fx.In

	Log     *zap.Logger
	Config  *config.DeliveryConfigHolder
	Dialer  Dialer                 `optional:"true"`
	Metrics *metrics.ReportMetrics `optional:"true"`
}

// Deliverer uploads serialized reports into a per-period directory.
type Deliverer struct {
	log     *zap.Logger
	cfg     *config.DeliveryConfigHolder
	dial    Dialer
	metrics *metrics.ReportMetrics
}

func NewDeliverer(p Params) *Deliverer {
	dial := p.Dialer
	if dial == nil {
		dial = Dial
	}
	return &Deliverer{
		log:     p.Log.Named("delivery"),
		cfg:     p.Config,
		dial:    dial,
		metrics: p.Metrics,
	}
}

// Deliver writes every report as {base_dir}/{YYYY-MM}_to_{YYYY-MM}/{name}.
// Nothing is retried; the first transport failure aborts the batch.
func (d *Deliverer) Deliver(ctx context.Context, reports map[string]*report.Report, period report.Period) error {
	cfg := d.cfg.Get()
	dir := path.Join(cfg.BaseDir, period.DirName())
	log := logger.WithContext(ctx, d.log).With(
		zap.String("batch_id", ulid.Make().String()),
		zap.String("transport", cfg.TransportMode),
		zap.String("dir", dir),
	)

	t, err := d.dial(ctx, cfg)
	if err != nil {
		return d.fail(log, cfg.TransportMode, err)
	}
	defer func() {
		if err := t.Close(); err != nil {
			log.Warn("closing transport", zap.Error(err))
		}
	}()

	if err := t.Mkdir(ctx, dir); err != nil {
		if !errors.Is(err, ErrDirectoryExists) {
			return d.fail(log, t.Name(), err)
		}
		log.Info("report directory already exists, continuing")
	}

	names := make([]string, 0, len(reports))
	for name := range reports {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := report.Serialize(reports[name])
		if err != nil {
			return d.fail(log, t.Name(), fmt.Errorf("serialize %s: %w", name, err))
		}
		if err := t.Put(ctx, path.Join(dir, name), data); err != nil {
			return d.fail(log, t.Name(), fmt.Errorf("put %s: %w", name, err))
		}
		d.metrics.ObserveDelivery(t.Name(), len(data), nil)
		log.Info("put report", zap.String("name", name), zap.Int("bytes", len(data)))
	}
	return nil
}

func (d *Deliverer) fail(log *zap.Logger, transport string, err error) error {
	d.metrics.ObserveDelivery(transport, 0, err)
	log.Error("report delivery failed", zap.Error(err), zap.Stack("stacktrace"))
	return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
}

// Dial opens the transport named by cfg.TransportMode.
func Dial(ctx context.Context, cfg config.DeliveryConfig) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.TransportMode)) {
	case config.TransportSFTP:
		return DialSFTP(ctx, cfg)
	case config.TransportS3:
		return NewS3(ctx, cfg)
	case config.TransportLocal:
		return NewLocal(), nil
	default:
		return nil, fmt.Errorf("transport %q: %w", cfg.TransportMode, ErrInvalidDestination)
	}
}
