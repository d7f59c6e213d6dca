package observability

import (
	"github.com/smallbiznis/counterreport/internal/observability/logger"
	"github.com/smallbiznis/counterreport/internal/observability/metrics"
	"github.com/smallbiznis/counterreport/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		func(cfg Config) logger.Config { return cfg.Logger },
		logger.New,
		func(cfg Config) tracing.Config { return cfg.Tracing },
		tracing.NewProvider,
		func(cfg Config) metrics.Config { return cfg.Metrics },
		metrics.ReportsWithConfig,
		func(cfg Config) metrics.PushConfig { return cfg.Push },
		metrics.NewPusher,
	),
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
