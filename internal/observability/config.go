package observability

import (
	"strings"

	"github.com/smallbiznis/counterreport/internal/config"
	"github.com/smallbiznis/counterreport/internal/observability/logger"
	"github.com/smallbiznis/counterreport/internal/observability/metrics"
	"github.com/smallbiznis/counterreport/internal/observability/tracing"
	"github.com/spf13/viper"
)

// Config bundles the settings of each observability component.
type Config struct {
	Logger  logger.Config
	Tracing tracing.Config
	Metrics metrics.Config
	Push    metrics.PushConfig
}

// LoadConfig overlays observability env vars on the app config. Tracing
// defaults to on in production only.
func LoadConfig(cfg config.Config) Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DEPLOYMENT_ENV", cfg.Environment)
	v.SetDefault("SERVICE_VERSION", cfg.AppVersion)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("OTEL_ENABLED", cfg.IsProduction())
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	v.SetDefault("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	v.SetDefault("OTEL_SAMPLING_RATIO", 0.1)

	service := strings.TrimSpace(cfg.AppName)
	if service == "" {
		service = "counterreport"
	}
	env := trimmed(v, "DEPLOYMENT_ENV")
	version := trimmed(v, "SERVICE_VERSION")
	level := strings.ToLower(trimmed(v, "LOG_LEVEL"))

	protocol := strings.ToLower(trimmed(v, "OTEL_EXPORTER_OTLP_PROTOCOL"))
	if traces := strings.ToLower(trimmed(v, "OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")); traces != "" {
		protocol = traces
	}

	return Config{
		Logger: logger.Config{
			ServiceName:         service,
			Environment:         env,
			Version:             version,
			Level:               level,
			Format:              strings.ToLower(trimmed(v, "LOG_FORMAT")),
			IncludeCaller:       true,
			IncludeStackOnError: debug(level, env),
		},
		Tracing: tracing.Config{
			Enabled:          v.GetBool("OTEL_ENABLED"),
			ServiceName:      service,
			ServiceVersion:   version,
			Environment:      env,
			ExporterEndpoint: trimmed(v, "OTEL_EXPORTER_OTLP_ENDPOINT"),
			ExporterProtocol: protocol,
			SamplingRatio:    v.GetFloat64("OTEL_SAMPLING_RATIO"),
		},
		Metrics: metrics.Config{
			ServiceName: service,
			Environment: env,
		},
		Push: metrics.PushConfig{
			Exporter:    trimmed(v, "METRICS_PUSH_EXPORTER"),
			Endpoint:    trimmed(v, "METRICS_PUSH_ENDPOINT"),
			AuthToken:   trimmed(v, "METRICS_PUSH_AUTH_TOKEN"),
			Job:         service,
			Environment: env,
		},
	}
}

// Debug is true for debug logging or a development environment.
func (c Config) Debug() bool {
	return debug(c.Logger.Level, c.Logger.Environment)
}

func debug(level, env string) bool {
	if strings.EqualFold(strings.TrimSpace(level), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func trimmed(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}
