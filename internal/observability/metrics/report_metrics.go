package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	ReasonDeadlineExceeded     = "deadline_exceeded"
	ReasonDBLockTimeout        = "db_lock_timeout"
	ReasonSerializationFailure = "serialization_failure"
	ReasonDB                   = "db"
	ReasonUnknown              = "unknown"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// jobLabel avoids "job", which Prometheus reserves for the scrape or push job.
const jobLabel = "scheduler_job"

// Config labels every series with the running service.
type Config struct {
	ServiceName string
	Environment string
}

// ReportMetrics tracks report builds, aggregate queries and deliveries.
type ReportMetrics struct {
	reportsBuilt     *prometheus.CounterVec
	buildDuration    *prometheus.HistogramVec
	aggregateQueries *prometheus.CounterVec
	rowsEmitted      *prometheus.CounterVec
	deliveries       *prometheus.CounterVec
	deliveredBytes   *prometheus.CounterVec
	jobRuns          *prometheus.CounterVec
	jobErrors        *prometheus.CounterVec
	jobDuration      *prometheus.HistogramVec
}

var (
	reportMetricsOnce sync.Once
	reportMetrics     *ReportMetrics
)

// Reports returns the process-wide report metrics registered on the default registerer.
func Reports() *ReportMetrics {
	return ReportsWithConfig(Config{})
}

// ReportsWithConfig returns the singleton using config labels on first use.
func ReportsWithConfig(cfg Config) *ReportMetrics {
	reportMetricsOnce.Do(func() {
		reportMetrics = newReportMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return reportMetrics
}

// NewForRegistry builds an isolated instance, used by tests.
func NewForRegistry(registerer prometheus.Registerer, cfg Config) *ReportMetrics {
	return newReportMetrics(registerer, cfg)
}

func newReportMetrics(registerer prometheus.Registerer, cfg Config) *ReportMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "counterreport"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &ReportMetrics{
		reportsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "counter_reports_built_total",
			Help:        "COUNTER and royalty reports built by report id and outcome.",
			ConstLabels: constLabels,
		}, []string{"report_id", "outcome"}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "counter_report_build_duration_seconds",
			Help:        "Time spent assembling a report.",
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			ConstLabels: constLabels,
		}, []string{"report_id"}),
		aggregateQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "counter_aggregate_queries_total",
			Help:        "Counted queries issued against the usage event store.",
			ConstLabels: constLabels,
		}, []string{"metric_type"}),
		rowsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "counter_report_rows_total",
			Help:        "Report rows emitted by report id.",
			ConstLabels: constLabels,
		}, []string{"report_id"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "counter_report_deliveries_total",
			Help:        "Report files pushed to a delivery destination.",
			ConstLabels: constLabels,
		}, []string{"transport", "outcome"}),
		deliveredBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "counter_report_delivered_bytes_total",
			Help:        "Bytes of serialized reports delivered.",
			ConstLabels: constLabels,
		}, []string{"transport"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "counter_scheduler_job_runs_total",
			Help:        "Scheduled report job runs by name.",
			ConstLabels: constLabels,
		}, []string{jobLabel}),
		jobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "counter_scheduler_job_errors_total",
			Help:        "Scheduled report job errors by low-cardinality reason.",
			ConstLabels: constLabels,
		}, []string{jobLabel, "reason"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "counter_scheduler_job_duration_seconds",
			Help:        "Scheduled report job latency.",
			Buckets:     []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600, 1800},
			ConstLabels: constLabels,
		}, []string{jobLabel}),
	}

	registerer.MustRegister(
		m.reportsBuilt,
		m.buildDuration,
		m.aggregateQueries,
		m.rowsEmitted,
		m.deliveries,
		m.deliveredBytes,
		m.jobRuns,
		m.jobErrors,
		m.jobDuration,
	)
	return m
}

func (m *ReportMetrics) ObserveReportBuild(reportID string, duration time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	reportID = normalizeLabel(reportID)
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.reportsBuilt.WithLabelValues(reportID, outcome).Inc()
	m.buildDuration.WithLabelValues(reportID).Observe(duration.Seconds())
	if rows > 0 {
		m.rowsEmitted.WithLabelValues(reportID).Add(float64(rows))
	}
}

func (m *ReportMetrics) IncAggregateQuery(metricType string) {
	if m == nil {
		return
	}
	m.aggregateQueries.WithLabelValues(normalizeLabel(metricType)).Inc()
}

func (m *ReportMetrics) ObserveDelivery(transport string, size int, err error) {
	if m == nil {
		return
	}
	transport = normalizeLabel(transport)
	if err != nil {
		m.deliveries.WithLabelValues(transport, OutcomeFailure).Inc()
		return
	}
	m.deliveries.WithLabelValues(transport, OutcomeSuccess).Inc()
	m.deliveredBytes.WithLabelValues(transport).Add(float64(size))
}

func (m *ReportMetrics) ObserveJob(job string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	job = normalizeLabel(job)
	m.jobRuns.WithLabelValues(job).Inc()
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
	if err != nil {
		m.jobErrors.WithLabelValues(job, ClassifyReason(err)).Inc()
	}
}

// ClassifyReason maps an error to a low-cardinality label value.
func ClassifyReason(err error) string {
	switch {
	case err == nil:
		return ReasonUnknown
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ReasonDeadlineExceeded
	case hasPGCode(err, "55P03"):
		return ReasonDBLockTimeout
	case hasPGCode(err, "40001"):
		return ReasonSerializationFailure
	case isDBError(err):
		return ReasonDB
	default:
		return ReasonUnknown
	}
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == code
}

func isDBError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return true
	}
	return errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrInvalidField)
}

func normalizeLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	return value
}
