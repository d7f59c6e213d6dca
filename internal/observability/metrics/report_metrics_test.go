package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

func TestClassifyReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: ReasonDeadlineExceeded},
		{name: "canceled", err: context.Canceled, want: ReasonDeadlineExceeded},
		{name: "db_lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: ReasonDBLockTimeout},
		{name: "serialization_failure", err: &pgconn.PgError{Code: "40001"}, want: ReasonSerializationFailure},
		{name: "other_pg", err: &pgconn.PgError{Code: "23505"}, want: ReasonDB},
		{name: "invalid_db", err: gorm.ErrInvalidDB, want: ReasonDB},
		{name: "unknown", err: errors.New("boom"), want: ReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyReason(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestObserveReportBuild(t *testing.T) {
	m := NewForRegistry(prometheus.NewRegistry(), Config{ServiceName: "counterreport", Environment: "test"})

	m.ObserveReportBuild("PR_P1", 2*time.Second, 3, nil)
	m.ObserveReportBuild("pr_p1", time.Second, 0, errors.New("boom"))

	if got := testutil.ToFloat64(m.reportsBuilt.WithLabelValues("pr_p1", OutcomeSuccess)); got != 1 {
		t.Fatalf("expected 1 successful build, got %v", got)
	}
	if got := testutil.ToFloat64(m.reportsBuilt.WithLabelValues("pr_p1", OutcomeFailure)); got != 1 {
		t.Fatalf("expected 1 failed build, got %v", got)
	}
	if got := testutil.ToFloat64(m.rowsEmitted.WithLabelValues("pr_p1")); got != 3 {
		t.Fatalf("expected 3 rows, got %v", got)
	}
}

func TestObserveDelivery(t *testing.T) {
	m := NewForRegistry(prometheus.NewRegistry(), Config{})

	m.ObserveDelivery("sftp", 128, nil)
	m.ObserveDelivery("sftp", 64, errors.New("refused"))

	if got := testutil.ToFloat64(m.deliveredBytes.WithLabelValues("sftp")); got != 128 {
		t.Fatalf("expected 128 bytes, got %v", got)
	}
	if got := testutil.ToFloat64(m.deliveries.WithLabelValues("sftp", OutcomeFailure)); got != 1 {
		t.Fatalf("expected 1 failed delivery, got %v", got)
	}
}

func TestObserveJob(t *testing.T) {
	m := NewForRegistry(prometheus.NewRegistry(), Config{})

	m.ObserveJob("royalty_usage", time.Second, context.DeadlineExceeded)

	if got := testutil.ToFloat64(m.jobRuns.WithLabelValues("royalty_usage")); got != 1 {
		t.Fatalf("expected 1 run, got %v", got)
	}
	if got := testutil.ToFloat64(m.jobErrors.WithLabelValues("royalty_usage", ReasonDeadlineExceeded)); got != 1 {
		t.Fatalf("expected 1 deadline error, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *ReportMetrics
	m.ObserveReportBuild("PR_P1", time.Second, 1, nil)
	m.IncAggregateQuery("Total_Item_Requests")
	m.ObserveDelivery("local", 1, nil)
	m.ObserveJob("x", time.Second, nil)
}
