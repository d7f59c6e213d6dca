package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/prometheus/prompb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRemoteWritePusherSendsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewForRegistry(registry, Config{ServiceName: "counterreport", Environment: "test"})
	m.ObserveJob("royalty_usage", time.Second, nil)

	var got prompb.WriteRequest
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		raw, err := snappy.Decode(nil, body)
		require.NoError(t, err)
		require.NoError(t, got.Unmarshal(raw))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewRemoteWritePusher(srv.URL, "secret", srv.Client())
	p.now = func() time.Time { return time.UnixMilli(1700000000000) }
	require.NoError(t, p.Push(context.Background(), registry))

	assert.Equal(t, "snappy", headers.Get("Content-Encoding"))
	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))

	var found bool
	for _, ts := range got.Timeseries {
		for _, l := range ts.Labels {
			if l.Name == "__name__" && l.Value == "counter_scheduler_job_runs_total" {
				found = true
				require.Len(t, ts.Samples, 1)
				assert.Equal(t, float64(1), ts.Samples[0].Value)
				assert.Equal(t, int64(1700000000000), ts.Samples[0].Timestamp)
				assert.Contains(t, ts.Labels, prompb.Label{Name: "scheduler_job", Value: "royalty_usage"})
			}
			assert.NotEqual(t, "counter_scheduler_job_duration_seconds", l.Value)
		}
	}
	assert.True(t, found)
}

func TestRemoteWritePusherReportsStatus(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewForRegistry(registry, Config{}).ObserveDelivery("local", 10, nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewRemoteWritePusher(srv.URL, "", srv.Client()).Push(context.Background(), registry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestPushgatewayPusher(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewForRegistry(registry, Config{}).ObserveJob("royalty_usage", time.Second, nil)

	var method, path string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPushgatewayPusher(srv.URL, "counterreport", map[string]string{"environment": "test", "empty": ""})
	require.NoError(t, p.Push(context.Background(), registry))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/counterreport/environment/test", path)
	assert.NotEmpty(t, body)
}

func TestNewPusher(t *testing.T) {
	log := zap.NewNop()
	assert.Nil(t, NewPusher(PushConfig{}, log))
	assert.Nil(t, NewPusher(PushConfig{Exporter: ExporterRemoteWrite}, log))
	assert.Nil(t, NewPusher(PushConfig{Exporter: "statsd", Endpoint: "localhost:8125"}, log))
	assert.IsType(t, &RemoteWritePusher{}, NewPusher(PushConfig{Exporter: ExporterRemoteWrite, Endpoint: "http://prom/api/v1/write"}, log))
	assert.IsType(t, &PushgatewayPusher{}, NewPusher(PushConfig{Exporter: "Prometheus_Pushgateway", Endpoint: "http://gw:9091"}, log))
}
