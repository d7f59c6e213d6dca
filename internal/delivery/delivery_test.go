package delivery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smallbiznis/counterreport/internal/config"
	"github.com/smallbiznis/counterreport/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingTransport struct {
	mkdirErr error
	putErr   error
	dirs     []string
	puts     []string
	files    map[string][]byte
	closed   bool
}

func (r *recordingTransport) Name() string { return "fake" }

func (r *recordingTransport) Mkdir(_ context.Context, dir string) error {
	r.dirs = append(r.dirs, dir)
	return r.mkdirErr
}

func (r *recordingTransport) Put(_ context.Context, name string, data []byte) error {
	if r.putErr != nil {
		return r.putErr
	}
	if r.files == nil {
		r.files = map[string][]byte{}
	}
	r.puts = append(r.puts, name)
	r.files[name] = data
	return nil
}

func (r *recordingTransport) Close() error {
	r.closed = true
	return nil
}

func testPeriod() report.Period {
	return report.NewPeriod(
		time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2019, 3, 31, 0, 0, 0, 0, time.UTC),
	)
}

func testReports() map[string]*report.Report {
	row := report.NewRow()
	row.Set("Parent_Title", "First")
	row.Set("Hits", "1,200")
	header := report.Header{{Key: "Report Name", Value: "Royalty Usage Report"}}
	reports := map[string]*report.Report{}
	reports["regents.usage.201901-201903.csv"] = &report.Report{Header: header, Rows: []*report.Row{row}}
	reports["usage_combined.201901-201903.csv"] = &report.Report{Header: header, Rows: []*report.Row{row.Clone()}}
	reports["no-copyright-holder.usage.201901-201903.csv"] = &report.Report{Header: header}
	return reports
}

func newTestDeliverer(cfg config.DeliveryConfig, dial Dialer) *Deliverer {
	return NewDeliverer(Params{
		Log:    zap.NewNop(),
		Config: config.NewStaticDeliveryConfig(cfg),
		Dialer: dial,
	})
}

func TestDeliverPutsSortedFilesIntoPeriodDirectory(t *testing.T) {
	transport := &recordingTransport{}
	d := newTestDeliverer(config.DeliveryConfig{TransportMode: "fake", BaseDir: "/ftp/ebc"}, func(context.Context, config.DeliveryConfig) (Transport, error) {
		return transport, nil
	})

	require.NoError(t, d.Deliver(context.Background(), testReports(), testPeriod()))

	assert.Equal(t, []string{"/ftp/ebc/2019-01_to_2019-03"}, transport.dirs)
	assert.Equal(t, []string{
		"/ftp/ebc/2019-01_to_2019-03/no-copyright-holder.usage.201901-201903.csv",
		"/ftp/ebc/2019-01_to_2019-03/regents.usage.201901-201903.csv",
		"/ftp/ebc/2019-01_to_2019-03/usage_combined.201901-201903.csv",
	}, transport.puts)
	assert.Contains(t, string(transport.files["/ftp/ebc/2019-01_to_2019-03/regents.usage.201901-201903.csv"]), `"1,200"`)
	assert.Contains(t, string(transport.files["/ftp/ebc/2019-01_to_2019-03/no-copyright-holder.usage.201901-201903.csv"]), "Report is empty")
	assert.True(t, transport.closed)
}

func TestDeliverToleratesExistingDirectory(t *testing.T) {
	transport := &recordingTransport{mkdirErr: ErrDirectoryExists}
	d := newTestDeliverer(config.DeliveryConfig{BaseDir: "out"}, func(context.Context, config.DeliveryConfig) (Transport, error) {
		return transport, nil
	})

	require.NoError(t, d.Deliver(context.Background(), testReports(), testPeriod()))
	assert.Len(t, transport.puts, 3)
}

func TestDeliverFailures(t *testing.T) {
	refused := errors.New("connection refused")

	cases := []struct {
		name string
		dial Dialer
	}{
		{
			name: "dial",
			dial: func(context.Context, config.DeliveryConfig) (Transport, error) { return nil, refused },
		},
		{
			name: "mkdir",
			dial: func(context.Context, config.DeliveryConfig) (Transport, error) {
				return &recordingTransport{mkdirErr: refused}, nil
			},
		},
		{
			name: "put",
			dial: func(context.Context, config.DeliveryConfig) (Transport, error) {
				return &recordingTransport{putErr: refused}, nil
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newTestDeliverer(config.DeliveryConfig{BaseDir: "out"}, tc.dial)
			err := d.Deliver(context.Background(), testReports(), testPeriod())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDeliveryFailed)
			assert.ErrorIs(t, err, refused)
		})
	}
}

func TestDeliverLocal(t *testing.T) {
	base := t.TempDir()
	d := newTestDeliverer(config.DeliveryConfig{TransportMode: config.TransportLocal, BaseDir: base}, nil)

	require.NoError(t, d.Deliver(context.Background(), testReports(), testPeriod()))
	// second run hits the existing directory and overwrites files
	require.NoError(t, d.Deliver(context.Background(), testReports(), testPeriod()))

	data, err := os.ReadFile(filepath.Join(base, "2019-01_to_2019-03", "usage_combined.201901-201903.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Report Name,Royalty Usage Report")
}

func TestLocalMkdirReportsExisting(t *testing.T) {
	dir := t.TempDir()
	err := NewLocal().Mkdir(context.Background(), dir)
	assert.ErrorIs(t, err, ErrDirectoryExists)

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, NewLocal().Mkdir(context.Background(), nested))
	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDialRejectsUnknownTransport(t *testing.T) {
	_, err := Dial(context.Background(), config.DeliveryConfig{TransportMode: "ftp"})
	assert.ErrorIs(t, err, ErrInvalidDestination)
}
