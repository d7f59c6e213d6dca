package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializePadsHeaderToRowWidth(t *testing.T) {
	r := &Report{
		Header: Header{{Key: "Report_Name", Value: "Platform Usage"}, {Key: "Report_ID", Value: "PR_P1"}},
		Rows: []*Row{
			NewRow(Column{"Platform", "Fulcrum"}, Column{"Metric_Type", "Total_Item_Requests"}, Column{"Reporting_Period_Total", "3"}),
		},
	}

	out, err := Serialize(r)
	require.NoError(t, err)

	want := strings.Join([]string{
		"Report_Name,Platform Usage,",
		"Report_ID,PR_P1,",
		",,",
		"Platform,Metric_Type,Reporting_Period_Total",
		"Fulcrum,Total_Item_Requests,3",
		"",
	}, "\n")
	assert.Equal(t, want, string(out))
}

func TestSerializeEmptyReport(t *testing.T) {
	r := &Report{Header: Header{{Key: "Report_ID", Value: "TR_B1"}}}

	out, err := Serialize(r)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Report_ID,TR_B1", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "Report is empty,", lines[2])
}

func TestSerializeQuotesValues(t *testing.T) {
	r := &Report{Rows: []*Row{NewRow(Column{"Title", "Hello, World"}, Column{"Hits", "1,234"})}}

	out, err := Serialize(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"Hello, World","1,234"`)
}

func TestSerializeRejectsMisalignedRows(t *testing.T) {
	r := &Report{Rows: []*Row{
		NewRow(Column{"a", "1"}, Column{"b", "2"}),
		NewRow(Column{"b", "2"}, Column{"a", "1"}),
	}}

	_, err := Serialize(r)
	assert.True(t, errors.Is(err, ErrColumnMismatch))
}

func TestCounterHeaderOrder(t *testing.T) {
	h := CounterHeader(CounterHeaderParams{
		ReportName:    "Platform Usage",
		ReportID:      ReportIDPlatform,
		InstitutionID: "1",
		Start:         time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:           time.Date(2019, time.March, 15, 0, 0, 0, 0, time.UTC),
		Created:       time.Date(2019, time.April, 2, 10, 0, 0, 0, time.UTC),
		CreatedBy:     "Fulcrum",
	})

	keys := make([]string, len(h))
	for i, f := range h {
		keys[i] = f.Key
	}
	assert.Equal(t, []string{
		"Report_Name", "Report_ID", "Release", "Institution_Name", "Institution_ID",
		"Metric_Types", "Report_Filters", "Report_Attributes", "Exceptions",
		"Reporting_Period", "Created", "Created_By",
	}, keys)

	period, _ := h.Get("Reporting_Period")
	assert.Equal(t, "2019-1 to 2019-3", period)
	created, _ := h.Get("Created")
	assert.Equal(t, "2019-04-02", created)
	release, _ := h.Get("Release")
	assert.Equal(t, "5", release)
}
