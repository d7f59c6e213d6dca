package report

import "errors"

var ErrColumnMismatch = errors.New("column_mismatch")

const (
	ReportIDPlatform = "PR_P1"
	ReportIDTitle    = "TR_B1"

	MetricTotalItemRequests   = "Total_Item_Requests"
	MetricUniqueItemRequests  = "Unique_Item_Requests"
	MetricUniqueTitleRequests = "Unique_Title_Requests"
)

// Field is one key/value line of a report header.
type Field struct {
	Key   string
	Value string
}

// Header keeps its fields in render order.
type Header []Field

func (h Header) Get(key string) (string, bool) {
	for _, f := range h {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Report is a header plus positional rows sharing one column layout.
type Report struct {
	Header Header
	Rows   []*Row
}

// Width is the column count of the first row, or zero for an empty report.
func (r *Report) Width() int {
	if r == nil || len(r.Rows) == 0 {
		return 0
	}
	return r.Rows[0].Len()
}

func (r *Report) IsEmpty() bool {
	return r.Width() == 0
}
