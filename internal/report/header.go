package report

import (
	"fmt"
	"time"
)

const counterRelease = "5"

// CounterHeaderParams describes a COUNTER release 5 report header.
type CounterHeaderParams struct {
	ReportName      string
	ReportID        string
	InstitutionName string
	InstitutionID   string
	MetricTypes     string
	ReportFilters   string
	Start           time.Time
	End             time.Time
	Created         time.Time
	CreatedBy       string
}

// CounterHeader renders the twelve COUNTER header fields in their fixed order.
func CounterHeader(p CounterHeaderParams) Header {
	return Header{
		{Key: "Report_Name", Value: p.ReportName},
		{Key: "Report_ID", Value: p.ReportID},
		{Key: "Release", Value: counterRelease},
		{Key: "Institution_Name", Value: p.InstitutionName},
		{Key: "Institution_ID", Value: p.InstitutionID},
		{Key: "Metric_Types", Value: p.MetricTypes},
		{Key: "Report_Filters", Value: p.ReportFilters},
		{Key: "Report_Attributes", Value: ""},
		{Key: "Exceptions", Value: ""},
		{Key: "Reporting_Period", Value: ReportingPeriod(p.Start, p.End)},
		{Key: "Created", Value: p.Created.UTC().Format(time.DateOnly)},
		{Key: "Created_By", Value: p.CreatedBy},
	}
}

// ReportingPeriod formats "2019-1 to 2019-3". Months are not zero padded.
func ReportingPeriod(start, end time.Time) string {
	return fmt.Sprintf("%d-%d to %d-%d", start.Year(), int(start.Month()), end.Year(), int(end.Month()))
}
