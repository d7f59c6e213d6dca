package service

import (
	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
	"github.com/smallbiznis/counterreport/internal/report"
)

type metric struct {
	name   string
	unique counterdomain.Uniqueness
}

type definition struct {
	id          string
	name        string
	metricTypes string
	filters     string
	metrics     []metric
}

var (
	totalItemRequests   = metric{name: report.MetricTotalItemRequests, unique: counterdomain.UniqueNone}
	uniqueItemRequests  = metric{name: report.MetricUniqueItemRequests, unique: counterdomain.UniqueBySession}
	uniqueTitleRequests = metric{name: report.MetricUniqueTitleRequests, unique: counterdomain.UniqueByTitle}
)

var definitions = map[string]definition{
	report.ReportIDPlatform: {
		id:          report.ReportIDPlatform,
		name:        "Platform Usage",
		metricTypes: "Total_Item_Requests; Unique_Item_Requests; Unique_Title_Requests",
		filters:     "Access_Type=Controlled; Access_Method=Regular",
		metrics:     []metric{totalItemRequests, uniqueItemRequests, uniqueTitleRequests},
	},
	report.ReportIDTitle: {
		id:          report.ReportIDTitle,
		name:        "Book Requests (Excluding OA_Gold)",
		metricTypes: "Total_Item_Requests; Unique_Title_Requests",
		filters:     "Data_Type=Book; Access_Type=Controlled; Access_Method=Regular",
		metrics:     []metric{totalItemRequests, uniqueTitleRequests},
	},
}

// ReportIDs lists the supported report ids.
func ReportIDs() []string {
	return []string{report.ReportIDPlatform, report.ReportIDTitle}
}
