package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/counterreport/internal/report"
)

// Column names of royalty item rows.
const (
	ColumnTitle            = "Parent_Title"
	ColumnPublisher        = "Publisher"
	ColumnTitleID          = "Parent_Proprietary_ID"
	ColumnISBN             = "ISBN"
	ColumnParentISBN       = "Parent_ISBN"
	ColumnParentPrintISSN  = "Parent_Print_ISSN"
	ColumnParentOnlineISSN = "Parent_Online_ISSN"
	ColumnHits             = "Hits"
	ColumnEbookISBN        = "ebook ISBN"
	ColumnHardcoverISBN    = "hardcover ISBN"
	ColumnPaperISBN        = "paper ISBN"
	ColumnExternalID       = "hebid"
	ColumnCopyrightHolder  = "Copyright Holder"
)

type UsageRequest struct {
	Press     string
	StartDate time.Time
	EndDate   time.Time
}

// UsageReports is a named set of royalty reports for one period.
type UsageReports struct {
	Period  report.Period
	Reports map[string]*report.Report
	// Payees in order of first appearance.
	Payees []string
	// TotalHits across all rights holders.
	TotalHits int64
}

// Deliverer uploads named reports for a period.
type Deliverer interface {
	Deliver(ctx context.Context, reports map[string]*report.Report, period report.Period) error
}

type Service interface {
	UsageReports(ctx context.Context, req UsageRequest) (*UsageReports, error)
	DeliverUsageReports(ctx context.Context, req UsageRequest) (*UsageReports, error)
}

var (
	ErrInvalidPress        = errors.New("invalid_press")
	ErrDeliveryUnavailable = errors.New("delivery_unavailable")
)
