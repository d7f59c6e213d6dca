package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/counterreport/internal/report"
)

// ReportRequest parameterizes a COUNTER report build. Zero dates fall back to
// the first recorded event and to today.
type ReportRequest struct {
	ReportID    string
	StartDate   time.Time
	EndDate     time.Time
	Institution string
	Press       string
}

type Assembler interface {
	Assemble(ctx context.Context, req ReportRequest) (*report.Report, error)
}

var (
	ErrInvalidDateRange   = errors.New("invalid_date_range")
	ErrUnknownReport      = errors.New("unknown_report")
	ErrUnknownInstitution = errors.New("unknown_institution")
)
