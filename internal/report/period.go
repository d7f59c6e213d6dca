package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid_date")

const monthLayout = "2006-01"

var dateLayouts = []string{time.DateOnly, time.RFC3339, monthLayout}

// Period is a reporting window. Start is inclusive to the instant, End is
// inclusive to the end of its day.
type Period struct {
	Start time.Time
	End   time.Time
}

func NewPeriod(start, end time.Time) Period {
	return Period{Start: start.UTC(), End: end.UTC()}
}

// Valid reports whether Start's day is not after End's day.
func (p Period) Valid() bool {
	return !startOfDay(p.Start).After(startOfDay(p.End))
}

func (p Period) Since() time.Time {
	return p.Start
}

// Until is the exclusive upper bound: midnight after End's day.
func (p Period) Until() time.Time {
	return startOfDay(p.End).AddDate(0, 0, 1)
}

func (p Period) Months() []time.Time {
	return Months(p.Start, p.End)
}

// Label is the header form, e.g. "2019-1 to 2019-3".
func (p Period) Label() string {
	return ReportingPeriod(p.Start, p.End)
}

// FileStamp is the file name form, e.g. "201901-201903".
func (p Period) FileStamp() string {
	return FileMonth(p.Start) + "-" + FileMonth(p.End)
}

// DirName is the delivery directory form, e.g. "2019-01_to_2019-03".
func (p Period) DirName() string {
	return DirMonth(p.Start) + "_to_" + DirMonth(p.End)
}

// ParseDate accepts YYYY-MM-DD, RFC 3339 or YYYY-MM. Blank input yields the
// zero time.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q: %w", raw, ErrInvalidDate)
}

// ParseEndDate is ParseDate for the closing bound: a bare YYYY-MM means the
// last day of that month.
func ParseEndDate(raw string) (time.Time, error) {
	t, err := ParseDate(raw)
	if err != nil || t.IsZero() {
		return t, err
	}
	if _, monthErr := time.Parse(monthLayout, strings.TrimSpace(raw)); monthErr == nil {
		return MonthStart(t).AddDate(0, 1, -1), nil
	}
	return t, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
