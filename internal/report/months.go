package report

import (
	"regexp"
	"time"
)

var monthColumn = regexp.MustCompile(`\w{3}-\d{4}`)

// MonthStart truncates t to midnight UTC on the first of its month.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonth steps one calendar month from the first of t's month.
func NextMonth(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0)
}

// Months lists the first of every calendar month from start's month through
// end's month inclusive.
func Months(start, end time.Time) []time.Time {
	last := MonthStart(end)
	var out []time.Time
	for m := MonthStart(start); !m.After(last); m = m.AddDate(0, 1, 0) {
		out = append(out, m)
	}
	return out
}

// MonthKey names a month column, e.g. "Jan-2019".
func MonthKey(t time.Time) string {
	return t.UTC().Format("Jan-2006")
}

// IsMonthColumn matches month column names such as "Jan-2019".
func IsMonthColumn(name string) bool {
	return monthColumn.MatchString(name)
}

// FileMonth is the compact month stamp used in file names, e.g. "201901".
func FileMonth(t time.Time) string {
	return t.UTC().Format("200601")
}

// DirMonth is the month stamp used in delivery directories, e.g. "2019-01".
func DirMonth(t time.Time) string {
	return t.UTC().Format("2006-01")
}
