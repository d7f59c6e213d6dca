package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthsInclusive(t *testing.T) {
	start := time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2019, time.March, 15, 0, 0, 0, 0, time.UTC)

	var keys []string
	for _, m := range Months(start, end) {
		keys = append(keys, MonthKey(m))
	}
	assert.Equal(t, []string{"Jan-2019", "Feb-2019", "Mar-2019"}, keys)
}

func TestMonthsStepsCalendarMonths(t *testing.T) {
	start := time.Date(2019, time.January, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC)

	months := Months(start, end)
	assert.Len(t, months, 3)
	assert.Equal(t, time.February, months[1].Month())
}

func TestMonthsAcrossYears(t *testing.T) {
	start := time.Date(2018, time.November, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2019, time.February, 2, 0, 0, 0, 0, time.UTC)

	months := Months(start, end)
	assert.Len(t, months, 4)
	assert.Equal(t, "Dec-2018", MonthKey(months[1]))
	assert.Equal(t, "Feb-2019", MonthKey(months[3]))
}

func TestMonthsSingleMonth(t *testing.T) {
	day := time.Date(2020, time.June, 10, 0, 0, 0, 0, time.UTC)
	assert.Len(t, Months(day, day), 1)
}

func TestIsMonthColumn(t *testing.T) {
	assert.True(t, IsMonthColumn("Jan-2019"))
	assert.False(t, IsMonthColumn("Hits"))
	assert.False(t, IsMonthColumn("Reporting_Period_Total"))
}

func TestReportingPeriod(t *testing.T) {
	start := time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2019, time.November, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2019-1 to 2019-11", ReportingPeriod(start, end))
	assert.Equal(t, "201901", FileMonth(start))
	assert.Equal(t, "2019-11", DirMonth(end))
}
