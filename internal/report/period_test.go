package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodBounds(t *testing.T) {
	p := NewPeriod(
		time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2019, time.March, 15, 0, 0, 0, 0, time.UTC),
	)

	assert.True(t, p.Valid())
	assert.Equal(t, time.Date(2019, time.March, 16, 0, 0, 0, 0, time.UTC), p.Until())
	assert.Equal(t, "201901-201903", p.FileStamp())
	assert.Equal(t, "2019-01_to_2019-03", p.DirName())
	assert.Equal(t, "2019-1 to 2019-3", p.Label())
	assert.Len(t, p.Months(), 3)
}

func TestPeriodSameDayIsValid(t *testing.T) {
	p := NewPeriod(
		time.Date(2019, time.May, 3, 10, 0, 0, 0, time.UTC),
		time.Date(2019, time.May, 3, 0, 0, 0, 0, time.UTC),
	)
	assert.True(t, p.Valid())

	p = NewPeriod(
		time.Date(2019, time.May, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2019, time.May, 3, 0, 0, 0, 0, time.UTC),
	)
	assert.False(t, p.Valid())
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2019-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, time.February, 28, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2019-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, time.February, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("  ")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseDate("last tuesday")
	assert.True(t, errors.Is(err, ErrInvalidDate))
}

func TestParseEndDateCoversWholeMonth(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{raw: "2019-03", want: time.Date(2019, time.March, 31, 0, 0, 0, 0, time.UTC)},
		{raw: "2020-02", want: time.Date(2020, time.February, 29, 0, 0, 0, 0, time.UTC)},
		{raw: " 2019-12 ", want: time.Date(2019, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{raw: "2019-03-10", want: time.Date(2019, time.March, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParseEndDate(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}

	got, err := ParseEndDate("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseEndDate("2019-13")
	assert.ErrorIs(t, err, ErrInvalidDate)

	p := NewPeriod(time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC), time.Date(2019, time.March, 31, 0, 0, 0, 0, time.UTC))
	end, err := ParseEndDate("2019-03")
	require.NoError(t, err)
	assert.Equal(t, p.Until(), NewPeriod(p.Start, end).Until())
}
