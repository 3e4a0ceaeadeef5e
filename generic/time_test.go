package generic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	late := time.Date(2011, time.September, 7, 23, 59, 59, 999, time.UTC)
	assert.True(t, DateOf(late).Equal(NewTimePoint(2011, time.September, 7)))
}

func TestDateOf_UsesOwnLocation(t *testing.T) {
	// GIVEN: 01:00 on Sep 8 in UTC+2, which is still Sep 7 in UTC
	tz := time.FixedZone("UTC+2", 2*60*60)
	t1 := time.Date(2011, time.September, 8, 1, 0, 0, 0, tz)

	// THEN: The calendar date is the one shown on the caller's clock
	assert.Equal(t, "2011-09-08", DateOf(t1).String())
}

func TestDaysBetween(t *testing.T) {
	a := NewTimePoint(2011, time.September, 7)
	b := NewTimePoint(2012, time.September, 7)

	assert.Equal(t, 366, DaysBetween(a, b))
	assert.Equal(t, -366, DaysBetween(b, a))
	assert.Equal(t, 366, AbsDaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestDaysBetween_LongSpan(t *testing.T) {
	// GIVEN: Dates further apart than a time.Duration can hold
	origin := NewTimePoint(2011, time.September, 7)
	far := NewTimePoint(2400, time.January, 5)

	// THEN: The day count is still exact
	assert.Equal(t, 141834, DaysBetween(origin, far))
	assert.Equal(t, -141834, DaysBetween(far, origin))
	assert.Equal(t, 141834, AbsDaysBetween(far, origin))
	assert.Equal(t, 1, DaysBetween(far, far.AddDays(1)))
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	a := TimePoint{Time: time.Date(2011, time.September, 7, 22, 0, 0, 0, time.UTC)}
	b := TimePoint{Time: time.Date(2011, time.September, 8, 1, 0, 0, 0, time.UTC)}
	assert.Equal(t, 1, DaysBetween(a, b))
}

func TestTimePoint_Comparison(t *testing.T) {
	a := NewTimePoint(2011, time.September, 7)
	b := a.AddDays(1)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, b.AfterOrEqual(a))
	assert.False(t, a.Equal(b))
	assert.Equal(t, "2011-09-08", b.String())
}

func TestWeekdayIndex(t *testing.T) {
	monday := NewTimePoint(2011, time.September, 5)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i, monday.AddDays(i).WeekdayIndex())
	}
}

func TestParseDate(t *testing.T) {
	tp, err := ParseDate("2011-09-07")
	require.NoError(t, err)
	assert.Equal(t, NewTimePoint(2011, time.September, 7), tp)

	_, err = ParseDate("07/09/2011")
	assert.Error(t, err)
}

func TestIsMidnight(t *testing.T) {
	assert.True(t, IsMidnight(time.Date(2011, time.September, 7, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsMidnight(time.Date(2011, time.September, 7, 0, 0, 0, 1, time.UTC)))
	assert.False(t, IsMidnight(time.Date(2011, time.September, 7, 12, 0, 0, 0, time.UTC)))
}
