package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayOf_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	utc := time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)

	assert.Equal(t, CalendarDay("2024-01-02"), DayOf(utc))
	assert.Equal(t, CalendarDay("2024-01-01"), DayOf(utc.In(loc)))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-02-05")
	require.NoError(t, err)
	assert.Equal(t, CalendarDay("2024-02-05"), d)

	_, err = ParseDay("2024-2-5")
	assert.Error(t, err)
	_, err = ParseDay("yesterday")
	assert.Error(t, err)
}

func TestNextMidnight(t *testing.T) {
	now := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), NextMidnight(now))

	exact := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), NextMidnight(exact))
}

func TestNextMidnight_DSTDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 2024-03-10 is 23 hours long in New York.
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
	next := NextMidnight(now)
	assert.Equal(t, CalendarDay("2024-03-11"), DayOf(next))
	assert.Equal(t, 23*time.Hour, next.Sub(now))
}

func TestDaysInMonth(t *testing.T) {
	feb := DaysInMonth(2024, time.February)
	require.Len(t, feb, 29)
	assert.Equal(t, CalendarDay("2024-02-01"), feb[0])
	assert.Equal(t, CalendarDay("2024-02-29"), feb[28])

	assert.Len(t, DaysInMonth(2023, time.February), 28)
}

func TestCalendarDay_Start(t *testing.T) {
	start, err := CalendarDay("2024-01-02").Start(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), start)
}

func TestTimeOfDay_ParseAndJSON(t *testing.T) {
	tod, err := ParseTimeOfDay("08:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 8, Minute: 30}, tod)
	assert.Equal(t, "08:30", tod.String())

	data, err := tod.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"08:30"`, string(data))

	var back TimeOfDay
	require.NoError(t, back.UnmarshalJSON([]byte(`"21:05"`)))
	assert.Equal(t, TimeOfDay{Hour: 21, Minute: 5}, back)

	assert.Error(t, back.UnmarshalJSON([]byte(`"noon"`)))
	_, err = ParseTimeOfDay("24:00")
	assert.Error(t, err)
}

func TestTimeOfDay_NextAfter(t *testing.T) {
	evening := TimeOfDay{Hour: 20}

	before := time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC), evening.NextAfter(before))

	after := time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC), evening.NextAfter(after))

	exact := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC), evening.NextAfter(exact))
}
