package bucket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday.
var now = time.Date(2024, time.March, 6, 15, 30, 0, 0, time.UTC)

func at(t time.Time) *time.Time { return &t }

func day(d, hour int) *time.Time {
	return at(time.Date(2024, time.March, d, hour, 0, 0, 0, time.UTC))
}

func TestRollingGroups_Classify(t *testing.T) {
	groups := RollingGroups(now)
	sod := StartOfDay(now)

	tests := []struct {
		name string
		due  *time.Time
		want GroupID
	}{
		{"no due date", nil, Unscheduled},
		{"yesterday", day(5, 23), Overdue},
		{"start of today", at(sod), Today},
		{"later today", day(6, 23), Today},
		{"start of tomorrow", at(sod.AddDate(0, 0, 1)), Tomorrow},
		{"day after tomorrow", day(8, 0), Next7Days},
		{"last instant before a week out", at(sod.AddDate(0, 0, 7).Add(-time.Nanosecond)), Next7Days},
		{"exactly a week out", at(sod.AddDate(0, 0, 7)), Upcoming},
		{"next month", day(31, 12), Upcoming},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(groups, tt.due)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRollingGroups_Disjoint(t *testing.T) {
	groups := RollingGroups(now)

	for h := -48; h < 24*14; h++ {
		due := StartOfDay(now).Add(time.Duration(h) * time.Hour)
		matches := 0
		for _, g := range groups {
			if g.Contains(&due) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "due %s", due)
	}
}

func TestCalendarGroups_SundayStart(t *testing.T) {
	groups := CalendarGroups(now, time.Sunday)

	tests := []struct {
		name string
		due  *time.Time
		want GroupID
	}{
		{"today", day(6, 9), Today},
		{"tomorrow", day(7, 9), Tomorrow},
		{"friday", day(8, 9), ThisWeek},
		{"saturday", day(9, 23), ThisWeek},
		{"next sunday", day(10, 0), Next15Days},
		{"saturday after next", day(23, 23), Next15Days},
		{"three sundays out", day(24, 0), Upcoming},
		{"last week", day(1, 9), Overdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(groups, tt.due)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalendarGroups_MondayStart(t *testing.T) {
	groups := CalendarGroups(now, time.Monday)

	got, _ := Classify(groups, day(10, 12))
	assert.Equal(t, ThisWeek, got)

	got, _ = Classify(groups, day(11, 0))
	assert.Equal(t, Next15Days, got)
}

func TestCalendarGroups_LastDayOfWeekHasEmptyThisWeek(t *testing.T) {
	saturday := time.Date(2024, time.March, 9, 10, 0, 0, 0, time.UTC)
	groups := CalendarGroups(saturday, time.Sunday)

	thisWeek, ok := Find(groups, ThisWeek)
	require.True(t, ok)
	assert.Equal(t, *thisWeek.From, *thisWeek.Until)

	got, _ := Classify(groups, day(10, 12))
	assert.Equal(t, Tomorrow, got)
	got, _ = Classify(groups, day(11, 12))
	assert.Equal(t, Next15Days, got)
}

func TestGroups_Layout(t *testing.T) {
	assert.Len(t, Groups(Rolling, now, time.Sunday), 6)
	assert.Len(t, Groups(Calendar, now, time.Sunday), 7)
	assert.Len(t, Groups("other", now, time.Sunday), 6)
}

func TestStartOfWeek(t *testing.T) {
	assert.Equal(t, time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), StartOfWeek(now, time.Sunday))
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), StartOfWeek(now, time.Monday))
	assert.Equal(t, time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC), StartOfWeek(now, time.Wednesday))
}

func TestAddDays_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// DST starts 2024-03-10 in New York; that day is 23 hours long.
	sat := time.Date(2024, time.March, 9, 12, 0, 0, 0, loc)

	groups := RollingGroups(sat)
	tomorrow, _ := Find(groups, Tomorrow)

	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, loc), *tomorrow.From)
	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, loc), *tomorrow.Until)
}
