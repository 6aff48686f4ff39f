// Package bucket sorts due dates into the named groups shown on the tasks
// page. Groups are half-open time windows computed from a reference time in
// its own location; within one layout the windows never overlap.
package bucket

import "time"

// GroupID names a due-date group. It is also the suffix of the group's
// query key.
type GroupID string

const (
	Overdue     GroupID = "overdue"
	Today       GroupID = "today"
	Tomorrow    GroupID = "tomorrow"
	Next7Days   GroupID = "next-7-days"
	ThisWeek    GroupID = "this-week"
	Next15Days  GroupID = "next-15-days"
	Upcoming    GroupID = "upcoming"
	Unscheduled GroupID = "unscheduled"
)

// Layout selects which set of groups is used.
type Layout string

const (
	Rolling  Layout = "rolling"
	Calendar Layout = "calendar"
)

// Group is one due-date window. From is inclusive and Until exclusive; a nil
// bound is open. A NoDueDate group matches only tasks without a due date.
type Group struct {
	ID           GroupID
	Name         string
	NoTasksLabel string
	From         *time.Time
	Until        *time.Time
	NoDueDate    bool
}

// Contains reports whether a task with the given due date belongs in g.
func (g Group) Contains(due *time.Time) bool {
	if g.NoDueDate || due == nil {
		return g.NoDueDate && due == nil
	}
	if g.From != nil && due.Before(*g.From) {
		return false
	}
	if g.Until != nil && !due.Before(*g.Until) {
		return false
	}
	return true
}

// Groups returns the groups of layout in display order. Unknown layouts
// fall back to Rolling.
func Groups(layout Layout, now time.Time, weekStart time.Weekday) []Group {
	if layout == Calendar {
		return CalendarGroups(now, weekStart)
	}
	return RollingGroups(now)
}

// RollingGroups counts days forward from now: overdue, today, tomorrow, the
// five days after that, then everything later.
func RollingGroups(now time.Time) []Group {
	sod := StartOfDay(now)
	sot := addDays(sod, 1)
	return []Group{
		overdue(sod),
		window(Today, "Today", "No tasks for today", sod, sot),
		window(Tomorrow, "Tomorrow", "No tasks for tomorrow", sot, addDays(sot, 1)),
		window(Next7Days, "Next 7 days", "No tasks for the next 7 days", addDays(sot, 1), addDays(sot, 6)),
		upcoming(addDays(sot, 6)),
		unscheduled(),
	}
}

// CalendarGroups follows calendar weeks: the rest of this week after
// tomorrow, then the next two weeks, then everything later. Each window
// starts no earlier than the previous one ends, so near the end of a week
// this-week may be empty.
func CalendarGroups(now time.Time, weekStart time.Weekday) []Group {
	sod := StartOfDay(now)
	sot := addDays(sod, 1)
	sow := StartOfWeek(now, weekStart)

	tomorrowEnd := addDays(sot, 1)
	weekEnd := later(addDays(sow, 7), tomorrowEnd)
	twoWeeksEnd := addDays(sow, 21)

	return []Group{
		overdue(sod),
		window(Today, "Today", "No tasks for today", sod, sot),
		window(Tomorrow, "Tomorrow", "No tasks for tomorrow", sot, tomorrowEnd),
		window(ThisWeek, "This week", "No tasks for this week", tomorrowEnd, weekEnd),
		window(Next15Days, "Next 15 days", "No tasks for the next 15 days", weekEnd, later(twoWeeksEnd, weekEnd)),
		upcoming(later(twoWeeksEnd, weekEnd)),
		unscheduled(),
	}
}

// Classify returns the first group containing due.
func Classify(groups []Group, due *time.Time) (GroupID, bool) {
	for _, g := range groups {
		if g.Contains(due) {
			return g.ID, true
		}
	}
	return "", false
}

// Find returns the group with the given id.
func Find(groups []Group, id GroupID) (Group, bool) {
	for _, g := range groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// StartOfDay returns local midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the most recent weekStart on or before t.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	back := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return addDays(StartOfDay(t), -back)
}

// addDays moves by calendar days, so a day across a DST change is still
// midnight to midnight.
func addDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func window(id GroupID, name, empty string, from, until time.Time) Group {
	return Group{ID: id, Name: name, NoTasksLabel: empty, From: &from, Until: &until}
}

func overdue(sod time.Time) Group {
	return Group{ID: Overdue, Name: "Overdue", NoTasksLabel: "No overdue tasks", Until: &sod}
}

func upcoming(from time.Time) Group {
	return Group{ID: Upcoming, Name: "Upcoming", NoTasksLabel: "No upcoming tasks", From: &from}
}

func unscheduled() Group {
	return Group{ID: Unscheduled, Name: "Unscheduled", NoTasksLabel: "No unscheduled tasks", NoDueDate: true}
}
