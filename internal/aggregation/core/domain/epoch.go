package domain

import "time"

const daysPerWeek = 7

// civilDay drops the clock part of t, keeping its wall-clock date.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from a's date to b's date, each taken in
// its own location.
func DaysBetween(a, b time.Time) int {
	return int(civilDay(b).Sub(civilDay(a)).Hours() / 24)
}

// WeekIndex numbers the week containing t relative to anchor. The anchor's
// week is 1; dates before the anchor give zero or negative indexes.
func WeekIndex(anchor, t time.Time) int {
	days := DaysBetween(anchor, t)
	q := days / daysPerWeek
	if days%daysPerWeek < 0 {
		q--
	}
	return q + 1
}

// WeekStart is midnight, in loc, of the first day of week index.
func WeekStart(anchor time.Time, index int, loc *time.Location) time.Time {
	a := anchor.In(loc)
	y, m, d := a.Date()
	return time.Date(y, m, d+(index-1)*daysPerWeek, 0, 0, 0, 0, loc)
}

// StartOfDay is midnight of t's date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
