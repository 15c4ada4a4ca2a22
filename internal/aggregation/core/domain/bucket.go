package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Granularity string

const (
	Hour   Granularity = "hour"
	Day    Granularity = "day"
	Week   Granularity = "week"
	Month  Granularity = "month"
	Minute Granularity = "minute"
)

var Granularities = []Granularity{Hour, Day, Week, Month, Minute}

func ParseGranularity(s string) (Granularity, bool) {
	for _, g := range Granularities {
		if string(g) == s {
			return g, true
		}
	}
	return "", false
}

const (
	hourKeyLayout  = "20060102_15"
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
	weekKeyPrefix  = "Week_"
)

// MinuteSlot is the width of a minute bucket.
const MinuteSlot = 5

func HourKey(t time.Time) string  { return t.Format(hourKeyLayout) }
func DayKey(t time.Time) string   { return t.Format(dayKeyLayout) }
func MonthKey(t time.Time) string { return t.Format(monthKeyLayout) }
func WeekKey(index int) string    { return weekKeyPrefix + strconv.Itoa(index) }

// MinuteKey is YYYYMMDD_HH_MM with MM floored to a MinuteSlot boundary.
func MinuteKey(t time.Time) string {
	return fmt.Sprintf("%s_%02d", t.Format(hourKeyLayout), t.Minute()/MinuteSlot*MinuteSlot)
}

// MinuteKeyDate returns the YYYYMMDD part of a minute key.
func MinuteKeyDate(key string) string {
	if len(key) < 8 {
		return ""
	}
	return key[:8]
}

func ParseWeekKey(key string) (int, bool) {
	if !strings.HasPrefix(key, weekKeyPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(key, weekKeyPrefix))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ValidBucketKey reports whether key is well formed for g.
func ValidBucketKey(g Granularity, key string) bool {
	switch g {
	case Hour:
		_, err := time.Parse(hourKeyLayout, key)
		return err == nil
	case Day:
		_, err := time.Parse(dayKeyLayout, key)
		return err == nil
	case Month:
		_, err := time.Parse(monthKeyLayout, key)
		return err == nil
	case Minute:
		t, err := time.Parse("20060102_15_04", key)
		return err == nil && t.Minute()%MinuteSlot == 0
	case Week:
		_, ok := ParseWeekKey(key)
		return ok
	}
	return false
}

// CompareBucketKeys orders keys of one granularity chronologically.
// Week keys compare by index; every other layout sorts lexically.
func CompareBucketKeys(g Granularity, a, b string) int {
	if g == Week {
		na, _ := ParseWeekKey(a)
		nb, _ := ParseWeekKey(b)
		return na - nb
	}
	return strings.Compare(a, b)
}

// MachineCounts maps machine id to its counters within one bucket.
type MachineCounts map[string]*CounterEntry

// BucketMap maps a bucket key to the counters of every machine seen in it.
type BucketMap map[string]MachineCounts

// Entry returns the counter of machineID in bucket key. A missing counter is
// created with newEntry and stored before it is returned.
func (b BucketMap) Entry(key, machineID string, newEntry func() *CounterEntry) *CounterEntry {
	mc, ok := b[key]
	if !ok {
		mc = MachineCounts{}
		b[key] = mc
	}
	e, ok := mc[machineID]
	if !ok {
		e = newEntry()
		mc[machineID] = e
	}
	return e
}

func (b BucketMap) Lookup(key, machineID string) (*CounterEntry, bool) {
	mc, ok := b[key]
	if !ok {
		return nil, false
	}
	e, ok := mc[machineID]
	return e, ok
}
