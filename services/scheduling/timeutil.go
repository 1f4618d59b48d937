package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone rules must not depend on the host image

	"homeserve/models"
)

const dateLayout = "2006-01-02"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Expand widens [start, end) by pad on both sides.
func Expand(start, end time.Time, pad time.Duration) (time.Time, time.Time) {
	return start.Add(-pad), end.Add(pad)
}

// Gap is the idle time between two intervals, negative when they overlap.
func Gap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	if !aEnd.After(bStart) {
		return bStart.Sub(aEnd)
	}
	if !bEnd.After(aStart) {
		return aStart.Sub(bEnd)
	}
	overlapStart, overlapEnd := aStart, aEnd
	if bStart.After(overlapStart) {
		overlapStart = bStart
	}
	if bEnd.Before(overlapEnd) {
		overlapEnd = bEnd
	}
	return -overlapEnd.Sub(overlapStart)
}

// BucketFor maps a slot length in minutes to its duration bucket.
func BucketFor(minutes int) models.DurationBucket {
	switch minutes {
	case 60:
		return models.Duration1h
	case 120:
		return models.Duration2h
	case 240:
		return models.Duration4h
	case 480:
		return models.Duration8h
	}
	return models.DurationCustom
}

// ParseClock parses a wall-clock "HH:MM" string.
func ParseClock(clock string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return 0, 0, fmt.Errorf("clock %q: want HH:MM", clock)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 24 {
		return 0, 0, fmt.Errorf("clock %q: bad hour", clock)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return 0, 0, fmt.Errorf("clock %q: bad minute", clock)
	}
	return hour, minute, nil
}

// AtClock composes the wall-clock time on day's calendar date in loc. A wall time
// inside a DST gap is shifted by the transition, as time.Date does.
func AtClock(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	d := day.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc), nil
}

// StartOfDay returns local midnight of t's calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	d := t.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// NextDay returns local midnight of the day after day. Calendar arithmetic keeps
// it correct on 23 and 25 hour days.
func NextDay(day time.Time, loc *time.Location) time.Time {
	d := day.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, loc)
}

// DateKey formats t's calendar date in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

// ParseDate parses "2006-01-02" as local midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, date, loc)
}
