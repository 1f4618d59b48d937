package models

import (
	"strings"
	"time"
)

// WorkingDay holds one weekday's wall-clock working window, e.g. "08:00" to "17:00".
type WorkingDay struct {
	Start string `bson:"start" json:"start" binding:"required"`
	End   string `bson:"end" json:"end" binding:"required"`
}

// BreakWindow is a recurring wall-clock pause inside working hours. An empty Day
// applies the break to every working day.
type BreakWindow struct {
	Day   string `bson:"day,omitempty" json:"day,omitempty"` // lower-case weekday, e.g. "monday"
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// AppliesTo reports whether the break is in effect on weekday wd.
func (b BreakWindow) AppliesTo(wd time.Weekday) bool {
	return b.Day == "" || strings.EqualFold(b.Day, wd.String())
}

// DefaultWorkingHours is used for contractors that never configured a template:
// Monday to Friday, 08:00 to 17:00.
func DefaultWorkingHours() map[string]WorkingDay {
	week := make(map[string]WorkingDay, 5)
	for _, wd := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday} {
		week[WeekdayKey(wd)] = WorkingDay{Start: "08:00", End: "17:00"}
	}
	return week
}

// WeekdayKey is the map key used for wd in working-hour templates.
func WeekdayKey(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}
