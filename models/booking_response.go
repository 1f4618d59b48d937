package models

import "time"

// ConflictCode identifies which check produced a conflict.
type ConflictCode string

const (
	CodeOverlap        ConflictCode = "overlap"
	CodeServiceWindow  ConflictCode = "service_window"
	CodeBlackout       ConflictCode = "blackout"
	CodeDailyCapacity  ConflictCode = "daily_capacity"
	CodeTurnoverBuffer ConflictCode = "turnover_buffer"
	CodeTravelTime     ConflictCode = "travel_time"
)

// ConflictDetail is one finding of the conflict detector.
type ConflictDetail struct {
	Type                  ConflictType `json:"type"`
	Code                  ConflictCode `json:"code"`
	Description           string       `json:"description"`
	CanOverride           bool         `json:"canOverride"`
	ConflictStart         time.Time    `json:"conflictStart"`
	ConflictEnd           time.Time    `json:"conflictEnd"`
	ConflictingWorkOrders []string     `json:"conflictingWorkOrders,omitempty"`
	ConflictingSlots      []string     `json:"conflictingSlots,omitempty"`
}

// BookingResult is returned by the booking arbiter. A rejection is a normal
// result with Success false, not an error.
type BookingResult struct {
	Success      bool             `json:"success"`
	Message      string           `json:"message,omitempty"`
	Conflicts    []ConflictDetail `json:"conflicts"`
	Booking      *Booking         `json:"booking,omitempty"`
	Alternatives []TimeSlot       `json:"alternatives,omitempty"`
}

// Booking describes a committed booking.
type Booking struct {
	Slot            TimeSlot   `json:"slot"`
	WorkOrder       *WorkOrder `json:"workOrder,omitempty"`
	OverrideApplied bool       `json:"overrideApplied"`
	ConflictIDs     []string   `json:"conflictIds,omitempty"`
}

// PreferredDateMatch is the availability found for one preference, in input order.
type PreferredDateMatch struct {
	Preference int        `json:"preference"` // 1-based position in the request
	Date       string     `json:"date"`
	Time       string     `json:"time,omitempty"`
	Slots      []TimeSlot `json:"slots"`
}
