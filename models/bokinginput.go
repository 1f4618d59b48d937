package models

import "time"

// BookingRequest asks the scheduler to place a work order on a contractor's calendar.
type BookingRequest struct {
	ContractorID   string    `json:"contractorId" binding:"required"`
	WorkOrderID    string    `json:"workOrderId"`
	SlotID         string    `json:"slotId,omitempty"` // book this exact generated slot
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	SlotType       SlotType  `json:"slotType,omitempty"`
	Timezone       string    `json:"timezone,omitempty"`
	AdminOverride  bool      `json:"adminOverride,omitempty"`
	OverrideReason string    `json:"overrideReason,omitempty"`
	UserID         string    `json:"-"`
	UserRole       string    `json:"-"`
}

// Minutes returns the requested duration in whole minutes.
func (r BookingRequest) Minutes() int {
	return int(r.EndTime.Sub(r.StartTime) / time.Minute)
}

// SlotGenerationRequest asks for bookable slots over a date range.
type SlotGenerationRequest struct {
	ContractorID        string    `json:"contractorId"`
	Range               DateRange `json:"range"`
	Timezone            string    `json:"timezone,omitempty"`
	SlotDurationMinutes int       `json:"slotDurationMinutes,omitempty"`
	SlotType            SlotType  `json:"slotType,omitempty"`
}

// PreferredDate is one member-submitted scheduling preference. Time is an
// optional wall-clock "HH:MM".
type PreferredDate struct {
	Date string `json:"date" binding:"required"` // "2006-01-02"
	Time string `json:"time,omitempty"`
}

// Actor identifies who triggered a scheduling action.
type Actor struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// Roles allowed to override scheduling conflicts.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// CanOverride reports whether the actor may force a booking through conflicts.
func (a Actor) CanOverride() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}
