package models

import "time"

// SlotType classifies the kind of visit a time slot is reserved for.
type SlotType string

const (
	SlotStandard     SlotType = "standard"
	SlotEmergency    SlotType = "emergency"
	SlotInspection   SlotType = "inspection"
	SlotConsultation SlotType = "consultation"
	SlotFollowup     SlotType = "followup"
)

// Valid reports whether t is one of the known slot types.
func (t SlotType) Valid() bool {
	switch t {
	case SlotStandard, SlotEmergency, SlotInspection, SlotConsultation, SlotFollowup:
		return true
	}
	return false
}

// DurationBucket is the coarse length class of a slot, used for indexing and filtering.
type DurationBucket string

const (
	Duration1h     DurationBucket = "1h"
	Duration2h     DurationBucket = "2h"
	Duration4h     DurationBucket = "4h"
	Duration8h     DurationBucket = "8h"
	DurationCustom DurationBucket = "custom"
)

// TimeSlot is a bookable (or already booked) interval for one contractor.
type TimeSlot struct {
	ID                    string         `bson:"id" json:"id"`
	ContractorID          string         `bson:"contractorId" json:"contractorId"`
	SlotDate              string         `bson:"slotDate" json:"slotDate"`   // calendar day in the contractor's zone, e.g. "2026-03-02"
	StartTime             time.Time      `bson:"startTime" json:"startTime"` // instant
	EndTime               time.Time      `bson:"endTime" json:"endTime"`     // instant, always after StartTime
	SlotType              SlotType       `bson:"slotType" json:"slotType"`
	Duration              DurationBucket `bson:"duration" json:"duration"`
	IsAvailable           bool           `bson:"isAvailable" json:"isAvailable"` // false once booked
	IsRecurring           bool           `bson:"isRecurring" json:"isRecurring"`
	RecurrencePattern     string         `bson:"recurrencePattern,omitempty" json:"recurrencePattern,omitempty"`
	MaxConcurrentBookings int            `bson:"maxConcurrentBookings" json:"maxConcurrentBookings"`
	CreatedAt             time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// Minutes returns the slot length in whole minutes.
func (s TimeSlot) Minutes() int {
	return int(s.EndTime.Sub(s.StartTime) / time.Minute)
}

// TimeSlotPatch carries the mutable fields of a slot; nil fields are left untouched.
type TimeSlotPatch struct {
	IsAvailable *bool     `bson:"isAvailable,omitempty" json:"isAvailable,omitempty"`
	SlotType    *SlotType `bson:"slotType,omitempty" json:"slotType,omitempty"`
}
