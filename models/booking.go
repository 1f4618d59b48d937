package models

import "time"

// Work order statuses the scheduler cares about.
const (
	WorkOrderPending    = "pending"
	WorkOrderScheduled  = "scheduled"
	WorkOrderInProgress = "in_progress"
	WorkOrderCompleted  = "completed"
	WorkOrderCancelled  = "cancelled"
)

// WorkOrder carries the scheduling-relevant fields of a work order. It is created
// by the work-order flow; scheduling only ever updates these fields.
type WorkOrder struct {
	ID                     string     `bson:"id" json:"id"`
	ContractorID           string     `bson:"contractorId" json:"contractorId"`
	ManagerID              string     `bson:"managerId,omitempty" json:"managerId,omitempty"`
	ServiceRequestID       string     `bson:"serviceRequestId,omitempty" json:"serviceRequestId,omitempty"`
	Status                 string     `bson:"status" json:"status"`
	ScheduledStartDate     *time.Time `bson:"scheduledStartDate,omitempty" json:"scheduledStartDate,omitempty"`
	ScheduledEndDate       *time.Time `bson:"scheduledEndDate,omitempty" json:"scheduledEndDate,omitempty"`
	AssignedSlotID         string     `bson:"assignedSlotId,omitempty" json:"assignedSlotId,omitempty"`
	SlotType               SlotType   `bson:"slotType,omitempty" json:"slotType,omitempty"`
	ScheduledDuration      int        `bson:"scheduledDuration,omitempty" json:"scheduledDuration,omitempty"` // minutes
	HasSchedulingConflicts bool       `bson:"hasSchedulingConflicts" json:"hasSchedulingConflicts"`
	ConflictOverrideReason string     `bson:"conflictOverrideReason,omitempty" json:"conflictOverrideReason,omitempty"`
	ConflictOverrideBy     string     `bson:"conflictOverrideBy,omitempty" json:"conflictOverrideBy,omitempty"`
	ConflictOverrideAt     *time.Time `bson:"conflictOverrideAt,omitempty" json:"conflictOverrideAt,omitempty"`
	UpdatedAt              time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// IsScheduled reports whether the work order occupies a window on the calendar.
func (w WorkOrder) IsScheduled() bool {
	return w.Status != WorkOrderCancelled && w.ScheduledStartDate != nil && w.ScheduledEndDate != nil
}

// Window returns the scheduled interval. Callers must check IsScheduled first.
func (w WorkOrder) Window() (time.Time, time.Time) {
	return *w.ScheduledStartDate, *w.ScheduledEndDate
}

// WorkOrderPatch updates scheduling fields. Nil pointers are left untouched; the
// Clear flag wipes all scheduling fields before anything else is applied.
type WorkOrderPatch struct {
	Clear                  bool       `json:"clear,omitempty"`
	Status                 *string    `json:"status,omitempty"`
	ScheduledStartDate     *time.Time `json:"scheduledStartDate,omitempty"`
	ScheduledEndDate       *time.Time `json:"scheduledEndDate,omitempty"`
	AssignedSlotID         *string    `json:"assignedSlotId,omitempty"`
	SlotType               *SlotType  `json:"slotType,omitempty"`
	ScheduledDuration      *int       `json:"scheduledDuration,omitempty"`
	HasSchedulingConflicts *bool      `json:"hasSchedulingConflicts,omitempty"`
	ConflictOverrideReason *string    `json:"conflictOverrideReason,omitempty"`
	ConflictOverrideBy     *string    `json:"conflictOverrideBy,omitempty"`
	ConflictOverrideAt     *time.Time `json:"conflictOverrideAt,omitempty"`
}

// Apply returns a copy of w with the patch applied.
func (p WorkOrderPatch) Apply(w WorkOrder) WorkOrder {
	if p.Clear {
		w.ScheduledStartDate = nil
		w.ScheduledEndDate = nil
		w.AssignedSlotID = ""
		w.SlotType = ""
		w.ScheduledDuration = 0
		w.HasSchedulingConflicts = false
		w.ConflictOverrideReason = ""
		w.ConflictOverrideBy = ""
		w.ConflictOverrideAt = nil
	}
	if p.Status != nil {
		w.Status = *p.Status
	}
	if p.ScheduledStartDate != nil {
		w.ScheduledStartDate = p.ScheduledStartDate
	}
	if p.ScheduledEndDate != nil {
		w.ScheduledEndDate = p.ScheduledEndDate
	}
	if p.AssignedSlotID != nil {
		w.AssignedSlotID = *p.AssignedSlotID
	}
	if p.SlotType != nil {
		w.SlotType = *p.SlotType
	}
	if p.ScheduledDuration != nil {
		w.ScheduledDuration = *p.ScheduledDuration
	}
	if p.HasSchedulingConflicts != nil {
		w.HasSchedulingConflicts = *p.HasSchedulingConflicts
	}
	if p.ConflictOverrideReason != nil {
		w.ConflictOverrideReason = *p.ConflictOverrideReason
	}
	if p.ConflictOverrideBy != nil {
		w.ConflictOverrideBy = *p.ConflictOverrideBy
	}
	if p.ConflictOverrideAt != nil {
		w.ConflictOverrideAt = p.ConflictOverrideAt
	}
	return w
}
