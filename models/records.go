package models

import "time"

// ConflictType is the severity class of a scheduling conflict.
type ConflictType string

const (
	ConflictHard   ConflictType = "hard"
	ConflictSoft   ConflictType = "soft"
	ConflictTravel ConflictType = "travel"
)

// ScheduleConflict is the persisted record of a conflict that a booking went ahead with.
type ScheduleConflict struct {
	ID                    string       `bson:"id" json:"id"`
	ConflictType          ConflictType `bson:"conflictType" json:"conflictType"`
	WorkOrderID           string       `bson:"workOrderId" json:"workOrderId"`
	ContractorID          string       `bson:"contractorId" json:"contractorId"`
	ConflictStart         time.Time    `bson:"conflictStart" json:"conflictStart"`
	ConflictEnd           time.Time    `bson:"conflictEnd" json:"conflictEnd"`
	ConflictingWorkOrders []string     `bson:"conflictingWorkOrders,omitempty" json:"conflictingWorkOrders,omitempty"`
	ConflictingSlots      []string     `bson:"conflictingSlots,omitempty" json:"conflictingSlots,omitempty"`
	DetectionMethod       string       `bson:"detectionMethod" json:"detectionMethod"`
	Description           string       `bson:"description" json:"description"`
	IsResolved            bool         `bson:"isResolved" json:"isResolved"`
	ResolvedBy            string       `bson:"resolvedBy,omitempty" json:"resolvedBy,omitempty"`
	ResolvedAt            *time.Time   `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	ResolutionNotes       string       `bson:"resolutionNotes,omitempty" json:"resolutionNotes,omitempty"`
	AdminOverride         bool         `bson:"adminOverride" json:"adminOverride"`
	CreatedAt             time.Time    `bson:"createdAt" json:"createdAt"`
}

// AuditAction names a schedule audit event.
type AuditAction string

const (
	AuditScheduleCreated   AuditAction = "schedule_created"
	AuditScheduleUpdated   AuditAction = "schedule_updated"
	AuditScheduleCancelled AuditAction = "schedule_cancelled"
	AuditConflictDetected  AuditAction = "conflict_detected"
	AuditAdminOverride     AuditAction = "admin_override"
	AuditSlotGenerated     AuditAction = "slot_generated"
)

// ScheduleAuditLog is one append-only audit event.
type ScheduleAuditLog struct {
	ID             string         `bson:"id" json:"id"`
	Action         AuditAction    `bson:"action" json:"action"`
	EntityType     string         `bson:"entityType" json:"entityType"` // "work_order", "time_slot", "contractor"
	EntityID       string         `bson:"entityId" json:"entityId"`
	UserID         string         `bson:"userId,omitempty" json:"userId,omitempty"`
	UserRole       string         `bson:"userRole,omitempty" json:"userRole,omitempty"`
	OldValue       map[string]any `bson:"oldValue,omitempty" json:"oldValue,omitempty"`
	NewValue       map[string]any `bson:"newValue,omitempty" json:"newValue,omitempty"`
	ChangedFields  []string       `bson:"changedFields,omitempty" json:"changedFields,omitempty"`
	Reason         string         `bson:"reason,omitempty" json:"reason,omitempty"`
	AdminOverride  bool           `bson:"adminOverride" json:"adminOverride"`
	AdditionalData map[string]any `bson:"additionalData,omitempty" json:"additionalData,omitempty"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
}
