package scheduling

import (
	"context"
	"time"

	"homeserve/models"
)

// ContractorStore resolves contractors and the service requests their jobs fulfil.
type ContractorStore interface {
	GetContractorProfile(ctx context.Context, id string) (*models.ContractorProfile, error)
	GetServiceRequest(ctx context.Context, id string) (*models.ServiceRequest, error)
}

// SlotStore persists time slots. Create and Update must reject, with
// models.ErrOverlapConstraint, any write that leaves two unavailable slots of
// one contractor overlapping.
type SlotStore interface {
	// GetContractorTimeSlots lists a contractor's slots; nil bounds are open.
	GetContractorTimeSlots(ctx context.Context, contractorID string, start, end *time.Time) ([]models.TimeSlot, error)
	GetOverlappingTimeSlots(ctx context.Context, contractorID string, start, end time.Time) ([]models.TimeSlot, error)
	CreateTimeSlot(ctx context.Context, slot models.TimeSlot) (*models.TimeSlot, error)
	UpdateTimeSlot(ctx context.Context, id string, patch models.TimeSlotPatch) (*models.TimeSlot, error)
	GetTimeSlot(ctx context.Context, id string) (*models.TimeSlot, error)
	DeleteTimeSlot(ctx context.Context, id string) error
}

// WorkOrderStore reads work orders and updates their scheduling fields.
type WorkOrderStore interface {
	GetWorkOrdersByContractor(ctx context.Context, contractorID string) ([]models.WorkOrder, error)
	GetOverlappingWorkOrders(ctx context.Context, contractorID string, start, end time.Time) ([]models.WorkOrder, error)
	GetWorkOrdersByDateRange(ctx context.Context, contractorID string, start, end time.Time) ([]models.WorkOrder, error)
	UpdateWorkOrder(ctx context.Context, id string, patch models.WorkOrderPatch) (*models.WorkOrder, error)
	GetWorkOrder(ctx context.Context, id string) (*models.WorkOrder, error)
	GetWorkOrdersByManager(ctx context.Context, managerID string) ([]models.WorkOrder, error)
}

// PolicyStore serves manager scheduling policy.
type PolicyStore interface {
	GetManagerSettings(ctx context.Context, managerID string) (*models.ManagerSettings, error)
	GetManagerTimeBlocks(ctx context.Context, managerID string) ([]models.ManagerTimeBlock, error)
}

// LogStore appends conflict and audit records and reads the audit trail back.
type LogStore interface {
	CreateScheduleConflict(ctx context.Context, conflict models.ScheduleConflict) (*models.ScheduleConflict, error)
	CreateScheduleAuditLog(ctx context.Context, entry models.ScheduleAuditLog) (*models.ScheduleAuditLog, error)
	GetAuditLogsByEntity(ctx context.Context, entityID string) ([]models.ScheduleAuditLog, error)
}

// Repository is everything the scheduling service needs from storage.
type Repository interface {
	ContractorStore
	SlotStore
	WorkOrderStore
	PolicyStore
	LogStore
}
