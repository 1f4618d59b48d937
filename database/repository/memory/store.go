// Package memory is an in-process implementation of the scheduling repository,
// used for local development and as the test fixture.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"homeserve/models"
)

// Store keeps every record in maps guarded by one mutex. Writes that would
// leave two booked slots of a contractor overlapping fail with
// models.ErrOverlapConstraint, like the exclusion constraint of a relational store.
type Store struct {
	mu              sync.RWMutex
	contractors     map[string]models.ContractorProfile
	serviceRequests map[string]models.ServiceRequest
	slots           map[string]models.TimeSlot
	workOrders      map[string]models.WorkOrder
	settings        map[string]models.ManagerSettings
	blocks          map[string][]models.ManagerTimeBlock
	conflicts       []models.ScheduleConflict
	audit           []models.ScheduleAuditLog
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		contractors:     make(map[string]models.ContractorProfile),
		serviceRequests: make(map[string]models.ServiceRequest),
		slots:           make(map[string]models.TimeSlot),
		workOrders:      make(map[string]models.WorkOrder),
		settings:        make(map[string]models.ManagerSettings),
		blocks:          make(map[string][]models.ManagerTimeBlock),
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, models.ErrRecordNotFound)
}

// --- seeding, used by tests and the dev backend ---

func (s *Store) PutContractor(c models.ContractorProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contractors[c.ID] = c
}

func (s *Store) PutServiceRequest(sr models.ServiceRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serviceRequests[sr.ID] = sr
}

func (s *Store) PutWorkOrder(wo models.WorkOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workOrders[wo.ID] = wo
}

func (s *Store) PutManagerSettings(ms models.ManagerSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[ms.ManagerID] = ms
}

func (s *Store) PutManagerTimeBlock(b models.ManagerTimeBlock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	s.blocks[b.ManagerID] = append(s.blocks[b.ManagerID], b)
}

// Conflicts returns a copy of the stored conflict records.
func (s *Store) Conflicts() []models.ScheduleConflict {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ScheduleConflict(nil), s.conflicts...)
}

// AuditLogs returns a copy of the audit trail in insertion order.
func (s *Store) AuditLogs() []models.ScheduleAuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ScheduleAuditLog(nil), s.audit...)
}

// --- contractors ---

func (s *Store) GetContractorProfile(_ context.Context, id string) (*models.ContractorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contractors[id]
	if !ok {
		return nil, notFound("contractor", id)
	}
	return &c, nil
}

func (s *Store) GetServiceRequest(_ context.Context, id string) (*models.ServiceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sr, ok := s.serviceRequests[id]
	if !ok {
		return nil, notFound("service request", id)
	}
	return &sr, nil
}

// --- time slots ---

func (s *Store) GetContractorTimeSlots(_ context.Context, contractorID string, start, end *time.Time) ([]models.TimeSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.TimeSlot
	for _, ts := range s.slots {
		if ts.ContractorID != contractorID {
			continue
		}
		if start != nil && !ts.EndTime.After(*start) {
			continue
		}
		if end != nil && !ts.StartTime.Before(*end) {
			continue
		}
		out = append(out, ts)
	}
	sortSlots(out)
	return out, nil
}

func (s *Store) GetOverlappingTimeSlots(ctx context.Context, contractorID string, start, end time.Time) ([]models.TimeSlot, error) {
	return s.GetContractorTimeSlots(ctx, contractorID, &start, &end)
}

func (s *Store) CreateTimeSlot(_ context.Context, slot models.TimeSlot) (*models.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	if _, exists := s.slots[slot.ID]; exists {
		return nil, fmt.Errorf("time slot %s already exists", slot.ID)
	}
	if !slot.EndTime.After(slot.StartTime) {
		return nil, fmt.Errorf("time slot %s: end must be after start", slot.ID)
	}
	if !slot.IsAvailable {
		if err := s.checkExclusion(slot); err != nil {
			return nil, err
		}
	}
	s.slots[slot.ID] = slot
	return &slot, nil
}

func (s *Store) UpdateTimeSlot(_ context.Context, id string, patch models.TimeSlotPatch) (*models.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.slots[id]
	if !ok {
		return nil, notFound("time slot", id)
	}
	if patch.IsAvailable != nil {
		ts.IsAvailable = *patch.IsAvailable
	}
	if patch.SlotType != nil {
		ts.SlotType = *patch.SlotType
	}
	if !ts.IsAvailable {
		if err := s.checkExclusion(ts); err != nil {
			return nil, err
		}
	}
	ts.UpdatedAt = time.Now()
	s.slots[id] = ts
	return &ts, nil
}

func (s *Store) GetTimeSlot(_ context.Context, id string) (*models.TimeSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.slots[id]
	if !ok {
		return nil, notFound("time slot", id)
	}
	return &ts, nil
}

func (s *Store) DeleteTimeSlot(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[id]; !ok {
		return notFound("time slot", id)
	}
	delete(s.slots, id)
	return nil
}

// checkExclusion rejects slot if another booked slot of the same contractor
// intersects it. Callers hold s.mu.
func (s *Store) checkExclusion(slot models.TimeSlot) error {
	for _, other := range s.slots {
		if other.ID == slot.ID || other.ContractorID != slot.ContractorID || other.IsAvailable {
			continue
		}
		if slot.StartTime.Before(other.EndTime) && other.StartTime.Before(slot.EndTime) {
			return fmt.Errorf("slot %s vs %s: %w", slot.ID, other.ID, models.ErrOverlapConstraint)
		}
	}
	return nil
}

// --- work orders ---

func (s *Store) GetWorkOrdersByContractor(_ context.Context, contractorID string) ([]models.WorkOrder, error) {
	return s.filterWorkOrders(func(wo models.WorkOrder) bool { return wo.ContractorID == contractorID }), nil
}

func (s *Store) GetOverlappingWorkOrders(_ context.Context, contractorID string, start, end time.Time) ([]models.WorkOrder, error) {
	return s.filterWorkOrders(func(wo models.WorkOrder) bool {
		if wo.ContractorID != contractorID || !wo.IsScheduled() {
			return false
		}
		ws, we := wo.Window()
		return ws.Before(end) && start.Before(we)
	}), nil
}

func (s *Store) GetWorkOrdersByDateRange(_ context.Context, contractorID string, start, end time.Time) ([]models.WorkOrder, error) {
	return s.filterWorkOrders(func(wo models.WorkOrder) bool {
		if wo.ContractorID != contractorID || wo.ScheduledStartDate == nil {
			return false
		}
		ws := *wo.ScheduledStartDate
		we := ws
		if wo.ScheduledEndDate != nil {
			we = *wo.ScheduledEndDate
		}
		return !ws.After(end) && !we.Before(start)
	}), nil
}

func (s *Store) GetWorkOrdersByManager(_ context.Context, managerID string) ([]models.WorkOrder, error) {
	return s.filterWorkOrders(func(wo models.WorkOrder) bool { return wo.ManagerID == managerID }), nil
}

func (s *Store) GetWorkOrder(_ context.Context, id string) (*models.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wo, ok := s.workOrders[id]
	if !ok {
		return nil, notFound("work order", id)
	}
	return &wo, nil
}

func (s *Store) UpdateWorkOrder(_ context.Context, id string, patch models.WorkOrderPatch) (*models.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wo, ok := s.workOrders[id]
	if !ok {
		return nil, notFound("work order", id)
	}
	wo = patch.Apply(wo)
	wo.UpdatedAt = time.Now()
	s.workOrders[id] = wo
	return &wo, nil
}

func (s *Store) filterWorkOrders(keep func(models.WorkOrder) bool) []models.WorkOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.WorkOrder
	for _, wo := range s.workOrders {
		if keep(wo) {
			out = append(out, wo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- manager policy ---

func (s *Store) GetManagerSettings(_ context.Context, managerID string) (*models.ManagerSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ms, ok := s.settings[managerID]
	if !ok {
		return nil, notFound("manager settings", managerID)
	}
	return &ms, nil
}

func (s *Store) GetManagerTimeBlocks(_ context.Context, managerID string) ([]models.ManagerTimeBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ManagerTimeBlock(nil), s.blocks[managerID]...), nil
}

// --- logs ---

func (s *Store) CreateScheduleConflict(_ context.Context, c models.ScheduleConflict) (*models.ScheduleConflict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.conflicts = append(s.conflicts, c)
	return &c, nil
}

func (s *Store) CreateScheduleAuditLog(_ context.Context, e models.ScheduleAuditLog) (*models.ScheduleAuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.audit = append(s.audit, e)
	return &e, nil
}

func (s *Store) GetAuditLogsByEntity(_ context.Context, entityID string) ([]models.ScheduleAuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ScheduleAuditLog
	for _, e := range s.audit {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func sortSlots(slots []models.TimeSlot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].StartTime.Equal(slots[j].StartTime) {
			return slots[i].ID < slots[j].ID
		}
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
}
