package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"homeserve/models"
)

const overrideReasonDefault = "admin override"

// bookingPlan is a validated booking request with the records it touches.
type bookingPlan struct {
	req       models.BookingRequest
	slot      *models.TimeSlot  // existing available slot to claim, nil to create one
	workOrder *models.WorkOrder // nil for a slot-only booking
}

// ownsSlot reports whether id belongs to the booking itself: the slot being
// claimed or the one the work order already holds.
func (p *bookingPlan) ownsSlot(id string) bool {
	if p.slot != nil && p.slot.ID == id {
		return true
	}
	return p.workOrder != nil && p.workOrder.AssignedSlotID == id
}

// prepare validates req and resolves the slot and work order it refers to.
func (s *Service) prepare(ctx context.Context, req models.BookingRequest) (*bookingPlan, error) {
	plan := &bookingPlan{}

	if req.SlotID != "" {
		slot, err := s.repo.GetTimeSlot(ctx, req.SlotID)
		if err != nil {
			return nil, lookup("time slot", req.SlotID, err)
		}
		if slot.ContractorID != req.ContractorID {
			return nil, invalid("slot %s does not belong to contractor %s", slot.ID, req.ContractorID)
		}
		if !slot.IsAvailable {
			return nil, newError(CodeSlotUnavailable, nil, "slot %s is already booked", slot.ID)
		}
		if req.StartTime.IsZero() && req.EndTime.IsZero() {
			req.StartTime, req.EndTime = slot.StartTime, slot.EndTime
		} else if !req.StartTime.Equal(slot.StartTime) || !req.EndTime.Equal(slot.EndTime) {
			return nil, invalid("requested window does not match slot %s", slot.ID)
		}
		if req.SlotType == "" {
			req.SlotType = slot.SlotType
		}
		plan.slot = slot
	}

	if req.StartTime.IsZero() || !req.EndTime.After(req.StartTime) {
		return nil, invalid("endTime must be after startTime")
	}
	if req.SlotType == "" {
		req.SlotType = models.SlotStandard
	}
	if !req.SlotType.Valid() {
		return nil, invalid("unknown slot type %q", req.SlotType)
	}
	if req.AdminOverride && !(models.Actor{UserID: req.UserID, Role: req.UserRole}).CanOverride() {
		return nil, newError(CodeForbidden, nil, "role %q may not override scheduling conflicts", req.UserRole)
	}

	if req.WorkOrderID != "" {
		wo, err := s.repo.GetWorkOrder(ctx, req.WorkOrderID)
		if err != nil {
			return nil, lookup("work order", req.WorkOrderID, err)
		}
		if wo.ContractorID != "" && wo.ContractorID != req.ContractorID {
			return nil, invalid("work order %s is assigned to another contractor", wo.ID)
		}
		if wo.Status == models.WorkOrderCancelled || wo.Status == models.WorkOrderCompleted {
			return nil, invalid("work order %s is %s", wo.ID, wo.Status)
		}
		plan.workOrder = wo
	}

	if plan.slot == nil {
		slots, err := s.repo.GetOverlappingTimeSlots(ctx, req.ContractorID, req.StartTime, req.EndTime)
		if err != nil {
			return nil, fmt.Errorf("load candidate slots: %w", err)
		}
		for i := range slots {
			ts := slots[i]
			// the work order's own slot is reused when the window does not move
			if (ts.IsAvailable || plan.ownsSlot(ts.ID)) && ts.StartTime.Equal(req.StartTime) && ts.EndTime.Equal(req.EndTime) {
				plan.slot = &ts
				break
			}
		}
	}

	plan.req = req
	return plan, nil
}

// BookSlot arbitrates a booking request. Non-overridable conflicts always
// reject. Overridable ones reject unless an admin override is supplied, and
// such a rejection carries up to AlternativeLimit alternative slots.
// Rejections are results, not errors.
func (s *Service) BookSlot(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error) {
	unlock, err := s.locker.Lock(ctx, contractorLockKey(req.ContractorID))
	if err != nil {
		return nil, fmt.Errorf("lock contractor %s: %w", req.ContractorID, err)
	}
	defer unlock()

	cc, err := s.loadContractor(ctx, req.ContractorID, req.Timezone)
	if err != nil {
		return nil, err
	}
	plan, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	conflicts, err := s.detect(ctx, cc, plan)
	if err != nil {
		return nil, err
	}

	blocked := false
	for _, c := range conflicts {
		if !c.CanOverride {
			blocked = true
			break
		}
	}
	if blocked || (len(conflicts) > 0 && !plan.req.AdminOverride) {
		return s.reject(ctx, plan, conflicts, blocked), nil
	}
	return s.commit(ctx, cc, plan, conflicts)
}

// HandleAdminOverride force-books req through overridable conflicts on behalf
// of an admin or manager. Non-overridable conflicts still reject.
func (s *Service) HandleAdminOverride(ctx context.Context, req models.BookingRequest, reason string, actor models.Actor) (*models.BookingResult, error) {
	if !actor.CanOverride() {
		return nil, newError(CodeForbidden, nil, "role %q may not override scheduling conflicts", actor.Role)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, invalid("an override reason is required")
	}
	req.AdminOverride = true
	req.OverrideReason = reason
	req.UserID = actor.UserID
	req.UserRole = actor.Role
	return s.BookSlot(ctx, req)
}

func (s *Service) reject(ctx context.Context, plan *bookingPlan, conflicts []models.ConflictDetail, blocked bool) *models.BookingResult {
	req := plan.req
	result := &models.BookingResult{Success: false, Conflicts: conflicts}
	if blocked {
		result.Message = "booking blocked by manager policy"
	} else {
		result.Message = "booking has conflicts; an admin override is required"
		alts, err := s.alternatives(ctx, req)
		if err != nil {
			s.logger.Warn("scheduling: alternative search failed",
				zap.String("contractorID", req.ContractorID), zap.Error(err))
		}
		result.Alternatives = alts
	}

	s.logger.Info("scheduling: booking rejected",
		zap.String("contractorID", req.ContractorID),
		zap.String("workOrderID", req.WorkOrderID),
		zap.Int("conflicts", len(conflicts)),
		zap.Bool("blocked", blocked))

	codes := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		codes = append(codes, string(c.Code))
	}
	entityType, entityID := "contractor", req.ContractorID
	if req.WorkOrderID != "" {
		entityType, entityID = "work_order", req.WorkOrderID
	}
	s.audit(ctx, models.ScheduleAuditLog{
		Action:     models.AuditConflictDetected,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     req.UserID,
		UserRole:   req.UserRole,
		AdditionalData: map[string]any{
			"startTime":    req.StartTime,
			"endTime":      req.EndTime,
			"conflicts":    codes,
			"blocked":      blocked,
			"alternatives": len(result.Alternatives),
		},
	})
	return result
}

func (s *Service) commit(ctx context.Context, cc *contractorContext, plan *bookingPlan, conflicts []models.ConflictDetail) (*models.BookingResult, error) {
	req := plan.req
	now := s.cfg.Now()
	overridden := len(conflicts) > 0

	// A reschedule onto a window that overlaps the work order's current slot
	// must free that slot first, or the exclusion constraint rejects the move.
	prev, releasedEarly, err := s.releaseOverlappingPrevious(ctx, plan)
	if err != nil {
		return nil, err
	}
	restorePrev := func() {
		if releasedEarly {
			s.rebookSlot(ctx, prev)
		}
	}

	var slot *models.TimeSlot
	created := false
	if plan.slot != nil {
		booked := false
		slot, err = s.repo.UpdateTimeSlot(ctx, plan.slot.ID, models.TimeSlotPatch{IsAvailable: &booked, SlotType: &req.SlotType})
		if err != nil {
			restorePrev()
			return nil, commitErr("claim slot "+plan.slot.ID, err)
		}
	} else {
		slot, err = s.repo.CreateTimeSlot(ctx, models.TimeSlot{
			ID:                    uuid.New().String(),
			ContractorID:          req.ContractorID,
			SlotDate:              DateKey(req.StartTime, cc.loc),
			StartTime:             req.StartTime,
			EndTime:               req.EndTime,
			SlotType:              req.SlotType,
			Duration:              BucketFor(req.Minutes()),
			IsAvailable:           false,
			MaxConcurrentBookings: 1,
			CreatedAt:             now,
			UpdatedAt:             now,
		})
		if err != nil {
			restorePrev()
			return nil, commitErr("create slot", err)
		}
		created = true
	}

	booking := &models.Booking{Slot: *slot, OverrideApplied: overridden}
	var previous *models.WorkOrder
	if plan.workOrder != nil {
		previous = plan.workOrder
		updated, err := s.repo.UpdateWorkOrder(ctx, previous.ID, schedulePatch(req, slot, overridden, now))
		if err != nil {
			s.undoSlot(ctx, slot.ID, created)
			restorePrev()
			return nil, commitErr("update work order "+previous.ID, err)
		}
		booking.WorkOrder = updated
		if prev != "" && !releasedEarly {
			s.releaseSlot(ctx, prev)
		}
	}

	if overridden {
		booking.ConflictIDs = s.recordConflicts(ctx, req, conflicts, now)
		s.audit(ctx, models.ScheduleAuditLog{
			Action:        models.AuditAdminOverride,
			EntityType:    entityTypeOf(req),
			EntityID:      entityIDOf(req, slot),
			UserID:        req.UserID,
			UserRole:      req.UserRole,
			Reason:        overrideReason(req),
			AdminOverride: true,
			AdditionalData: map[string]any{
				"slotId":      slot.ID,
				"conflictIds": booking.ConflictIDs,
				"conflicts":   len(conflicts),
			},
		})
	}

	entry := models.ScheduleAuditLog{
		Action:        models.AuditScheduleCreated,
		EntityType:    entityTypeOf(req),
		EntityID:      entityIDOf(req, slot),
		UserID:        req.UserID,
		UserRole:      req.UserRole,
		AdminOverride: overridden,
		NewValue:      scheduleSnapshot(slot.ID, slot.StartTime, slot.EndTime, slot.SlotType),
		ChangedFields: []string{"assignedSlotId", "scheduledStartDate", "scheduledEndDate", "scheduledDuration", "slotType"},
	}
	if previous != nil && previous.IsScheduled() {
		start, end := previous.Window()
		entry.OldValue = scheduleSnapshot(previous.AssignedSlotID, start, end, previous.SlotType)
	}
	if overridden {
		entry.Reason = overrideReason(req)
	}
	s.audit(ctx, entry)

	s.logger.Info("scheduling: booking committed",
		zap.String("contractorID", req.ContractorID),
		zap.String("workOrderID", req.WorkOrderID),
		zap.String("slotID", slot.ID),
		zap.Bool("override", overridden))

	return &models.BookingResult{Success: true, Conflicts: conflicts, Booking: booking}, nil
}

func schedulePatch(req models.BookingRequest, slot *models.TimeSlot, overridden bool, now time.Time) models.WorkOrderPatch {
	status := models.WorkOrderScheduled
	start, end := slot.StartTime, slot.EndTime
	minutes := slot.Minutes()
	patch := models.WorkOrderPatch{
		Status:                 &status,
		ScheduledStartDate:     &start,
		ScheduledEndDate:       &end,
		AssignedSlotID:         &slot.ID,
		SlotType:               &slot.SlotType,
		ScheduledDuration:      &minutes,
		HasSchedulingConflicts: &overridden,
	}
	if overridden {
		reason := overrideReason(req)
		patch.ConflictOverrideReason = &reason
		patch.ConflictOverrideBy = &req.UserID
		patch.ConflictOverrideAt = &now
	}
	return patch
}

// recordConflicts persists one ScheduleConflict per overridden finding and
// returns the ids that were stored.
func (s *Service) recordConflicts(ctx context.Context, req models.BookingRequest, conflicts []models.ConflictDetail, now time.Time) []string {
	ids := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		rec, err := s.repo.CreateScheduleConflict(ctx, models.ScheduleConflict{
			ID:                    uuid.New().String(),
			ConflictType:          c.Type,
			WorkOrderID:           req.WorkOrderID,
			ContractorID:          req.ContractorID,
			ConflictStart:         c.ConflictStart,
			ConflictEnd:           c.ConflictEnd,
			ConflictingWorkOrders: c.ConflictingWorkOrders,
			ConflictingSlots:      c.ConflictingSlots,
			DetectionMethod:       s.cfg.DetectionMethodName,
			Description:           c.Description,
			AdminOverride:         true,
			CreatedAt:             now,
		})
		if err != nil {
			s.logger.Warn("scheduling: failed to record conflict",
				zap.String("contractorID", req.ContractorID),
				zap.String("code", string(c.Code)),
				zap.Error(err))
			continue
		}
		ids = append(ids, rec.ID)
	}
	return ids
}

// CancelBooking releases a work order's slot and clears its scheduling fields.
func (s *Service) CancelBooking(ctx context.Context, workOrderID string, actor models.Actor, reason string) (*models.WorkOrder, error) {
	wo, err := s.repo.GetWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, lookup("work order", workOrderID, err)
	}
	unlock, err := s.locker.Lock(ctx, contractorLockKey(wo.ContractorID))
	if err != nil {
		return nil, fmt.Errorf("lock contractor %s: %w", wo.ContractorID, err)
	}
	defer unlock()

	// reload under the lock
	wo, err = s.repo.GetWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, lookup("work order", workOrderID, err)
	}
	if !wo.IsScheduled() {
		return nil, invalid("work order %s is not scheduled", workOrderID)
	}

	status := models.WorkOrderPending
	updated, err := s.repo.UpdateWorkOrder(ctx, wo.ID, models.WorkOrderPatch{Clear: true, Status: &status})
	if err != nil {
		return nil, fmt.Errorf("clear work order %s: %w", wo.ID, err)
	}
	if wo.AssignedSlotID != "" {
		open := true
		if _, err := s.repo.UpdateTimeSlot(ctx, wo.AssignedSlotID, models.TimeSlotPatch{IsAvailable: &open}); err != nil {
			// the work order no longer claims the slot; a booked orphan only blocks its window
			s.logger.Error("scheduling: cancelled work order left its slot booked",
				zap.String("workOrderID", wo.ID),
				zap.String("slotID", wo.AssignedSlotID),
				zap.Error(err))
		}
	}

	start, end := wo.Window()
	s.audit(ctx, models.ScheduleAuditLog{
		Action:        models.AuditScheduleCancelled,
		EntityType:    "work_order",
		EntityID:      wo.ID,
		UserID:        actor.UserID,
		UserRole:      actor.Role,
		OldValue:      scheduleSnapshot(wo.AssignedSlotID, start, end, wo.SlotType),
		ChangedFields: []string{"assignedSlotId", "scheduledStartDate", "scheduledEndDate", "scheduledDuration", "slotType", "status"},
		Reason:        reason,
	})
	return updated, nil
}

// releaseOverlappingPrevious frees the slot the work order holds when it
// intersects the requested window. It returns the held slot id, if any, and
// whether it was released here.
func (s *Service) releaseOverlappingPrevious(ctx context.Context, plan *bookingPlan) (string, bool, error) {
	if plan.workOrder == nil || plan.workOrder.AssignedSlotID == "" {
		return "", false, nil
	}
	prev := plan.workOrder.AssignedSlotID
	if plan.slot != nil && plan.slot.ID == prev {
		return "", false, nil
	}
	held, err := s.repo.GetTimeSlot(ctx, prev)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load held slot %s: %w", prev, err)
	}
	if held.IsAvailable || !Overlaps(held.StartTime, held.EndTime, plan.req.StartTime, plan.req.EndTime) {
		return prev, false, nil
	}
	open := true
	if _, err := s.repo.UpdateTimeSlot(ctx, prev, models.TimeSlotPatch{IsAvailable: &open}); err != nil {
		return "", false, fmt.Errorf("release held slot %s: %w", prev, err)
	}
	return prev, true, nil
}

// rebookSlot marks a slot released by a failed reschedule as booked again.
func (s *Service) rebookSlot(ctx context.Context, slotID string) {
	booked := false
	if _, err := s.repo.UpdateTimeSlot(ctx, slotID, models.TimeSlotPatch{IsAvailable: &booked}); err != nil {
		s.logger.Error("scheduling: failed to restore held slot", zap.String("slotID", slotID), zap.Error(err))
	}
}

// undoSlot rolls back a slot claimed by a failed commit. A slot created for
// the request is deleted; a claimed grid slot is reopened.
func (s *Service) undoSlot(ctx context.Context, slotID string, created bool) {
	if !created {
		s.releaseSlot(ctx, slotID)
		return
	}
	if err := s.repo.DeleteTimeSlot(ctx, slotID); err != nil {
		s.logger.Error("scheduling: failed to delete orphaned slot", zap.String("slotID", slotID), zap.Error(err))
	}
}

func (s *Service) releaseSlot(ctx context.Context, slotID string) {
	open := true
	if _, err := s.repo.UpdateTimeSlot(ctx, slotID, models.TimeSlotPatch{IsAvailable: &open}); err != nil {
		s.logger.Error("scheduling: failed to release slot", zap.String("slotID", slotID), zap.Error(err))
	}
}

func scheduleSnapshot(slotID string, start, end time.Time, slotType models.SlotType) map[string]any {
	return map[string]any{
		"assignedSlotId":     slotID,
		"scheduledStartDate": start,
		"scheduledEndDate":   end,
		"slotType":           string(slotType),
	}
}

func overrideReason(req models.BookingRequest) string {
	if r := strings.TrimSpace(req.OverrideReason); r != "" {
		return r
	}
	return overrideReasonDefault
}

func entityTypeOf(req models.BookingRequest) string {
	if req.WorkOrderID != "" {
		return "work_order"
	}
	return "time_slot"
}

func entityIDOf(req models.BookingRequest, slot *models.TimeSlot) string {
	if req.WorkOrderID != "" {
		return req.WorkOrderID
	}
	return slot.ID
}
