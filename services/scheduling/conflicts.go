package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homeserve/models"
)

// job is an occupied window on the contractor's calendar: a scheduled work
// order, or a booked slot no work order points at.
type job struct {
	workOrderID      string
	slotID           string
	serviceRequestID string
	start, end       time.Time
}

// DetectConflicts evaluates a candidate booking against every conflict class
// and returns all findings; an empty result means the window is clean.
func (s *Service) DetectConflicts(ctx context.Context, req models.BookingRequest) ([]models.ConflictDetail, error) {
	cc, err := s.loadContractor(ctx, req.ContractorID, req.Timezone)
	if err != nil {
		return nil, err
	}
	plan, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.detect(ctx, cc, plan)
}

func (s *Service) detect(ctx context.Context, cc *contractorContext, plan *bookingPlan) ([]models.ConflictDetail, error) {
	req := plan.req
	var out []models.ConflictDetail

	overlap, err := s.checkOverlap(ctx, cc, plan)
	if err != nil {
		return nil, err
	}
	if overlap != nil {
		out = append(out, *overlap)
	}

	window, err := s.checkServiceWindow(cc, req)
	if err != nil {
		return nil, err
	}
	if window != nil {
		out = append(out, *window)
	}

	out = append(out, checkBlackouts(cc, req)...)

	capacity, err := s.checkDailyCapacity(ctx, cc, req)
	if err != nil {
		return nil, err
	}
	if capacity != nil {
		out = append(out, *capacity)
	}

	neighbours, err := s.neighbourJobs(ctx, cc, plan)
	if err != nil {
		return nil, err
	}
	out = append(out, s.checkTurnover(cc, req, neighbours)...)

	travel, err := s.checkTravel(ctx, cc, plan, neighbours)
	if err != nil {
		return nil, err
	}
	out = append(out, travel...)

	return out, nil
}

// checkOverlap finds booked slots and scheduled work orders inside the
// buffer-expanded request window.
func (s *Service) checkOverlap(ctx context.Context, cc *contractorContext, plan *bookingPlan) (*models.ConflictDetail, error) {
	req := plan.req
	from, to := Expand(req.StartTime, req.EndTime, cc.buffer)

	orders, err := s.repo.GetOverlappingWorkOrders(ctx, req.ContractorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load overlapping work orders: %w", err)
	}
	slots, err := s.repo.GetOverlappingTimeSlots(ctx, req.ContractorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load overlapping slots: %w", err)
	}

	var woIDs, slotIDs []string
	var spanStart, spanEnd time.Time
	covered := map[string]bool{}
	widen := func(start, end time.Time) {
		if spanStart.IsZero() || start.Before(spanStart) {
			spanStart = start
		}
		if end.After(spanEnd) {
			spanEnd = end
		}
	}
	for _, wo := range orders {
		if wo.ID == req.WorkOrderID || !wo.IsScheduled() {
			continue
		}
		start, end := wo.Window()
		woIDs = append(woIDs, wo.ID)
		if wo.AssignedSlotID != "" {
			covered[wo.AssignedSlotID] = true
		}
		widen(start, end)
	}
	for _, ts := range slots {
		if ts.IsAvailable || plan.ownsSlot(ts.ID) || covered[ts.ID] {
			continue
		}
		slotIDs = append(slotIDs, ts.ID)
		widen(ts.StartTime, ts.EndTime)
	}
	if len(woIDs) == 0 && len(slotIDs) == 0 {
		return nil, nil
	}
	return &models.ConflictDetail{
		Type: models.ConflictHard,
		Code: models.CodeOverlap,
		Description: fmt.Sprintf("window overlaps %d existing booking(s) including the %d-minute turnover buffer",
			len(woIDs)+len(slotIDs), int(cc.buffer/time.Minute)),
		CanOverride:           true,
		ConflictStart:         spanStart,
		ConflictEnd:           spanEnd,
		ConflictingWorkOrders: woIDs,
		ConflictingSlots:      slotIDs,
	}, nil
}

func (s *Service) checkServiceWindow(cc *contractorContext, req models.BookingRequest) (*models.ConflictDetail, error) {
	start, end, ok, err := cc.serviceWindow(req.StartTime)
	if err != nil {
		return nil, invalid("manager service window: %v", err)
	}
	if !ok || (!req.StartTime.Before(start) && !req.EndTime.After(end)) {
		return nil, nil
	}
	return &models.ConflictDetail{
		Type: models.ConflictHard,
		Code: models.CodeServiceWindow,
		Description: fmt.Sprintf("window falls outside the manager's service hours %s-%s",
			cc.settings.ServiceWindowStart, cc.settings.ServiceWindowEnd),
		CanOverride:   false,
		ConflictStart: req.StartTime,
		ConflictEnd:   req.EndTime,
	}, nil
}

func checkBlackouts(cc *contractorContext, req models.BookingRequest) []models.ConflictDetail {
	var out []models.ConflictDetail
	for _, b := range cc.blocks {
		if !Overlaps(req.StartTime, req.EndTime, b.StartTime, b.EndTime) {
			continue
		}
		desc := fmt.Sprintf("window intersects a manager %s block", b.BlockType)
		if b.Reason != "" {
			desc += ": " + b.Reason
		}
		out = append(out, models.ConflictDetail{
			Type:          models.ConflictHard,
			Code:          models.CodeBlackout,
			Description:   desc,
			CanOverride:   false,
			ConflictStart: b.StartTime,
			ConflictEnd:   b.EndTime,
		})
	}
	return out
}

func (s *Service) checkDailyCapacity(ctx context.Context, cc *contractorContext, req models.BookingRequest) (*models.ConflictDetail, error) {
	if cc.settings == nil || cc.settings.MaxDailyJobs <= 0 {
		return nil, nil
	}
	counts, err := s.dailyJobCounts(ctx, cc, req.WorkOrderID)
	if err != nil {
		return nil, err
	}
	date := DateKey(req.StartTime, cc.loc)
	if counts[date] < cc.settings.MaxDailyJobs {
		return nil, nil
	}
	return &models.ConflictDetail{
		Type:          models.ConflictSoft,
		Code:          models.CodeDailyCapacity,
		Description:   fmt.Sprintf("manager already has %d of %d jobs on %s", counts[date], cc.settings.MaxDailyJobs, date),
		CanOverride:   true,
		ConflictStart: StartOfDay(req.StartTime, cc.loc),
		ConflictEnd:   NextDay(req.StartTime, cc.loc),
	}, nil
}

// neighbourJobs loads every job on the request's local day and within the
// turnover proximity of the request, excluding the booking's own records.
func (s *Service) neighbourJobs(ctx context.Context, cc *contractorContext, plan *bookingPlan) ([]job, error) {
	req := plan.req
	from := StartOfDay(req.StartTime, cc.loc)
	if p := req.StartTime.Add(-s.cfg.TurnoverProximity); p.Before(from) {
		from = p
	}
	to := NextDay(req.StartTime, cc.loc)
	if p := req.EndTime.Add(s.cfg.TurnoverProximity); p.After(to) {
		to = p
	}

	orders, err := s.repo.GetWorkOrdersByDateRange(ctx, req.ContractorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load work orders: %w", err)
	}
	slots, err := s.repo.GetContractorTimeSlots(ctx, req.ContractorID, &from, &to)
	if err != nil {
		return nil, fmt.Errorf("load time slots: %w", err)
	}

	var jobs []job
	covered := map[string]bool{}
	for _, wo := range orders {
		if wo.ID == req.WorkOrderID || !wo.IsScheduled() {
			continue
		}
		start, end := wo.Window()
		jobs = append(jobs, job{workOrderID: wo.ID, slotID: wo.AssignedSlotID, serviceRequestID: wo.ServiceRequestID, start: start, end: end})
		if wo.AssignedSlotID != "" {
			covered[wo.AssignedSlotID] = true
		}
	}
	for _, ts := range slots {
		if ts.IsAvailable || plan.ownsSlot(ts.ID) || covered[ts.ID] {
			continue
		}
		jobs = append(jobs, job{slotID: ts.ID, start: ts.StartTime, end: ts.EndTime})
	}
	return jobs, nil
}

// checkTurnover flags jobs close to the request whose idle gap is shorter
// than the turnover buffer. Directly overlapping jobs are left to checkOverlap.
func (s *Service) checkTurnover(cc *contractorContext, req models.BookingRequest, jobs []job) []models.ConflictDetail {
	if cc.buffer <= 0 {
		return nil
	}
	var out []models.ConflictDetail
	for _, j := range jobs {
		if j.end.Before(req.StartTime.Add(-s.cfg.TurnoverProximity)) || j.start.After(req.EndTime.Add(s.cfg.TurnoverProximity)) {
			continue
		}
		gap := Gap(req.StartTime, req.EndTime, j.start, j.end)
		if gap < 0 || gap >= cc.buffer {
			continue
		}
		out = append(out, models.ConflictDetail{
			Type: models.ConflictSoft,
			Code: models.CodeTurnoverBuffer,
			Description: fmt.Sprintf("only %d minutes between this window and an adjacent job, %d required",
				int(gap/time.Minute), int(cc.buffer/time.Minute)),
			CanOverride:           true,
			ConflictStart:         j.start,
			ConflictEnd:           j.end,
			ConflictingWorkOrders: nonEmpty(j.workOrderID),
			ConflictingSlots:      nonEmpty(j.slotID),
		})
	}
	return out
}

// checkTravel flags same-day jobs at a different address that leave less than
// the travel allowance between them and the request.
func (s *Service) checkTravel(ctx context.Context, cc *contractorContext, plan *bookingPlan, jobs []job) ([]models.ConflictDetail, error) {
	if plan.workOrder == nil || plan.workOrder.ServiceRequestID == "" {
		return nil, nil
	}
	req := plan.req
	addresses := map[string]models.Address{}
	resolve := func(id string) (models.Address, bool, error) {
		if a, ok := addresses[id]; ok {
			return a, !a.IsZero(), nil
		}
		sr, err := s.repo.GetServiceRequest(ctx, id)
		if errors.Is(err, models.ErrRecordNotFound) {
			addresses[id] = models.Address{}
			return models.Address{}, false, nil
		}
		if err != nil {
			return models.Address{}, false, fmt.Errorf("load service request %s: %w", id, err)
		}
		addresses[id] = sr.Address
		return sr.Address, !sr.Address.IsZero(), nil
	}

	origin, ok, err := resolve(plan.workOrder.ServiceRequestID)
	if err != nil || !ok {
		return nil, err
	}
	allowance := time.Duration(s.cfg.TravelMinutes) * time.Minute
	day := DateKey(req.StartTime, cc.loc)
	var out []models.ConflictDetail
	for _, j := range jobs {
		if j.serviceRequestID == "" || DateKey(j.start, cc.loc) != day {
			continue
		}
		gap := Gap(req.StartTime, req.EndTime, j.start, j.end)
		if gap < 0 || gap >= allowance {
			continue
		}
		dest, ok, err := resolve(j.serviceRequestID)
		if err != nil {
			return nil, err
		}
		if !ok || !differentLocation(origin, dest) {
			continue
		}
		out = append(out, models.ConflictDetail{
			Type: models.ConflictTravel,
			Code: models.CodeTravelTime,
			Description: fmt.Sprintf("%d minutes to travel from %s to %s, about %d needed",
				int(gap/time.Minute), describe(origin), describe(dest), s.cfg.TravelMinutes),
			CanOverride:           true,
			ConflictStart:         j.start,
			ConflictEnd:           j.end,
			ConflictingWorkOrders: nonEmpty(j.workOrderID),
			ConflictingSlots:      nonEmpty(j.slotID),
		})
	}
	return out, nil
}

// differentLocation reports whether two addresses differ in street, city or zip.
func differentLocation(a, b models.Address) bool {
	return normalize(a.Street) != normalize(b.Street) ||
		normalize(a.City) != normalize(b.City) ||
		normalize(a.Zip) != normalize(b.Zip)
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func describe(a models.Address) string {
	if a.Street == "" {
		return a.City
	}
	return a.Street + ", " + a.City
}

func nonEmpty(id string) []string {
	if id == "" {
		return nil
	}
	return []string{id}
}
