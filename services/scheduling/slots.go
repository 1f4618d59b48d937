package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"homeserve/models"
)

type interval struct {
	start, end time.Time
}

type windowKey struct {
	start, end int64
}

func keyOf(start, end time.Time) windowKey {
	return windowKey{start: start.UnixNano(), end: end.UnixNano()}
}

// GenerateAvailableSlots produces the bookable windows for a contractor over
// req.Range, in chronological order. Every returned slot is persisted; slots
// that already exist for the exact same window are reused, so repeated calls
// return the same ids.
func (s *Service) GenerateAvailableSlots(ctx context.Context, req models.SlotGenerationRequest) ([]models.TimeSlot, error) {
	unlock, err := s.locker.Lock(ctx, contractorLockKey(req.ContractorID))
	if err != nil {
		return nil, fmt.Errorf("lock contractor %s: %w", req.ContractorID, err)
	}
	defer unlock()
	return s.generateSlots(ctx, req)
}

// generateSlots does the work of GenerateAvailableSlots; the caller holds the contractor lock.
func (s *Service) generateSlots(ctx context.Context, req models.SlotGenerationRequest) ([]models.TimeSlot, error) {
	if !req.Range.Valid() {
		return nil, invalid("range end must be after range start")
	}
	minutes := req.SlotDurationMinutes
	if minutes <= 0 {
		minutes = s.cfg.SlotMinutes
	}
	slotType := req.SlotType
	if slotType == "" {
		slotType = models.SlotStandard
	}
	if !slotType.Valid() {
		return nil, invalid("unknown slot type %q", slotType)
	}

	cc, err := s.loadContractor(ctx, req.ContractorID, req.Timezone)
	if err != nil {
		return nil, err
	}
	hours := cc.profile.WorkingHours
	if len(hours) == 0 {
		hours = models.DefaultWorkingHours()
	}

	from, to := Expand(req.Range.Start, req.Range.End, cc.buffer)
	existing, err := s.repo.GetContractorTimeSlots(ctx, req.ContractorID, &from, &to)
	if err != nil {
		return nil, fmt.Errorf("load time slots: %w", err)
	}
	orders, err := s.repo.GetWorkOrdersByDateRange(ctx, req.ContractorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load work orders: %w", err)
	}

	var busy []interval
	reusable := make(map[windowKey]models.TimeSlot)
	for _, ts := range existing {
		if ts.IsAvailable {
			reusable[keyOf(ts.StartTime, ts.EndTime)] = ts
			continue
		}
		busy = append(busy, interval{ts.StartTime, ts.EndTime})
	}
	for _, wo := range orders {
		if wo.IsScheduled() {
			start, end := wo.Window()
			busy = append(busy, interval{start, end})
		}
	}

	counts, err := s.dailyJobCounts(ctx, cc, "")
	if err != nil {
		return nil, err
	}

	now := s.cfg.Now()
	dur := time.Duration(minutes) * time.Minute
	var out []models.TimeSlot
	created := 0

	for day := StartOfDay(req.Range.Start, cc.loc); day.Before(req.Range.End); day = NextDay(day, cc.loc) {
		wh, ok := hours[models.WeekdayKey(day.Weekday())]
		if !ok {
			continue
		}
		dateKey := DateKey(day, cc.loc)
		if cc.settings != nil && cc.settings.MaxDailyJobs > 0 && counts[dateKey] >= cc.settings.MaxDailyJobs {
			s.logger.Debug("scheduling: daily capacity reached, skipping day",
				zap.String("contractorID", req.ContractorID), zap.String("date", dateKey))
			continue
		}

		candidates, err := s.dayCandidates(cc, day, wh, dur)
		if err != nil {
			return nil, err
		}
		for _, c := range candidates {
			if c.start.Before(req.Range.Start) || c.end.After(req.Range.End) || c.start.Before(now) {
				continue
			}
			if overlapsAny(busy, c, cc.buffer) {
				continue
			}
			k := keyOf(c.start, c.end)
			if ts, ok := reusable[k]; ok {
				out = append(out, ts)
				continue
			}

			slot := models.TimeSlot{
				ID:                    uuid.New().String(),
				ContractorID:          req.ContractorID,
				SlotDate:              dateKey,
				StartTime:             c.start,
				EndTime:               c.end,
				SlotType:              slotType,
				Duration:              BucketFor(minutes),
				IsAvailable:           true,
				MaxConcurrentBookings: 1,
				CreatedAt:             now,
				UpdatedAt:             now,
			}
			saved, err := s.repo.CreateTimeSlot(ctx, slot)
			if err != nil {
				s.logger.Warn("scheduling: failed to persist generated slot, skipping",
					zap.String("contractorID", req.ContractorID),
					zap.Time("start", c.start),
					zap.Error(err))
				continue
			}
			reusable[k] = *saved
			out = append(out, *saved)
			created++
		}
	}

	if created > 0 {
		s.audit(ctx, models.ScheduleAuditLog{
			Action:     models.AuditSlotGenerated,
			EntityType: "contractor",
			EntityID:   req.ContractorID,
			AdditionalData: map[string]any{
				"created":  created,
				"returned": len(out),
				"start":    req.Range.Start,
				"end":      req.Range.End,
			},
		})
	}
	return out, nil
}

// dayCandidates walks one working day emitting slot windows of length dur,
// separated by the turnover buffer. A window that runs into a break or a
// manager block moves the cursor to the end of that block.
func (s *Service) dayCandidates(cc *contractorContext, day time.Time, wh models.WorkingDay, dur time.Duration) ([]interval, error) {
	start, err := AtClock(day, wh.Start, cc.loc)
	if err != nil {
		return nil, invalid("working hours for %s: %v", models.WeekdayKey(day.Weekday()), err)
	}
	end, err := AtClock(day, wh.End, cc.loc)
	if err != nil {
		return nil, invalid("working hours for %s: %v", models.WeekdayKey(day.Weekday()), err)
	}
	winStart, winEnd, ok, err := cc.serviceWindow(day)
	if err != nil {
		return nil, invalid("manager service window: %v", err)
	}
	if ok {
		if winStart.After(start) {
			start = winStart
		}
		if winEnd.Before(end) {
			end = winEnd
		}
	}
	if !end.After(start) || dur <= 0 {
		return nil, nil
	}

	blocked, err := cc.blockedOn(day, start, end)
	if err != nil {
		return nil, err
	}

	var out []interval
	cursor := start
	for !cursor.Add(dur).After(end) {
		cand := interval{cursor, cursor.Add(dur)}
		if until, hit := blockedUntil(blocked, cand); hit {
			cursor = until
			continue
		}
		out = append(out, cand)
		cursor = cand.end.Add(cc.buffer)
	}
	return out, nil
}

// blockedOn collects the contractor's breaks and the manager's blocks that fall
// inside [dayStart, dayEnd), sorted by start.
func (cc *contractorContext) blockedOn(day, dayStart, dayEnd time.Time) ([]interval, error) {
	var out []interval
	for _, b := range cc.profile.Breaks {
		if !b.AppliesTo(day.Weekday()) {
			continue
		}
		start, err := AtClock(day, b.Start, cc.loc)
		if err != nil {
			return nil, invalid("break: %v", err)
		}
		end, err := AtClock(day, b.End, cc.loc)
		if err != nil {
			return nil, invalid("break: %v", err)
		}
		if end.After(start) {
			out = append(out, interval{start, end})
		}
	}
	for _, b := range cc.blocks {
		if Overlaps(b.StartTime, b.EndTime, dayStart, dayEnd) {
			out = append(out, interval{b.StartTime, b.EndTime})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start.Before(out[j].start) })
	return out, nil
}

// blockedUntil reports whether cand hits a blocked interval and, if so, the
// latest end among the intervals it hits.
func blockedUntil(blocked []interval, cand interval) (time.Time, bool) {
	var until time.Time
	hit := false
	for _, b := range blocked {
		if Overlaps(cand.start, cand.end, b.start, b.end) {
			if !hit || b.end.After(until) {
				until = b.end
			}
			hit = true
		}
	}
	return until, hit
}

func overlapsAny(busy []interval, cand interval, pad time.Duration) bool {
	for _, b := range busy {
		start, end := Expand(b.start, b.end, pad)
		if Overlaps(cand.start, cand.end, start, end) {
			return true
		}
	}
	return false
}
