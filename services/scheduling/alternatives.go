package scheduling

import (
	"context"
	"fmt"

	"homeserve/models"
)

// GenerateAlternativeSlots searches forward from the original request's start
// for substitute windows of the same length, skipping the original window.
func (s *Service) GenerateAlternativeSlots(ctx context.Context, req models.BookingRequest) ([]models.TimeSlot, error) {
	unlock, err := s.locker.Lock(ctx, contractorLockKey(req.ContractorID))
	if err != nil {
		return nil, fmt.Errorf("lock contractor %s: %w", req.ContractorID, err)
	}
	defer unlock()

	if req.SlotID != "" && req.StartTime.IsZero() {
		slot, err := s.repo.GetTimeSlot(ctx, req.SlotID)
		if err != nil {
			return nil, lookup("time slot", req.SlotID, err)
		}
		req.StartTime, req.EndTime = slot.StartTime, slot.EndTime
		if req.SlotType == "" {
			req.SlotType = slot.SlotType
		}
	}
	if req.StartTime.IsZero() {
		return nil, invalid("startTime is required")
	}
	return s.alternatives(ctx, req)
}

func (s *Service) alternatives(ctx context.Context, req models.BookingRequest) ([]models.TimeSlot, error) {
	minutes := req.Minutes()
	if minutes <= 0 {
		minutes = s.cfg.SlotMinutes
	}
	slots, err := s.generateSlots(ctx, models.SlotGenerationRequest{
		ContractorID: req.ContractorID,
		Range: models.DateRange{
			Start: req.StartTime,
			End:   req.StartTime.AddDate(0, 0, s.cfg.AlternativeDays),
		},
		Timezone:            req.Timezone,
		SlotDurationMinutes: minutes,
		SlotType:            req.SlotType,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.TimeSlot, 0, s.cfg.AlternativeLimit)
	for _, ts := range slots {
		if ts.StartTime.Equal(req.StartTime) && ts.EndTime.Equal(req.EndTime) {
			continue
		}
		out = append(out, ts)
		if len(out) == s.cfg.AlternativeLimit {
			break
		}
	}
	return out, nil
}

// MatchPreferredDates generates one day of availability per member preference
// and, where a time was given, keeps slots starting within PreferredWindow of
// it. Results keep the input order.
func (s *Service) MatchPreferredDates(ctx context.Context, contractorID string, prefs []models.PreferredDate, durationMinutes int, timezone string) ([]models.PreferredDateMatch, error) {
	unlock, err := s.locker.Lock(ctx, contractorLockKey(contractorID))
	if err != nil {
		return nil, fmt.Errorf("lock contractor %s: %w", contractorID, err)
	}
	defer unlock()

	cc, err := s.loadContractor(ctx, contractorID, timezone)
	if err != nil {
		return nil, err
	}

	out := make([]models.PreferredDateMatch, 0, len(prefs))
	for i, p := range prefs {
		day, err := ParseDate(p.Date, cc.loc)
		if err != nil {
			return nil, invalid("preference %d: bad date %q", i+1, p.Date)
		}
		slots, err := s.generateSlots(ctx, models.SlotGenerationRequest{
			ContractorID:        contractorID,
			Range:               models.DateRange{Start: day, End: NextDay(day, cc.loc)},
			Timezone:            cc.loc.String(),
			SlotDurationMinutes: durationMinutes,
		})
		if err != nil {
			return nil, err
		}

		match := models.PreferredDateMatch{Preference: i + 1, Date: p.Date, Time: p.Time, Slots: []models.TimeSlot{}}
		if p.Time == "" {
			match.Slots = append(match.Slots, slots...)
			out = append(out, match)
			continue
		}
		preferred, err := AtClock(day, p.Time, cc.loc)
		if err != nil {
			return nil, invalid("preference %d: %v", i+1, err)
		}
		for _, ts := range slots {
			d := ts.StartTime.Sub(preferred)
			if d < 0 {
				d = -d
			}
			if d <= s.cfg.PreferredWindow {
				match.Slots = append(match.Slots, ts)
			}
		}
		out = append(out, match)
	}
	return out, nil
}
