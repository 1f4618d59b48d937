package scheduling

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"homeserve/database/repository/memory"
	"homeserve/models"
)

// monday is 2026-03-02, a Monday, in UTC.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func fixedClock() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, tweaks ...func(*Config)) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.PutContractor(models.ContractorProfile{
		ID:           "c1",
		UserID:       "u-c1",
		ManagerID:    "m1",
		BusinessName: "Ace Plumbing",
		Timezone:     "UTC",
		WorkingHours: models.DefaultWorkingHours(),
	})
	cfg := DefaultConfig()
	cfg.Now = fixedClock
	for _, tweak := range tweaks {
		tweak(&cfg)
	}
	return NewService(store, nil, zap.NewNop(), cfg), store
}

func pendingWO(id string) models.WorkOrder {
	return models.WorkOrder{ID: id, ContractorID: "c1", ManagerID: "m1", Status: models.WorkOrderPending}
}

func scheduledWO(id, contractorID string, start, end time.Time) models.WorkOrder {
	return models.WorkOrder{
		ID:                 id,
		ContractorID:       contractorID,
		ManagerID:          "m1",
		Status:             models.WorkOrderScheduled,
		ScheduledStartDate: &start,
		ScheduledEndDate:   &end,
	}
}

func auditActions(store *memory.Store) []models.AuditAction {
	var out []models.AuditAction
	for _, e := range store.AuditLogs() {
		out = append(out, e.Action)
	}
	return out
}

func conflictCodes(conflicts []models.ConflictDetail) []models.ConflictCode {
	var out []models.ConflictCode
	for _, c := range conflicts {
		out = append(out, c.Code)
	}
	return out
}

// assertNoBookedOverlap fails if two unavailable slots of contractorID intersect.
func assertNoBookedOverlap(t *testing.T, store *memory.Store, contractorID string) {
	t.Helper()
	slots, err := store.GetContractorTimeSlots(context.Background(), contractorID, nil, nil)
	if err != nil {
		t.Fatalf("list slots: %v", err)
	}
	var booked []models.TimeSlot
	for _, ts := range slots {
		if !ts.IsAvailable {
			booked = append(booked, ts)
		}
	}
	for i := range booked {
		for j := i + 1; j < len(booked); j++ {
			if Overlaps(booked[i].StartTime, booked[i].EndTime, booked[j].StartTime, booked[j].EndTime) {
				t.Fatalf("booked slots %s and %s overlap", booked[i].ID, booked[j].ID)
			}
		}
	}
}
