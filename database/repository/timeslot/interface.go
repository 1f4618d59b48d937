// File: database/repository/timeslot/interface.go
package timeslotRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"homeserve/models"
)

type TimeSlotRepository interface {
	GetContractorTimeSlots(ctx context.Context, contractorID string, start, end *time.Time) ([]models.TimeSlot, error)
	GetOverlappingTimeSlots(ctx context.Context, contractorID string, start, end time.Time) ([]models.TimeSlot, error)
	CreateTimeSlot(ctx context.Context, slot models.TimeSlot) (*models.TimeSlot, error)
	UpdateTimeSlot(ctx context.Context, id string, patch models.TimeSlotPatch) (*models.TimeSlot, error)
	GetTimeSlot(ctx context.Context, id string) (*models.TimeSlot, error)
	DeleteTimeSlot(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoTimeSlotRepo struct {
	coll  *mongo.Collection
	guard *mongo.Collection // one document per contractor, bumped by every booking write
}

// NewMongoTimeSlotRepo constructs a new MongoDB TimeSlotRepository.
func NewMongoTimeSlotRepo(db *mongo.Database) TimeSlotRepository {
	return &mongoTimeSlotRepo{
		coll:  db.Collection("timeslots"),
		guard: db.Collection("timeslot_guards"),
	}
}
