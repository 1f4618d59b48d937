// File: database/repository/timeslot/queries.go
package timeslotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homeserve/models"
)

func (repo *mongoTimeSlotRepo) GetContractorTimeSlots(ctx context.Context, contractorID string, start, end *time.Time) ([]models.TimeSlot, error) {
	filter := bson.M{"contractorId": contractorID}
	if end != nil {
		filter["startTime"] = bson.M{"$lt": *end}
	}
	if start != nil {
		filter["endTime"] = bson.M{"$gt": *start}
	}
	return repo.find(ctx, filter)
}

func (repo *mongoTimeSlotRepo) GetOverlappingTimeSlots(ctx context.Context, contractorID string, start, end time.Time) ([]models.TimeSlot, error) {
	return repo.find(ctx, bson.M{
		"contractorId": contractorID,
		"startTime":    bson.M{"$lt": end},
		"endTime":      bson.M{"$gt": start},
	})
}

func (repo *mongoTimeSlotRepo) find(ctx context.Context, filter bson.M) ([]models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timeslots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.TimeSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding timeslots: %w", err)
	}
	return slots, nil
}
