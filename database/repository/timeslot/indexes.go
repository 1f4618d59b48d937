// FILE: database/repository/timeslot/indexes.go
package timeslotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the timeslots collection.
func (r *mongoTimeSlotRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// one slot per exact window; generation reuses it instead of duplicating
		{
			Keys:    bson.D{{Key: "contractorId", Value: 1}, {Key: "startTime", Value: 1}, {Key: "endTime", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("contractor_window_unique"),
		},
		{
			Keys:    bson.D{{Key: "contractorId", Value: 1}, {Key: "isAvailable", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().SetName("contractor_available_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "contractorId", Value: 1}, {Key: "slotDate", Value: 1}},
			Options: options.Index().SetName("contractor_date_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create timeslot indexes: %w", err)
	}
	return nil
}
