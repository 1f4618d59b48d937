package workorderRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the work_orders indexes used by the scheduling queries.
func (r *mongoWorkOrderRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "contractorId", Value: 1}, {Key: "scheduledStartDate", Value: 1}},
			Options: options.Index().SetName("contractor_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "managerId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("manager_status_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create work order indexes: %w", err)
	}
	return nil
}
