package workorderRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homeserve/models"
)

func (r *mongoWorkOrderRepo) GetWorkOrdersByContractor(ctx context.Context, contractorID string) ([]models.WorkOrder, error) {
	return r.find(ctx, bson.M{"contractorId": contractorID})
}

// GetOverlappingWorkOrders returns the contractor's live scheduled jobs that
// intersect [start, end).
func (r *mongoWorkOrderRepo) GetOverlappingWorkOrders(ctx context.Context, contractorID string, start, end time.Time) ([]models.WorkOrder, error) {
	return r.find(ctx, bson.M{
		"contractorId":       contractorID,
		"status":             bson.M{"$ne": models.WorkOrderCancelled},
		"scheduledStartDate": bson.M{"$lt": end},
		"scheduledEndDate":   bson.M{"$gt": start},
	})
}

func (r *mongoWorkOrderRepo) GetWorkOrdersByDateRange(ctx context.Context, contractorID string, start, end time.Time) ([]models.WorkOrder, error) {
	return r.find(ctx, bson.M{
		"contractorId":       contractorID,
		"scheduledStartDate": bson.M{"$lte": end},
		"scheduledEndDate":   bson.M{"$gte": start},
	})
}

func (r *mongoWorkOrderRepo) GetWorkOrdersByManager(ctx context.Context, managerID string) ([]models.WorkOrder, error) {
	return r.find(ctx, bson.M{"managerId": managerID})
}

func (r *mongoWorkOrderRepo) find(ctx context.Context, filter bson.M) ([]models.WorkOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch work orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.WorkOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("error decoding work orders: %w", err)
	}
	return orders, nil
}
