package workorderRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"homeserve/models"
)

type WorkOrderRepository interface {
	GetWorkOrdersByContractor(ctx context.Context, contractorID string) ([]models.WorkOrder, error)
	GetOverlappingWorkOrders(ctx context.Context, contractorID string, start, end time.Time) ([]models.WorkOrder, error)
	GetWorkOrdersByDateRange(ctx context.Context, contractorID string, start, end time.Time) ([]models.WorkOrder, error)
	UpdateWorkOrder(ctx context.Context, id string, patch models.WorkOrderPatch) (*models.WorkOrder, error)
	GetWorkOrder(ctx context.Context, id string) (*models.WorkOrder, error)
	GetWorkOrdersByManager(ctx context.Context, managerID string) ([]models.WorkOrder, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoWorkOrderRepo struct {
	coll *mongo.Collection
}

// NewMongoWorkOrderRepo returns a WorkOrderRepository over the work_orders collection.
func NewMongoWorkOrderRepo(db *mongo.Database) WorkOrderRepository {
	return &mongoWorkOrderRepo{coll: db.Collection("work_orders")}
}
