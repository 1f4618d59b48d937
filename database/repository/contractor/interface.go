package contractorRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"homeserve/models"
)

// ContractorRepository serves contractor profiles, the service requests their
// jobs fulfil, and the managing entity's scheduling policy.
type ContractorRepository interface {
	GetContractorProfile(ctx context.Context, id string) (*models.ContractorProfile, error)
	GetServiceRequest(ctx context.Context, id string) (*models.ServiceRequest, error)
	GetManagerSettings(ctx context.Context, managerID string) (*models.ManagerSettings, error)
	GetManagerTimeBlocks(ctx context.Context, managerID string) ([]models.ManagerTimeBlock, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoContractorRepo struct {
	contractors     *mongo.Collection
	serviceRequests *mongo.Collection
	settings        *mongo.Collection
	blocks          *mongo.Collection
}

// NewMongoContractorRepo constructs a ContractorRepository over db.
func NewMongoContractorRepo(db *mongo.Database) ContractorRepository {
	return &mongoContractorRepo{
		contractors:     db.Collection("contractors"),
		serviceRequests: db.Collection("service_requests"),
		settings:        db.Collection("manager_settings"),
		blocks:          db.Collection("manager_time_blocks"),
	}
}
