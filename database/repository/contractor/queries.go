package contractorRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homeserve/models"
)

func (r *mongoContractorRepo) GetContractorProfile(ctx context.Context, id string) (*models.ContractorProfile, error) {
	var profile models.ContractorProfile
	if err := findOne(ctx, r.contractors, bson.M{"id": id}, &profile); err != nil {
		return nil, fmt.Errorf("contractor %s: %w", id, err)
	}
	return &profile, nil
}

func (r *mongoContractorRepo) GetServiceRequest(ctx context.Context, id string) (*models.ServiceRequest, error) {
	var sr models.ServiceRequest
	if err := findOne(ctx, r.serviceRequests, bson.M{"id": id}, &sr); err != nil {
		return nil, fmt.Errorf("service request %s: %w", id, err)
	}
	return &sr, nil
}

func (r *mongoContractorRepo) GetManagerSettings(ctx context.Context, managerID string) (*models.ManagerSettings, error) {
	var settings models.ManagerSettings
	if err := findOne(ctx, r.settings, bson.M{"managerId": managerID}, &settings); err != nil {
		return nil, fmt.Errorf("manager settings %s: %w", managerID, err)
	}
	return &settings, nil
}

func (r *mongoContractorRepo) GetManagerTimeBlocks(ctx context.Context, managerID string) ([]models.ManagerTimeBlock, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	cursor, err := r.blocks.Find(ctx, bson.M{"managerId": managerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manager time blocks: %w", err)
	}
	defer cursor.Close(ctx)

	var blocks []models.ManagerTimeBlock
	if err := cursor.All(ctx, &blocks); err != nil {
		return nil, fmt.Errorf("error decoding manager time blocks: %w", err)
	}
	return blocks, nil
}

// findOne decodes the first match into out, mapping a miss to models.ErrRecordNotFound.
func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrRecordNotFound
	}
	return err
}
