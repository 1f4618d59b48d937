package contractorRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the lookup indexes for contractor and policy collections.
func (r *mongoContractorRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	unique := func(key string) []mongo.IndexModel {
		return []mongo.IndexModel{{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_" + key),
		}}
	}
	plan := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{r.contractors, unique("id")},
		{r.serviceRequests, unique("id")},
		{r.settings, unique("managerId")},
		{r.blocks, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "managerId", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().SetName("manager_start_idx"),
		}}},
	}
	for _, p := range plan {
		if _, err := p.coll.Indexes().CreateMany(ctx, p.models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", p.coll.Name(), err)
		}
	}
	return nil
}
