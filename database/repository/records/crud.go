package recordsRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homeserve/models"
)

// CreateScheduleConflict inserts a conflict record and returns it with its ID.
func (r *mongoRecordRepo) CreateScheduleConflict(ctx context.Context, conflict models.ScheduleConflict) (*models.ScheduleConflict, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if conflict.ID == "" {
		conflict.ID = uuid.New().String()
	}
	if conflict.CreatedAt.IsZero() {
		conflict.CreatedAt = time.Now()
	}
	if _, err := r.conflicts.InsertOne(ctx, conflict); err != nil {
		return nil, fmt.Errorf("insert schedule conflict: %w", err)
	}
	return &conflict, nil
}

// CreateScheduleAuditLog appends an audit entry.
func (r *mongoRecordRepo) CreateScheduleAuditLog(ctx context.Context, entry models.ScheduleAuditLog) (*models.ScheduleAuditLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if _, err := r.audit.InsertOne(ctx, entry); err != nil {
		return nil, fmt.Errorf("insert schedule audit log: %w", err)
	}
	return &entry, nil
}

// GetAuditLogsByEntity returns an entity's audit trail, oldest first.
func (r *mongoRecordRepo) GetAuditLogsByEntity(ctx context.Context, entityID string) ([]models.ScheduleAuditLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.audit.Find(ctx, bson.M{"entityId": entityID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.ScheduleAuditLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnsureIndexes creates the history lookup indexes.
func (r *mongoRecordRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.conflicts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{Keys: bson.D{{Key: "contractorId", Value: 1}, {Key: "conflictStart", Value: 1}}, Options: options.Index().SetName("contractor_start_idx")},
	}); err != nil {
		return fmt.Errorf("failed to create schedule conflict indexes: %w", err)
	}
	if _, err := r.audit.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{Keys: bson.D{{Key: "entityId", Value: 1}, {Key: "createdAt", Value: 1}}, Options: options.Index().SetName("entity_created_idx")},
	}); err != nil {
		return fmt.Errorf("failed to create schedule audit indexes: %w", err)
	}
	return nil
}
