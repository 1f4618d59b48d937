package recordsRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"homeserve/models"
)

// ScheduleLogRepository appends and reads the scheduling history: overridden
// conflicts and the audit trail.
type ScheduleLogRepository interface {
	CreateScheduleConflict(ctx context.Context, conflict models.ScheduleConflict) (*models.ScheduleConflict, error)
	CreateScheduleAuditLog(ctx context.Context, entry models.ScheduleAuditLog) (*models.ScheduleAuditLog, error)
	GetAuditLogsByEntity(ctx context.Context, entityID string) ([]models.ScheduleAuditLog, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoRecordRepo struct {
	conflicts *mongo.Collection
	audit     *mongo.Collection
}

// NewMongoRecordRepo returns a ScheduleLogRepository backed by MongoDB.
func NewMongoRecordRepo(db *mongo.Database) ScheduleLogRepository {
	return &mongoRecordRepo{
		conflicts: db.Collection("schedule_conflicts"),
		audit:     db.Collection("schedule_audit_logs"),
	}
}
