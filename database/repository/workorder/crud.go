package workorderRepo

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

// scheduleFields are the fields a Clear patch removes.
var scheduleFields = []string{
	"scheduledStartDate", "scheduledEndDate", "assignedSlotId", "slotType", "scheduledDuration",
	"conflictOverrideReason", "conflictOverrideBy", "conflictOverrideAt",
}

func (r *mongoWorkOrderRepo) GetWorkOrder(ctx context.Context, id string) (*models.WorkOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var wo models.WorkOrder
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&wo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("work order %s: %w", id, models.ErrRecordNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *mongoWorkOrderRepo) UpdateWorkOrder(ctx context.Context, id string, patch models.WorkOrderPatch) (*models.WorkOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var wo models.WorkOrder
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, patchUpdate(patch, time.Now()), opts).Decode(&wo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("work order %s: %w", id, models.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update work order %s: %w", id, err)
	}
	return &wo, nil
}

// patchUpdate turns a patch into a $set/$unset document. Fields set by the
// patch win over a Clear of the same field.
func patchUpdate(p models.WorkOrderPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	put := func(key string, ok bool, v any) {
		if ok {
			set[key] = v
		}
	}
	put("status", p.Status != nil, deref(p.Status))
	put("scheduledStartDate", p.ScheduledStartDate != nil, p.ScheduledStartDate)
	put("scheduledEndDate", p.ScheduledEndDate != nil, p.ScheduledEndDate)
	put("assignedSlotId", p.AssignedSlotID != nil, deref(p.AssignedSlotID))
	put("slotType", p.SlotType != nil, deref(p.SlotType))
	put("scheduledDuration", p.ScheduledDuration != nil, deref(p.ScheduledDuration))
	put("hasSchedulingConflicts", p.HasSchedulingConflicts != nil, deref(p.HasSchedulingConflicts))
	put("conflictOverrideReason", p.ConflictOverrideReason != nil, deref(p.ConflictOverrideReason))
	put("conflictOverrideBy", p.ConflictOverrideBy != nil, deref(p.ConflictOverrideBy))
	put("conflictOverrideAt", p.ConflictOverrideAt != nil, p.ConflictOverrideAt)

	update := bson.M{}
	if p.Clear {
		unset := bson.M{}
		for _, f := range scheduleFields {
			if _, ok := set[f]; !ok {
				unset[f] = ""
			}
		}
		if _, ok := set["hasSchedulingConflicts"]; !ok {
			set["hasSchedulingConflicts"] = false
		}
		if len(unset) > 0 {
			update["$unset"] = unset
		}
	}
	update["$set"] = set
	return update
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
