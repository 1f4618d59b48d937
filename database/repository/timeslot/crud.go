// File: database/repository/timeslot/crud.go
package timeslotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"homeserve/models"
)

func (r *mongoTimeSlotRepo) CreateTimeSlot(ctx context.Context, slot models.TimeSlot) (*models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	if !slot.EndTime.After(slot.StartTime) {
		return nil, fmt.Errorf("time slot %s: end must be after start", slot.ID)
	}

	insert := func(sc context.Context) error {
		_, err := r.coll.InsertOne(sc, slot)
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("slot window already exists: %w", models.ErrOverlapConstraint)
		}
		return err
	}

	if slot.IsAvailable {
		if err := insert(ctx); err != nil {
			return nil, fmt.Errorf("insert time slot: %w", err)
		}
		return &slot, nil
	}

	err := r.withBookingTxn(ctx, func(sc mongo.SessionContext) error {
		if err := r.checkExclusion(sc, slot); err != nil {
			return err
		}
		return insert(sc)
	})
	if err != nil {
		return nil, fmt.Errorf("book time slot: %w", err)
	}
	return &slot, nil
}

func (r *mongoTimeSlotRepo) UpdateTimeSlot(ctx context.Context, id string, patch models.TimeSlotPatch) (*models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var updated models.TimeSlot
	write := func(sc context.Context) error {
		var slot models.TimeSlot
		if err := r.coll.FindOne(sc, bson.M{"id": id}).Decode(&slot); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return fmt.Errorf("time slot %s: %w", id, models.ErrRecordNotFound)
			}
			return err
		}
		set := bson.M{"updatedAt": time.Now()}
		if patch.IsAvailable != nil {
			slot.IsAvailable = *patch.IsAvailable
			set["isAvailable"] = slot.IsAvailable
		}
		if patch.SlotType != nil {
			slot.SlotType = *patch.SlotType
			set["slotType"] = slot.SlotType
		}
		if !slot.IsAvailable {
			if err := r.checkExclusion(sc, slot); err != nil {
				return err
			}
		}
		if _, err := r.coll.UpdateOne(sc, bson.M{"id": id}, bson.M{"$set": set}); err != nil {
			return err
		}
		slot.UpdatedAt = set["updatedAt"].(time.Time)
		updated = slot
		return nil
	}

	var err error
	if patch.IsAvailable != nil && !*patch.IsAvailable {
		err = r.withBookingTxn(ctx, func(sc mongo.SessionContext) error { return write(sc) })
	} else {
		err = write(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("update time slot %s: %w", id, err)
	}
	return &updated, nil
}

func (r *mongoTimeSlotRepo) GetTimeSlot(ctx context.Context, id string) (*models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.TimeSlot
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&slot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("time slot %s: %w", id, models.ErrRecordNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *mongoTimeSlotRepo) DeleteTimeSlot(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete time slot %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("time slot %s: %w", id, models.ErrRecordNotFound)
	}
	return nil
}
