// File: database/repository/timeslot/transaction.go
package timeslotRepo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homeserve/models"
)

// withBookingTxn runs fn in a transaction. A write conflict with another
// transaction surfaces as models.ErrOverlapConstraint so callers can retry.
func (r *mongoTimeSlotRepo) withBookingTxn(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sess, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
	var labeled mongo.LabeledError
	if errors.As(err, &labeled) && labeled.HasErrorLabel("TransientTransactionError") {
		return fmt.Errorf("concurrent booking write: %v: %w", err, models.ErrOverlapConstraint)
	}
	return err
}

// checkExclusion fails when another booked slot of the contractor intersects
// slot. It first bumps the contractor's guard document, so two transactions
// booking the same contractor always write-conflict instead of both passing
// the read.
func (r *mongoTimeSlotRepo) checkExclusion(sc context.Context, slot models.TimeSlot) error {
	_, err := r.guard.UpdateOne(sc,
		bson.M{"_id": slot.ContractorID},
		bson.M{"$inc": bson.M{"writes": 1}},
		options.Update().SetUpsert(true))
	if err != nil {
		return err
	}

	filter := bson.M{
		"contractorId": slot.ContractorID,
		"isAvailable":  false,
		"id":           bson.M{"$ne": slot.ID},
		"startTime":    bson.M{"$lt": slot.EndTime},
		"endTime":      bson.M{"$gt": slot.StartTime},
	}
	n, err := r.coll.CountDocuments(sc, filter)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("slot %s overlaps %d booked slot(s): %w", slot.ID, n, models.ErrOverlapConstraint)
	}
	return nil
}
