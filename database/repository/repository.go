package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	contractorRepo "homeserve/database/repository/contractor"
	recordsRepo "homeserve/database/repository/records"
	timeslotRepo "homeserve/database/repository/timeslot"
	workorderRepo "homeserve/database/repository/workorder"
)

// Re-export the per-collection repository interfaces and constructors.
type TimeSlotRepository = timeslotRepo.TimeSlotRepository

var NewMongoTimeSlotRepo = timeslotRepo.NewMongoTimeSlotRepo

type WorkOrderRepository = workorderRepo.WorkOrderRepository

var NewMongoWorkOrderRepo = workorderRepo.NewMongoWorkOrderRepo

type ContractorRepository = contractorRepo.ContractorRepository

var NewMongoContractorRepo = contractorRepo.NewMongoContractorRepo

type ScheduleLogRepository = recordsRepo.ScheduleLogRepository

var NewMongoRecordRepo = recordsRepo.NewMongoRecordRepo

// MongoRepository bundles the collection repositories into the single store
// the scheduling service runs against.
type MongoRepository struct {
	TimeSlotRepository
	WorkOrderRepository
	ContractorRepository
	ScheduleLogRepository
}

// NewMongoRepository wires every collection repository to db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		TimeSlotRepository:    NewMongoTimeSlotRepo(db),
		WorkOrderRepository:   NewMongoWorkOrderRepo(db),
		ContractorRepository:  NewMongoContractorRepo(db),
		ScheduleLogRepository: NewMongoRecordRepo(db),
	}
}

// EnsureIndexes creates the indexes of every collection.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	for _, ensure := range []func(context.Context) error{
		r.TimeSlotRepository.EnsureIndexes,
		r.WorkOrderRepository.EnsureIndexes,
		r.ContractorRepository.EnsureIndexes,
		r.ScheduleLogRepository.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return err
		}
	}
	return nil
}
