package timeslotRepo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homeserve/models"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func hour(h int) time.Time { return day.Add(time.Duration(h) * time.Hour) }

// newTestRepo needs MONGO_TEST_URI pointing at a replica set; booking writes
// run in transactions.
func newTestRepo(t *testing.T) TimeSlotRepository {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database("homeserve_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		ctx := context.Background()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	repo := NewMongoTimeSlotRepo(db)
	require.NoError(t, repo.EnsureIndexes(ctx))
	return repo
}

func TestMongoTimeSlots_ExclusionConstraint(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.CreateTimeSlot(ctx, models.TimeSlot{ID: "a", ContractorID: "c1", StartTime: hour(8), EndTime: hour(10)})
	require.NoError(t, err)

	_, err = repo.CreateTimeSlot(ctx, models.TimeSlot{ID: "b", ContractorID: "c1", StartTime: hour(9), EndTime: hour(11)})
	assert.ErrorIs(t, err, models.ErrOverlapConstraint)

	// an open slot may overlap, but booking it may not
	_, err = repo.CreateTimeSlot(ctx, models.TimeSlot{ID: "c", ContractorID: "c1", StartTime: hour(9), EndTime: hour(12), IsAvailable: true})
	require.NoError(t, err)
	booked := false
	_, err = repo.UpdateTimeSlot(ctx, "c", models.TimeSlotPatch{IsAvailable: &booked})
	assert.ErrorIs(t, err, models.ErrOverlapConstraint)

	ts, err := repo.GetTimeSlot(ctx, "c")
	require.NoError(t, err)
	assert.True(t, ts.IsAvailable, "rejected update is rolled back")

	// touching windows do not intersect; open slots are not counted
	_, err = repo.CreateTimeSlot(ctx, models.TimeSlot{ID: "d", ContractorID: "c1", StartTime: hour(10), EndTime: hour(11)})
	require.NoError(t, err)
}

func TestMongoTimeSlots_DuplicateWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.CreateTimeSlot(ctx, models.TimeSlot{ID: "a", ContractorID: "c1", StartTime: hour(8), EndTime: hour(10), IsAvailable: true})
	require.NoError(t, err)

	_, err = repo.CreateTimeSlot(ctx, models.TimeSlot{ID: "b", ContractorID: "c1", StartTime: hour(8), EndTime: hour(10), IsAvailable: true})
	assert.ErrorIs(t, err, models.ErrOverlapConstraint)

	// the same window belongs to another contractor freely
	_, err = repo.CreateTimeSlot(ctx, models.TimeSlot{ID: "c", ContractorID: "c2", StartTime: hour(8), EndTime: hour(10), IsAvailable: true})
	require.NoError(t, err)
}

func TestMongoTimeSlots_DeleteFreesWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.CreateTimeSlot(ctx, models.TimeSlot{ID: "a", ContractorID: "c1", StartTime: hour(8), EndTime: hour(10)})
	require.NoError(t, err)
	require.NoError(t, repo.DeleteTimeSlot(ctx, "a"))

	_, err = repo.GetTimeSlot(ctx, "a")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
	assert.ErrorIs(t, repo.DeleteTimeSlot(ctx, "a"), models.ErrRecordNotFound)

	_, err = repo.CreateTimeSlot(ctx, models.TimeSlot{ID: "b", ContractorID: "c1", StartTime: hour(8), EndTime: hour(10)})
	require.NoError(t, err)
}
