package workorderRepo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"homeserve/models"
)

func TestPatchUpdate_Clear(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	status := models.WorkOrderPending

	update := patchUpdate(models.WorkOrderPatch{Clear: true, Status: &status}, now)

	set := update["$set"].(bson.M)
	assert.Equal(t, models.WorkOrderPending, set["status"])
	assert.Equal(t, false, set["hasSchedulingConflicts"])
	assert.Equal(t, now, set["updatedAt"])

	unset := update["$unset"].(bson.M)
	assert.Len(t, unset, len(scheduleFields))
	assert.Contains(t, unset, "assignedSlotId")
}

func TestPatchUpdate_SetWinsOverClear(t *testing.T) {
	now := time.Now()
	slot := "s-2"
	start := now.Add(time.Hour)

	update := patchUpdate(models.WorkOrderPatch{Clear: true, AssignedSlotID: &slot, ScheduledStartDate: &start}, now)

	set := update["$set"].(bson.M)
	unset := update["$unset"].(bson.M)
	assert.Equal(t, "s-2", set["assignedSlotId"])
	assert.Equal(t, &start, set["scheduledStartDate"])
	assert.NotContains(t, unset, "assignedSlotId")
	assert.NotContains(t, unset, "scheduledStartDate")
	assert.Contains(t, unset, "scheduledEndDate")
}

func TestPatchUpdate_PartialLeavesOthersAlone(t *testing.T) {
	flag := true
	update := patchUpdate(models.WorkOrderPatch{HasSchedulingConflicts: &flag}, time.Now())

	set := update["$set"].(bson.M)
	assert.Len(t, set, 2)
	assert.Equal(t, true, set["hasSchedulingConflicts"])
	assert.NotContains(t, update, "$unset")
}
