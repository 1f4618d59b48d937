package scheduling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeserve/models"
)

func TestGenerateAlternativeSlots_FromSlot(t *testing.T) {
	svc, _ := newTestService(t)
	slots := generateMonday(t, svc)

	alts, err := svc.GenerateAlternativeSlots(context.Background(), models.BookingRequest{ContractorID: "c1", SlotID: slots[0].ID})
	require.NoError(t, err)
	require.Len(t, alts, 5)
	for _, alt := range alts {
		assert.NotEqual(t, slots[0].ID, alt.ID)
		assert.False(t, alt.StartTime.Before(slots[0].StartTime))
	}
	// existing generated slots come back with their ids
	assert.Equal(t, slots[1].ID, alts[0].ID)
}

func TestGenerateAlternativeSlots_RespectsLimit(t *testing.T) {
	svc, _ := newTestService(t, func(c *Config) { c.AlternativeLimit = 2 })

	alts, err := svc.GenerateAlternativeSlots(context.Background(), models.BookingRequest{
		ContractorID: "c1", StartTime: at(8, 0), EndTime: at(9, 0),
	})
	require.NoError(t, err)
	require.Len(t, alts, 2)
	assert.Equal(t, at(9, 20), alts[0].StartTime, "the original 08:00 window is skipped")
}

func TestGenerateAlternativeSlots_Errors(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GenerateAlternativeSlots(context.Background(), models.BookingRequest{ContractorID: "c1"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.GenerateAlternativeSlots(context.Background(), models.BookingRequest{ContractorID: "c1", SlotID: "gone"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMatchPreferredDates(t *testing.T) {
	svc, _ := newTestService(t)

	matches, err := svc.MatchPreferredDates(context.Background(), "c1", []models.PreferredDate{
		{Date: "2026-03-02", Time: "10:00"},
		{Date: "2026-03-03"},
		{Date: "2026-03-07"},
	}, 120, "")
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, 1, matches[0].Preference)
	assert.Equal(t, [][2]int64{
		{at(8, 0).Unix(), at(10, 0).Unix()},
		{at(10, 20).Unix(), at(12, 20).Unix()},
	}, unixWindows(matches[0].Slots))

	assert.Equal(t, 2, matches[1].Preference)
	assert.Len(t, matches[1].Slots, 4)

	assert.Equal(t, 3, matches[2].Preference)
	assert.NotNil(t, matches[2].Slots)
	assert.Empty(t, matches[2].Slots, "saturday has no working hours")
}

func TestMatchPreferredDates_Errors(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.MatchPreferredDates(context.Background(), "c1", []models.PreferredDate{{Date: "next tuesday"}}, 60, "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.MatchPreferredDates(context.Background(), "c1", []models.PreferredDate{{Date: "2026-03-02", Time: "noon"}}, 60, "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.MatchPreferredDates(context.Background(), "ghost", []models.PreferredDate{{Date: "2026-03-02"}}, 60, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func unixWindows(slots []models.TimeSlot) [][2]int64 {
	out := make([][2]int64, 0, len(slots))
	for _, ts := range slots {
		out = append(out, [2]int64{ts.StartTime.Unix(), ts.EndTime.Unix()})
	}
	return out
}
