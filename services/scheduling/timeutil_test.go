package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeserve/models"
)

func TestOverlaps_HalfOpen(t *testing.T) {
	tests := []struct {
		name       string
		aStart     time.Time
		aEnd       time.Time
		bStart     time.Time
		bEnd       time.Time
		overlapped bool
	}{
		{"disjoint", at(8, 0), at(9, 0), at(10, 0), at(11, 0), false},
		{"touching", at(8, 0), at(10, 0), at(10, 0), at(12, 0), false},
		{"partial", at(8, 0), at(10, 0), at(9, 30), at(12, 0), true},
		{"contained", at(8, 0), at(12, 0), at(9, 0), at(10, 0), true},
		{"identical", at(8, 0), at(10, 0), at(8, 0), at(10, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlapped, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			assert.Equal(t, tt.overlapped, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestGap(t *testing.T) {
	assert.Equal(t, 15*time.Minute, Gap(at(10, 15), at(11, 0), at(8, 0), at(10, 0)))
	assert.Equal(t, 30*time.Minute, Gap(at(8, 0), at(10, 0), at(10, 30), at(11, 0)))
	assert.Equal(t, time.Duration(0), Gap(at(8, 0), at(10, 0), at(10, 0), at(11, 0)))
	assert.Equal(t, -time.Hour, Gap(at(8, 0), at(10, 0), at(9, 0), at(11, 0)))
}

func TestBucketFor(t *testing.T) {
	assert.Equal(t, models.Duration1h, BucketFor(60))
	assert.Equal(t, models.Duration2h, BucketFor(120))
	assert.Equal(t, models.Duration4h, BucketFor(240))
	assert.Equal(t, models.Duration8h, BucketFor(480))
	assert.Equal(t, models.DurationCustom, BucketFor(90))
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 8, h)
	assert.Equal(t, 30, m)

	h, m, err = ParseClock("24:00")
	require.NoError(t, err)
	assert.Equal(t, 24, h)
	assert.Equal(t, 0, m)

	for _, bad := range []string{"", "8", "25:00", "24:30", "08:60", "ab:cd"} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestAtClock_Timezones(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	got, err := AtClock(time.Date(2026, 3, 2, 12, 0, 0, 0, ny), "09:00", ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC), got.UTC())

	// 02:30 does not exist on spring-forward day; the result shifts by the
	// transition but stays on the same calendar date.
	springForward := time.Date(2026, 3, 8, 12, 0, 0, 0, ny)
	got, err = AtClock(springForward, "02:30", ny)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-08", DateKey(got, ny))
	assert.NotEqual(t, 2, got.Hour())
}

func TestNextDay_DSTLength(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	spring := time.Date(2026, 3, 8, 0, 0, 0, 0, ny)
	assert.Equal(t, 23*time.Hour, NextDay(spring, ny).Sub(spring))

	fall := time.Date(2026, 11, 1, 0, 0, 0, 0, ny)
	assert.Equal(t, 25*time.Hour, NextDay(fall, ny).Sub(fall))

	assert.Equal(t, "2026-03-09", DateKey(NextDay(spring, ny), ny))
}

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2026-03-02", time.UTC)
	require.NoError(t, err)
	assert.True(t, day.Equal(monday))

	_, err = ParseDate("03/02/2026", time.UTC)
	assert.Error(t, err)
}
