package scheduling

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"homeserve/models"
)

func TestError_IsMatchesCode(t *testing.T) {
	err := fmt.Errorf("booking: %w", notFound("time slot", "s1"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrSlotUnavailable)
	assert.ErrorIs(t, err, models.ErrRecordNotFound)

	var se *Error
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, CodeNotFound, se.Code)
	assert.Equal(t, "notFound: time slot s1 not found", se.Error())
}

func TestLookup(t *testing.T) {
	miss := fmt.Errorf("wrapped: %w", models.ErrRecordNotFound)
	assert.ErrorIs(t, lookup("contractor", "c9", miss), ErrNotFound)

	boom := errors.New("connection reset")
	err := lookup("contractor", "c9", boom)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, boom)
}

func TestCommitErr(t *testing.T) {
	err := commitErr("create slot", fmt.Errorf("insert: %w", models.ErrOverlapConstraint))
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.ErrorIs(t, err, models.ErrOverlapConstraint)

	assert.NotErrorIs(t, commitErr("create slot", errors.New("timeout")), ErrConcurrencyConflict)
}
