package models

import "errors"

// Storage sentinels. Repository implementations wrap these so the scheduling
// core can classify failures without knowing the backend.
var (
	// ErrRecordNotFound is returned when a lookup by id matches nothing.
	ErrRecordNotFound = errors.New("record not found")
	// ErrOverlapConstraint is returned when a write would leave two booked
	// slots of the same contractor overlapping.
	ErrOverlapConstraint = errors.New("booked slot overlaps an existing booking")
)
