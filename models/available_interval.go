package models

import "time"

// DateRange is a half-open instant range [Start, End).
type DateRange struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

// Valid reports whether the range is non-empty.
func (r DateRange) Valid() bool {
	return r.End.After(r.Start)
}
