package types

import (
	"fmt"
	"time"
)

// NumberRange is one block of sequential numbers allocated to a machine for
// a project. RangeStart and RangeEnd are inclusive; CurrentNumber is the last
// number handed out and starts at RangeStart-1. Ranges are append-only: old
// ranges are never reused or deleted, and range starts never overlap across
// machines because every claim reads the global maximum end for the project.
type NumberRange struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	MachineID     string    `json:"machine_id"`
	RangeStart    int64     `json:"range_start"`
	RangeEnd      int64     `json:"range_end"`
	CurrentNumber int64     `json:"current_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at,omitzero"`
}

// Remaining reports how many numbers are still available in the range.
func (r *NumberRange) Remaining() int64 {
	return r.RangeEnd - r.CurrentNumber
}

// FormatSequenceNumber renders a minted number for display: the project's
// sequence prefix, a dash, and the number zero-padded to at least four
// digits (e.g. "M-0003", "M-1045").
func FormatSequenceNumber(prefix string, n int64) string {
	return fmt.Sprintf("%s-%04d", prefix, n)
}
