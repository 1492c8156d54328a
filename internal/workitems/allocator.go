package workitems

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pburrows/lepidoptera/internal/sqlite"
	"github.com/pburrows/lepidoptera/pkg/types"
)

// Range allocation policy. Each claimed range spans rangeSpan numbers and is
// treated as exhausted once exhaustionThreshold of them are consumed, so a
// machine claims its next range with headroom to spare. The first range of a
// project starts at rangeFloor.
const (
	rangeSpan           = 1000
	exhaustionThreshold = 800
	rangeFloor          = 1000
)

// Allocator mints per-project sequential numbers for a machine. Machines
// never coordinate in real time: each claims non-overlapping thousand-number
// ranges, and claims stay collision-free because every claim reads the
// global maximum range end across all machines before picking a start.
//
// The whole read-claim-increment step runs inside one write transaction, so
// two concurrent callers on the same database can never mint the same
// number. Collisions with a range claimed on another machine and synced in
// later surface through the unique (project, machine, range_start) index and
// are retried once with a fresh read.
type Allocator struct {
	store *sqlite.Store
	log   zerolog.Logger
}

// NewAllocator builds an allocator over the store.
func NewAllocator(store *sqlite.Store, log zerolog.Logger) *Allocator {
	return &Allocator{store: store, log: log}
}

// NextNumber mints the next sequential number for (projectID, machineID) in
// its own transaction.
func (a *Allocator) NextNumber(ctx context.Context, projectID, machineID string) (int64, error) {
	var minted int64
	err := a.store.WithTx(ctx, func(tx sqlite.Querier) error {
		var err error
		minted, err = a.nextNumberTx(ctx, tx, projectID, machineID)
		return err
	})
	if isUniqueViolation(err) {
		a.log.Debug().Str("project_id", projectID).Msg("range claim collided, retrying")
		err = a.store.WithTx(ctx, func(tx sqlite.Querier) error {
			var txErr error
			minted, txErr = a.nextNumberTx(ctx, tx, projectID, machineID)
			return txErr
		})
	}
	if err != nil {
		return 0, err
	}
	return minted, nil
}

// nextNumberTx mints the next number inside the caller's write transaction.
// The service threads it into the work item creation transaction so the
// minted number and the row that carries it commit together.
func (a *Allocator) nextNumberTx(ctx context.Context, tx sqlite.Querier, projectID, machineID string) (int64, error) {
	rng, err := a.store.Ranges.FindActiveRange(ctx, tx, projectID, machineID)
	switch {
	case errors.Is(err, types.ErrNotFound):
		rng = nil
	case err != nil:
		return 0, err
	}

	if rng == nil || rng.CurrentNumber-rng.RangeStart >= exhaustionThreshold {
		if rng, err = a.claimRange(ctx, tx, projectID, machineID); err != nil {
			return 0, err
		}
	}

	minted, err := a.store.Ranges.IncrementCurrent(ctx, tx, rng.ID)
	if errors.Is(err, types.ErrNotFound) {
		// The range filled up between the active-range read and the
		// increment guard. Claim a fresh one and mint from it.
		if rng, err = a.claimRange(ctx, tx, projectID, machineID); err != nil {
			return 0, err
		}
		minted, err = a.store.Ranges.IncrementCurrent(ctx, tx, rng.ID)
	}
	if err != nil {
		return 0, err
	}
	return minted, nil
}

// claimRange creates the machine's next range: one past the highest range
// end any machine has claimed for the project, or the floor when the
// project has no ranges yet.
func (a *Allocator) claimRange(ctx context.Context, tx sqlite.Querier, projectID, machineID string) (*types.NumberRange, error) {
	maxEnd, err := a.store.Ranges.MaxRangeEnd(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	start := int64(rangeFloor)
	if maxEnd > 0 {
		start = maxEnd + 1
	}

	rng := &types.NumberRange{
		ID:            newUUID(),
		ProjectID:     projectID,
		MachineID:     machineID,
		RangeStart:    start,
		RangeEnd:      start + rangeSpan - 1,
		CurrentNumber: start - 1,
		CreatedAt:     nowUTC(),
	}
	if _, err := a.store.Ranges.Create(ctx, tx, rng); err != nil {
		return nil, fmt.Errorf("claiming range [%d, %d] for project %s: %w", rng.RangeStart, rng.RangeEnd, projectID, err)
	}
	a.log.Debug().
		Str("project_id", projectID).
		Str("machine_id", machineID).
		Int64("range_start", rng.RangeStart).
		Int64("range_end", rng.RangeEnd).
		Msg("claimed number range")
	return rng, nil
}

// isUniqueViolation reports whether err is a unique constraint failure from
// the driver. The pure-Go driver does not export a stable error type for
// this, so the message text is the contract.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
