package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pburrows/lepidoptera/pkg/types"
)

var numberRangeColumns = []string{
	"id",
	"project_id",
	"machine_id",
	"range_start",
	"range_end",
	"current_number",
	"created_at",
	"updated_at",
}

func scanNumberRange(row RowScanner) (*types.NumberRange, error) {
	var (
		r         types.NumberRange
		createdAt string
		updatedAt sql.NullString
	)
	err := row.Scan(&r.ID, &r.ProjectID, &r.MachineID, &r.RangeStart, &r.RangeEnd,
		&r.CurrentNumber, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func numberRangeInsertValues(r *types.NumberRange) []Value {
	return []Value{
		Text(r.ID),
		Text(r.ProjectID),
		Text(r.MachineID),
		Int(r.RangeStart),
		Int(r.RangeEnd),
		Int(r.CurrentNumber),
		Time(r.CreatedAt),
		Time(r.UpdatedAt),
	}
}

var numberRangeCodec = Codec[types.NumberRange]{
	Table:        "work_item_number_ranges",
	Columns:      numberRangeColumns,
	Scan:         scanNumberRange,
	ID:           func(r *types.NumberRange) string { return r.ID },
	InsertValues: numberRangeInsertValues,
	UpdateValues: func(r *types.NumberRange) []Value { return numberRangeInsertValues(r)[1:] },
}

// RangesRepo stores the per-machine sequential number ranges. The allocator
// in internal/workitems drives it inside write transactions; every query
// here accepts an explicit Querier so weaving them into a transaction is
// the normal case, not the exception.
type RangesRepo struct {
	*Repository[types.NumberRange]
}

// NewRangesRepo builds the number ranges repository over pool.
func NewRangesRepo(pool *Pool) *RangesRepo {
	return &RangesRepo{Repository: NewRepository(pool, numberRangeCodec)}
}

// FindActiveRange returns the newest range for (project, machine) that still
// has numbers left, or types.ErrNotFound when the machine has no usable
// range and must claim one.
func (r *RangesRepo) FindActiveRange(ctx context.Context, q Querier, projectID, machineID string) (*types.NumberRange, error) {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return nil, err
	}
	defer release()

	query := fmt.Sprintf(
		"SELECT %s FROM work_item_number_ranges WHERE project_id = ?1 AND machine_id = ?2 AND current_number < range_end ORDER BY range_start DESC LIMIT 1",
		strings.Join(numberRangeColumns, ", "))
	rng, err := scanNumberRange(q.QueryRowContext(ctx, query, projectID, machineID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding active range for project %s machine %s: %w", projectID, machineID, err)
	}
	return rng, nil
}

// FindByProject returns every range in the project, newest first.
func (r *RangesRepo) FindByProject(ctx context.Context, q Querier, projectID string) ([]types.NumberRange, error) {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return nil, err
	}
	defer release()

	query := fmt.Sprintf(
		"SELECT %s FROM work_item_number_ranges WHERE project_id = ?1 ORDER BY range_start DESC",
		strings.Join(numberRangeColumns, ", "))
	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying ranges for project %s: %w", projectID, err)
	}
	defer rows.Close()

	var ranges []types.NumberRange
	for rows.Next() {
		rng, err := scanNumberRange(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning range: %w", err)
		}
		ranges = append(ranges, *rng)
	}
	return ranges, rows.Err()
}

// MaxRangeEnd returns the highest range_end claimed by any machine in the
// project, or 0 when no range exists yet.
func (r *RangesRepo) MaxRangeEnd(ctx context.Context, q Querier, projectID string) (int64, error) {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return 0, err
	}
	defer release()

	var max sql.NullInt64
	err = q.QueryRowContext(ctx,
		"SELECT MAX(range_end) FROM work_item_number_ranges WHERE project_id = ?1", projectID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("reading max range end for project %s: %w", projectID, err)
	}
	return max.Int64, nil
}

// IncrementCurrent advances the range's current number by one and returns
// the minted value in a single statement. The allocator runs it inside a
// write transaction; the WHERE guard keeps the counter inside the range even
// under a racing writer.
func (r *RangesRepo) IncrementCurrent(ctx context.Context, q Querier, rangeID string) (int64, error) {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return 0, err
	}
	defer release()

	var minted int64
	err = q.QueryRowContext(ctx,
		"UPDATE work_item_number_ranges SET current_number = current_number + 1, updated_at = ?1 WHERE id = ?2 AND current_number < range_end RETURNING current_number",
		Time(nowUTC()).arg(), rangeID).Scan(&minted)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, types.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("incrementing range %s: %w", rangeID, err)
	}
	return minted, nil
}
