package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pburrows/lepidoptera/pkg/types"
)

var fieldValueColumns = []string{
	"id",
	"project_id",
	"work_item_id",
	"field_id",
	"is_assignment_field",
	"value",
	"created_at",
	"updated_at",
	"created_by",
	"updated_by",
	"is_active",
}

func scanFieldValue(row RowScanner) (*types.WorkItemFieldValue, error) {
	var (
		v            types.WorkItemFieldValue
		isAssignment int
		isActive     int
		createdAt    string
		updatedAt    sql.NullString
		updatedBy    sql.NullString
	)
	err := row.Scan(&v.ID, &v.ProjectID, &v.WorkItemID, &v.FieldID, &isAssignment,
		&v.Value, &createdAt, &updatedAt, &v.CreatedBy, &updatedBy, &isActive)
	if err != nil {
		return nil, err
	}
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if v.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return nil, err
	}
	v.UpdatedBy = stringOrEmpty(updatedBy)
	v.IsAssignmentField = isAssignment != 0
	v.IsActive = isActive != 0
	return &v, nil
}

func fieldValueInsertValues(v *types.WorkItemFieldValue) []Value {
	return []Value{
		Text(v.ID),
		Text(v.ProjectID),
		Text(v.WorkItemID),
		Text(v.FieldID),
		Bool(v.IsAssignmentField),
		Text(v.Value),
		Time(v.CreatedAt),
		Time(v.UpdatedAt),
		Text(v.CreatedBy),
		NullableText(v.UpdatedBy),
		Bool(v.IsActive),
	}
}

var fieldValueCodec = Codec[types.WorkItemFieldValue]{
	Table:        "work_item_field_values",
	Columns:      fieldValueColumns,
	Scan:         scanFieldValue,
	ID:           func(v *types.WorkItemFieldValue) string { return v.ID },
	InsertValues: fieldValueInsertValues,
	UpdateValues: func(v *types.WorkItemFieldValue) []Value { return fieldValueInsertValues(v)[1:] },
}

// FieldValuesRepo stores custom field values attached to work items.
type FieldValuesRepo struct {
	*Repository[types.WorkItemFieldValue]
}

// NewFieldValuesRepo builds the field values repository over pool.
func NewFieldValuesRepo(pool *Pool) *FieldValuesRepo {
	return &FieldValuesRepo{Repository: NewRepository(pool, fieldValueCodec)}
}

// ListForItems returns the active field values of the given work items,
// optionally restricted to a set of field IDs. Results are grouped by work
// item ID. An empty itemIDs slice yields an empty map without touching the
// database.
func (r *FieldValuesRepo) ListForItems(ctx context.Context, q Querier, itemIDs, fieldIDs []string) (map[string][]types.WorkItemFieldValue, error) {
	grouped := make(map[string][]types.WorkItemFieldValue)
	if len(itemIDs) == 0 {
		return grouped, nil
	}

	q, release, err := r.querier(ctx, q)
	if err != nil {
		return nil, err
	}
	defer release()

	var sb strings.Builder
	args := make([]any, 0, len(itemIDs)+len(fieldIDs))
	fmt.Fprintf(&sb, "SELECT %s FROM work_item_field_values WHERE is_active = 1 AND work_item_id IN (%s)",
		strings.Join(fieldValueColumns, ", "), placeholders(len(itemIDs), 1))
	for _, id := range itemIDs {
		args = append(args, id)
	}
	if len(fieldIDs) > 0 {
		fmt.Fprintf(&sb, " AND field_id IN (%s)", placeholders(len(fieldIDs), len(itemIDs)+1))
		for _, id := range fieldIDs {
			args = append(args, id)
		}
	}
	sb.WriteString(" ORDER BY work_item_id, created_at")

	rows, err := q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying field values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanFieldValue(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning field value: %w", err)
		}
		grouped[v.WorkItemID] = append(grouped[v.WorkItemID], *v)
	}
	return grouped, rows.Err()
}

// Deactivate soft-deletes a field value row.
func (r *FieldValuesRepo) Deactivate(ctx context.Context, q Querier, id string) error {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return err
	}
	defer release()

	res, err := q.ExecContext(ctx, "UPDATE work_item_field_values SET is_active = 0 WHERE id = ?1", id)
	if err != nil {
		return fmt.Errorf("deactivating field value %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// placeholders renders n numbered placeholders starting at first,
// e.g. placeholders(3, 2) is "?2, ?3, ?4".
func placeholders(n, first int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("?%d", first+i)
	}
	return strings.Join(parts, ", ")
}
