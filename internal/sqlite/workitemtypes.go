package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pburrows/lepidoptera/pkg/types"
)

var workItemTypeColumns = []string{
	"id",
	"project_id",
	"created_at",
	"updated_at",
	"is_active",
	"allowed_children_type_ids",
	"allowed_statuses",
	"allowed_priorities",
	"assignment_field_definitions",
	"work_item_details",
	"work_item_fields",
	"name",
	"display_name",
}

func scanWorkItemType(row RowScanner) (*types.WorkItemType, error) {
	var (
		t         types.WorkItemType
		createdAt string
		updatedAt sql.NullString
		isActive  int
	)
	err := row.Scan(&t.ID, &t.ProjectID, &createdAt, &updatedAt, &isActive,
		&t.AllowedChildrenTypeIDs, &t.AllowedStatuses, &t.AllowedPriorities,
		&t.AssignmentFieldDefinitions, &t.WorkItemDetails, &t.WorkItemFields,
		&t.Name, &t.DisplayName)
	if err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return nil, err
	}
	t.IsActive = isActive != 0
	return &t, nil
}

func workItemTypeInsertValues(t *types.WorkItemType) []Value {
	return []Value{
		Text(t.ID),
		Text(t.ProjectID),
		Time(t.CreatedAt),
		Time(t.UpdatedAt),
		Bool(t.IsActive),
		Text(t.AllowedChildrenTypeIDs),
		Text(t.AllowedStatuses),
		Text(t.AllowedPriorities),
		Text(t.AssignmentFieldDefinitions),
		Text(t.WorkItemDetails),
		Text(t.WorkItemFields),
		Text(t.Name),
		Text(t.DisplayName),
	}
}

var workItemTypeCodec = Codec[types.WorkItemType]{
	Table:        "work_item_types",
	Columns:      workItemTypeColumns,
	Scan:         scanWorkItemType,
	ID:           func(t *types.WorkItemType) string { return t.ID },
	InsertValues: workItemTypeInsertValues,
	UpdateValues: func(t *types.WorkItemType) []Value { return workItemTypeInsertValues(t)[1:] },
}

// TypesRepo stores work item type rows. The JSON columns stay raw text at
// this layer; FindConfig and friends parse them into typed shapes on the
// way out, failing hard on malformed JSON.
type TypesRepo struct {
	*Repository[types.WorkItemType]
}

// NewTypesRepo builds the work item types repository over pool.
func NewTypesRepo(pool *Pool) *TypesRepo {
	return &TypesRepo{Repository: NewRepository(pool, workItemTypeCodec)}
}

// FindConfig returns the parsed type configuration for the given ID.
func (r *TypesRepo) FindConfig(ctx context.Context, q Querier, id string) (*types.TypeConfig, error) {
	t, err := r.FindByID(ctx, q, id)
	if err != nil {
		return nil, err
	}
	cfg, err := t.ParseConfig()
	if err != nil {
		return nil, fmt.Errorf("hydrating work item type %s: %w", id, err)
	}
	return cfg, nil
}

// FindActiveByProject returns the parsed configurations of every active type
// in the project, ordered by name.
func (r *TypesRepo) FindActiveByProject(ctx context.Context, q Querier, projectID string) ([]*types.TypeConfig, error) {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return nil, err
	}
	defer release()

	query := fmt.Sprintf(
		"SELECT %s FROM work_item_types WHERE project_id = ?1 AND is_active = 1 ORDER BY name",
		strings.Join(workItemTypeColumns, ", "))
	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying work item types for project %s: %w", projectID, err)
	}
	defer rows.Close()

	var configs []*types.TypeConfig
	for rows.Next() {
		t, err := scanWorkItemType(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning work item type: %w", err)
		}
		cfg, err := t.ParseConfig()
		if err != nil {
			return nil, fmt.Errorf("hydrating work item type %s: %w", t.ID, err)
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// MarkInactive soft-deletes the type.
func (r *TypesRepo) MarkInactive(ctx context.Context, q Querier, id string) error {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return err
	}
	defer release()

	res, err := q.ExecContext(ctx,
		"UPDATE work_item_types SET is_active = 0, updated_at = ?1 WHERE id = ?2",
		Time(nowUTC()).arg(), id)
	if err != nil {
		return fmt.Errorf("marking work item type %s inactive: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.ErrNotFound
	}
	return nil
}
