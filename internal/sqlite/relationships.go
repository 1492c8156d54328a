package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pburrows/lepidoptera/pkg/types"
)

var relationshipColumns = []string{
	"id",
	"project_id",
	"source_work_item_id",
	"target_work_item_id",
	"relationship_type",
	"created_at",
	"updated_at",
	"created_by",
	"updated_by",
	"is_active",
}

func scanRelationship(row RowScanner) (*types.Relationship, error) {
	var (
		rel       types.Relationship
		createdAt string
		updatedAt sql.NullString
		updatedBy sql.NullString
		isActive  int
	)
	err := row.Scan(&rel.ID, &rel.ProjectID, &rel.SourceWorkItemID, &rel.TargetWorkItemID,
		&rel.RelationshipType, &createdAt, &updatedAt, &rel.CreatedBy, &updatedBy, &isActive)
	if err != nil {
		return nil, err
	}
	if rel.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if rel.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return nil, err
	}
	rel.UpdatedBy = stringOrEmpty(updatedBy)
	rel.IsActive = isActive != 0
	return &rel, nil
}

func relationshipInsertValues(rel *types.Relationship) []Value {
	return []Value{
		Text(rel.ID),
		Text(rel.ProjectID),
		Text(rel.SourceWorkItemID),
		Text(rel.TargetWorkItemID),
		Text(rel.RelationshipType),
		Time(rel.CreatedAt),
		Time(rel.UpdatedAt),
		Text(rel.CreatedBy),
		NullableText(rel.UpdatedBy),
		Bool(rel.IsActive),
	}
}

var relationshipCodec = Codec[types.Relationship]{
	Table:        "work_item_relationships",
	Columns:      relationshipColumns,
	Scan:         scanRelationship,
	ID:           func(rel *types.Relationship) string { return rel.ID },
	InsertValues: relationshipInsertValues,
	UpdateValues: func(rel *types.Relationship) []Value { return relationshipInsertValues(rel)[1:] },
}

// RelationshipsRepo stores links between work items.
type RelationshipsRepo struct {
	*Repository[types.Relationship]
}

// NewRelationshipsRepo builds the relationships repository over pool.
func NewRelationshipsRepo(pool *Pool) *RelationshipsRepo {
	return &RelationshipsRepo{Repository: NewRepository(pool, relationshipCodec)}
}

// ListByWorkItem returns every active relationship where the work item is
// the source or the target, optionally restricted to one relationship type.
func (r *RelationshipsRepo) ListByWorkItem(ctx context.Context, q Querier, workItemID, relType string) ([]types.Relationship, error) {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return nil, err
	}
	defer release()

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM work_item_relationships WHERE is_active = 1 AND (source_work_item_id = ?1 OR target_work_item_id = ?1)",
		strings.Join(relationshipColumns, ", "))
	args := []any{workItemID}
	if relType != "" {
		sb.WriteString(" AND relationship_type = ?2")
		args = append(args, relType)
	}
	sb.WriteString(" ORDER BY created_at")

	rows, err := q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying relationships for work item %s: %w", workItemID, err)
	}
	defer rows.Close()

	var rels []types.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		rels = append(rels, *rel)
	}
	return rels, rows.Err()
}

// Deactivate soft-deletes a relationship.
func (r *RelationshipsRepo) Deactivate(ctx context.Context, q Querier, id, user string) error {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return err
	}
	defer release()

	res, err := q.ExecContext(ctx,
		"UPDATE work_item_relationships SET is_active = 0, updated_at = ?1, updated_by = ?2 WHERE id = ?3",
		Time(nowUTC()).arg(), user, id)
	if err != nil {
		return fmt.Errorf("deactivating relationship %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.ErrNotFound
	}
	return nil
}
