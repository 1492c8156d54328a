package sqlite

import (
	"database/sql"

	"github.com/pburrows/lepidoptera/pkg/types"
)

// workItemColumns is the authoritative column order for work_items.
// Insert and update value lists below must match it positionally.
var workItemColumns = []string{
	"id",
	"title",
	"description",
	"status",
	"created_at",
	"updated_at",
	"priority",
	"created_by",
	"assigned_to",
	"project_id",
	"type_id",
	"sequential_number",
}

func scanWorkItem(row RowScanner) (*types.WorkItem, error) {
	var (
		w                       types.WorkItem
		description, assignedTo sql.NullString
		updatedAt, seqNumber    sql.NullString
		createdAt               string
	)
	err := row.Scan(&w.ID, &w.Title, &description, &w.Status, &createdAt,
		&updatedAt, &w.Priority, &w.CreatedBy, &assignedTo, &w.ProjectID,
		&w.TypeID, &seqNumber)
	if err != nil {
		return nil, err
	}
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return nil, err
	}
	w.Description = stringOrEmpty(description)
	w.AssignedTo = stringOrEmpty(assignedTo)
	w.SequentialNumber = stringOrEmpty(seqNumber)
	return &w, nil
}

func workItemInsertValues(w *types.WorkItem) []Value {
	return []Value{
		Text(w.ID),
		Text(w.Title),
		NullableText(w.Description),
		Text(w.Status),
		Time(w.CreatedAt),
		Time(w.UpdatedAt),
		Int(int64(w.Priority)),
		Text(w.CreatedBy),
		NullableText(w.AssignedTo),
		Text(w.ProjectID),
		Text(w.TypeID),
		NullableText(w.SequentialNumber),
	}
}

func workItemUpdateValues(w *types.WorkItem) []Value {
	return workItemInsertValues(w)[1:]
}

var workItemCodec = Codec[types.WorkItem]{
	Table:        "work_items",
	Columns:      workItemColumns,
	Scan:         scanWorkItem,
	ID:           func(w *types.WorkItem) string { return w.ID },
	InsertValues: workItemInsertValues,
	UpdateValues: workItemUpdateValues,
}

// WorkItemsRepo stores work item rows. Listing with filters lives in
// workitems_query.go.
type WorkItemsRepo struct {
	*Repository[types.WorkItem]
}

// NewWorkItemsRepo builds the work items repository over pool.
func NewWorkItemsRepo(pool *Pool) *WorkItemsRepo {
	return &WorkItemsRepo{Repository: NewRepository(pool, workItemCodec)}
}
