package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/pburrows/lepidoptera/pkg/types"
)

// queryParams accumulates bound parameters while the SQL text is built.
// add returns the numbered placeholder for the value, so clause text and
// parameter order can never drift apart.
type queryParams struct {
	values []Value
}

func (p *queryParams) add(v Value) string {
	p.values = append(p.values, v)
	return fmt.Sprintf("?%d", len(p.values))
}

func (p *queryParams) args() []any {
	return bindArgs(p.values)
}

// nativeSortColumns maps the sortable work item fields to their columns.
var nativeSortColumns = map[types.SortField]string{
	types.SortCreatedAt: "w.created_at",
	types.SortUpdatedAt: "w.updated_at",
	types.SortTitle:     "w.title",
	types.SortStatus:    "w.status",
	types.SortPriority:  "w.priority",
	types.SortTypeID:    "w.type_id",
}

// buildWhere renders the WHERE clause for the query, appending one bound
// parameter per populated filter. The project predicate always comes first.
func buildWhere(q *types.WorkItemQuery, p *queryParams) (string, error) {
	if q.ProjectID == "" {
		return "", types.ErrProjectRequired
	}

	preds := []string{"w.project_id = " + p.add(Text(q.ProjectID))}

	if len(q.Statuses) > 0 {
		marks := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			marks[i] = p.add(Text(s))
		}
		preds = append(preds, fmt.Sprintf("w.status IN (%s)", strings.Join(marks, ", ")))
	}
	if q.Priority != nil {
		preds = append(preds, "w.priority = "+p.add(Int(int64(*q.Priority))))
	}
	if q.PriorityMin != nil {
		preds = append(preds, "w.priority >= "+p.add(Int(int64(*q.PriorityMin))))
	}
	if q.PriorityMax != nil {
		preds = append(preds, "w.priority <= "+p.add(Int(int64(*q.PriorityMax))))
	}
	if q.TypeID != "" {
		preds = append(preds, "w.type_id = "+p.add(Text(q.TypeID)))
	}
	if len(q.TypeIDs) > 0 {
		marks := make([]string, len(q.TypeIDs))
		for i, id := range q.TypeIDs {
			marks[i] = p.add(Text(id))
		}
		preds = append(preds, fmt.Sprintf("w.type_id IN (%s)", strings.Join(marks, ", ")))
	}
	if q.AssignedTo != "" {
		preds = append(preds, "w.assigned_to = "+p.add(Text(q.AssignedTo)))
	}
	if q.CreatedBy != "" {
		preds = append(preds, "w.created_by = "+p.add(Text(q.CreatedBy)))
	}
	if q.TitleContains != "" {
		preds = append(preds, "w.title LIKE "+p.add(Text("%"+q.TitleContains+"%")))
	}
	if len(q.SequenceNumbers) > 0 {
		marks := make([]string, len(q.SequenceNumbers))
		for i, n := range q.SequenceNumbers {
			marks[i] = p.add(Text(n))
		}
		preds = append(preds, fmt.Sprintf("w.sequential_number IN (%s)", strings.Join(marks, ", ")))
	}
	for _, f := range q.FieldValues {
		if f.FieldID == "" {
			return "", fmt.Errorf("field value filter without field id: %w", types.ErrInvalidFilter)
		}
		preds = append(preds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM work_item_field_values fv WHERE fv.work_item_id = w.id AND fv.field_id = %s AND fv.is_assignment_field = %s AND fv.value = %s AND fv.is_active = 1)",
			p.add(Text(f.FieldID)), p.add(Bool(f.IsAssignmentField)), p.add(Text(f.Value))))
	}

	return "WHERE " + strings.Join(preds, " AND "), nil
}

// buildOrder renders the JOIN (for custom-field sort) and ORDER BY clauses.
// Sorting by a custom field left-joins the single matching value row so
// items without the field still appear, placed last ascending and first
// descending. Parameters bound here come after the WHERE parameters even
// though the join text precedes the WHERE text; numbered placeholders make
// that ordering safe.
func buildOrder(q *types.WorkItemQuery, p *queryParams) (join, orderBy string, err error) {
	dir := "ASC"
	switch q.SortDirection {
	case types.SortAsc, "":
	case types.SortDesc:
		dir = "DESC"
	default:
		return "", "", fmt.Errorf("sort direction %q: %w", q.SortDirection, types.ErrInvalidSort)
	}

	switch q.SortBy {
	case "":
		return "", "ORDER BY w.created_at DESC", nil
	case types.SortFieldValue:
		if q.SortFieldID == "" {
			return "", "", fmt.Errorf("field value sort without field id: %w", types.ErrInvalidSort)
		}
		join = fmt.Sprintf(
			"LEFT JOIN work_item_field_values sv ON sv.work_item_id = w.id AND sv.field_id = %s AND sv.is_assignment_field = %s AND sv.is_active = 1",
			p.add(Text(q.SortFieldID)), p.add(Bool(q.SortIsAssignmentField)))
		nulls := "NULLS LAST"
		if dir == "DESC" {
			nulls = "NULLS FIRST"
		}
		orderBy = fmt.Sprintf("ORDER BY sv.value %s %s, w.created_at DESC", dir, nulls)
		return join, orderBy, nil
	default:
		col, ok := nativeSortColumns[q.SortBy]
		if !ok {
			return "", "", fmt.Errorf("sort field %q: %w", q.SortBy, types.ErrInvalidSort)
		}
		return "", fmt.Sprintf("ORDER BY %s %s", col, dir), nil
	}
}

// buildLimit renders the LIMIT/OFFSET clause. Page/PageSize wins over
// Limit/Offset when both are set; absent both, no limit applies.
func buildLimit(q *types.WorkItemQuery, p *queryParams) (string, error) {
	switch {
	case q.Page != nil || q.PageSize != nil:
		if q.Page == nil || q.PageSize == nil || *q.Page < 1 || *q.PageSize < 1 {
			return "", fmt.Errorf("page pagination needs page >= 1 and page_size >= 1: %w", types.ErrInvalidFilter)
		}
		offset := (*q.Page - 1) * *q.PageSize
		return fmt.Sprintf("LIMIT %s OFFSET %s",
			p.add(Int(int64(*q.PageSize))), p.add(Int(int64(offset)))), nil
	case q.Limit != nil:
		if *q.Limit < 0 {
			return "", fmt.Errorf("negative limit: %w", types.ErrInvalidFilter)
		}
		clause := "LIMIT " + p.add(Int(int64(*q.Limit)))
		if q.Offset != nil {
			if *q.Offset < 0 {
				return "", fmt.Errorf("negative offset: %w", types.ErrInvalidFilter)
			}
			clause += " OFFSET " + p.add(Int(int64(*q.Offset)))
		}
		return clause, nil
	case q.Offset != nil:
		if *q.Offset < 0 {
			return "", fmt.Errorf("negative offset: %w", types.ErrInvalidFilter)
		}
		// SQLite requires a LIMIT before OFFSET; -1 means unbounded.
		return "LIMIT -1 OFFSET " + p.add(Int(int64(*q.Offset))), nil
	default:
		return "", nil
	}
}

// List returns the work items matching the query plus the total match count
// ignoring pagination. The count statement reuses the WHERE parameters only,
// so both statements see the same filters by construction.
func (r *WorkItemsRepo) List(ctx context.Context, q Querier, query *types.WorkItemQuery) ([]types.WorkItem, int, error) {
	var p queryParams
	where, err := buildWhere(query, &p)
	if err != nil {
		return nil, 0, err
	}
	whereCount := len(p.values)

	join, orderBy, err := buildOrder(query, &p)
	if err != nil {
		return nil, 0, err
	}
	limit, err := buildLimit(query, &p)
	if err != nil {
		return nil, 0, err
	}

	q, release, err := r.querier(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	defer release()

	cols := make([]string, len(workItemColumns))
	for i, c := range workItemColumns {
		cols[i] = "w." + c
	}
	parts := []string{fmt.Sprintf("SELECT %s FROM work_items w", strings.Join(cols, ", "))}
	if join != "" {
		parts = append(parts, join)
	}
	parts = append(parts, where, orderBy)
	if limit != "" {
		parts = append(parts, limit)
	}

	rows, err := q.QueryContext(ctx, strings.Join(parts, " "), p.args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing work items: %w", err)
	}
	defer rows.Close()

	var items []types.WorkItem
	for rows.Next() {
		w, err := scanWorkItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning work item: %w", err)
		}
		items = append(items, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	countSQL := "SELECT COUNT(*) FROM work_items w " + where
	if err := q.QueryRowContext(ctx, countSQL, p.args()[:whereCount]...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting work items: %w", err)
	}
	return items, total, nil
}
