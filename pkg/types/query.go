package types

// SortDirection for listing results.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Native sortable columns of a work item.
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
	SortTitle     SortField = "title"
	SortStatus    SortField = "status"
	SortPriority  SortField = "priority"
	SortTypeID    SortField = "type_id"
	// SortFieldValue orders by a custom field value; the query must also set
	// SortFieldID (and SortIsAssignmentField when it names an assignment
	// field). NULL values sort last ascending and first descending.
	SortFieldValue SortField = "field_value"
)

// FieldValueFilter selects work items carrying an exact custom-field value.
type FieldValueFilter struct {
	FieldID           string `json:"field_id"`
	IsAssignmentField bool   `json:"is_assignment_field"`
	Value             string `json:"value"`
}

// WorkItemQuery is the structured filter/sort/pagination request for listing
// work items. ProjectID is required; queries cannot span projects. Every
// other filter is optional: nil or empty means the filter contributes no
// predicate and no bound parameter.
type WorkItemQuery struct {
	ProjectID string `json:"project_id"`

	Statuses        []string           `json:"statuses,omitempty"`
	Priority        *int               `json:"priority,omitempty"`
	PriorityMin     *int               `json:"priority_min,omitempty"`
	PriorityMax     *int               `json:"priority_max,omitempty"`
	TypeID          string             `json:"type_id,omitempty"`
	TypeIDs         []string           `json:"type_ids,omitempty"`
	AssignedTo      string             `json:"assigned_to,omitempty"`
	CreatedBy       string             `json:"created_by,omitempty"`
	TitleContains   string             `json:"title_contains,omitempty"`
	SequenceNumbers []string           `json:"sequence_numbers,omitempty"`
	FieldValues     []FieldValueFilter `json:"field_values,omitempty"`

	// Pagination: either Page/PageSize (1-indexed) or Limit/Offset.
	// Absent both, no limit is applied.
	Page     *int `json:"page,omitempty"`
	PageSize *int `json:"page_size,omitempty"`
	Limit    *int `json:"limit,omitempty"`
	Offset   *int `json:"offset,omitempty"`

	SortBy                SortField     `json:"sort_by,omitempty"`
	SortDirection         SortDirection `json:"sort_direction,omitempty"`
	SortFieldID           string        `json:"sort_field_id,omitempty"`
	SortIsAssignmentField bool          `json:"sort_is_assignment_field,omitempty"`
}

// ListRequest pairs a query with the custom field IDs to hydrate on each
// returned item. Nil or empty IncludeFields skips field loading entirely.
type ListRequest struct {
	Query         WorkItemQuery `json:"query"`
	IncludeFields []string      `json:"include_fields,omitempty"`
}

// ListItem is one hydrated work item in a list response. StatusDetail and
// PriorityDetail come from the item's type configuration when resolvable;
// FieldValues carries only the requested fields, each with its resolved
// definition attached.
type ListItem struct {
	WorkItem
	StatusDetail   *AllowedStatus     `json:"status_detail,omitempty"`
	PriorityDetail *AllowedPriority   `json:"priority_detail,omitempty"`
	FieldValues    []FieldValueDetail `json:"field_values"`
}

// ListResponse is a hydrated page of work items. Total counts every match of
// the query's filters regardless of pagination. Page, PageSize, and
// TotalPages are populated only for page-based pagination.
type ListResponse struct {
	Items      []ListItem `json:"items"`
	Total      int        `json:"total"`
	Page       *int       `json:"page,omitempty"`
	PageSize   *int       `json:"page_size,omitempty"`
	TotalPages *int       `json:"total_pages,omitempty"`
}
