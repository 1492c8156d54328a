package types

import "time"

// WorkItemFieldValue is one custom-field value attached to a work item.
// FieldID references either a WorkItemField or an AssignmentFieldDefinition
// on the item's type, distinguished by IsAssignmentField. The value is stored
// as opaque text (JSON for structured values). Rows are soft-deleted by
// clearing IsActive.
type WorkItemFieldValue struct {
	ID                string    `json:"id"`
	ProjectID         string    `json:"project_id"`
	WorkItemID        string    `json:"work_item_id"`
	FieldID           string    `json:"field_id"`
	IsAssignmentField bool      `json:"is_assignment_field"`
	Value             string    `json:"value"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at,omitzero"`
	CreatedBy         string    `json:"created_by"`
	UpdatedBy         string    `json:"updated_by,omitempty"`
	IsActive          bool      `json:"is_active"`
}

// FieldValueDetail pairs a stored field value with its resolved definition
// from the owning work item type. Exactly one of Field or AssignmentField is
// set, matching IsAssignmentField; both are nil when the definition could not
// be resolved.
type FieldValueDetail struct {
	WorkItemFieldValue
	Field           *WorkItemField             `json:"field,omitempty"`
	AssignmentField *AssignmentFieldDefinition `json:"assignment_field,omitempty"`
}
