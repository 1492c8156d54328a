package types

// FieldValueInput is one custom-field value supplied when creating or
// updating a work item.
type FieldValueInput struct {
	FieldID           string `json:"field_id"`
	IsAssignmentField bool   `json:"is_assignment_field"`
	Value             string `json:"value"`
}

// CreateWorkItemRequest carries everything needed to create a work item.
// The sequential display number is minted by the store, not supplied here.
type CreateWorkItemRequest struct {
	ProjectID   string            `json:"project_id"`
	TypeID      string            `json:"type_id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status"`
	Priority    int               `json:"priority"`
	AssignedTo  string            `json:"assigned_to,omitempty"`
	CreatedBy   string            `json:"created_by"`
	FieldValues []FieldValueInput `json:"field_values,omitempty"`
}
