package types

// TypeTemplate declares one work item type inside a project template.
// Child types are referenced by name; template application creates every
// type first and then resolves names to the generated IDs in a second pass.
type TypeTemplate struct {
	Name                       string                      `json:"name"`
	DisplayName                string                      `json:"display_name"`
	AllowedChildrenTypeNames   []string                    `json:"allowed_children_type_names,omitempty"`
	AllowedStatuses            []AllowedStatus             `json:"allowed_statuses"`
	AllowedPriorities          []AllowedPriority           `json:"allowed_priorities"`
	AssignmentFieldDefinitions []AssignmentFieldDefinition `json:"assignment_field_definitions,omitempty"`
	Details                    TypeDetails                 `json:"work_item_details,omitzero"`
	Fields                     []WorkItemField             `json:"work_item_fields,omitempty"`
}
