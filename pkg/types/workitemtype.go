package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// WorkItemType is the per-project configuration record for one kind of work
// item. The JSON-valued columns are stored as raw text in SQLite and parsed
// into the typed shapes below at the repository edge; malformed JSON is a
// hard failure at hydration time, never silently defaulted.
type WorkItemType struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
	IsActive    bool      `json:"is_active"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`

	// Raw JSON columns, exactly as persisted.
	AllowedChildrenTypeIDs     string `json:"-"`
	AllowedStatuses            string `json:"-"`
	AllowedPriorities          string `json:"-"`
	AssignmentFieldDefinitions string `json:"-"`
	WorkItemDetails            string `json:"-"`
	WorkItemFields             string `json:"-"`
}

// AllowedStatus describes one status a work item of this type may hold.
type AllowedStatus struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// AllowedPriority describes one priority level for this type. Value is the
// integer stored on the work item row; ID and Label are for display.
type AllowedPriority struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color,omitempty"`
}

// AssignmentFieldDefinition declares an assignment-style custom field
// (person, team, or similar) available on work items of this type.
type AssignmentFieldDefinition struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	FieldType    string `json:"field_type"`
	Required     bool   `json:"required"`
	DefaultValue string `json:"default_value,omitempty"`
}

// FieldValidation holds the optional validation rules of a WorkItemField.
// Min/Max apply to numbers (value bounds) and dates (unix seconds).
type FieldValidation struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
}

// FieldOption is one selectable choice of a select or radio field.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// WorkItemField declares a custom field available on work items of this type.
type WorkItemField struct {
	ID           string           `json:"id"`
	Label        string           `json:"label"`
	FieldType    string           `json:"field_type"`
	Required     bool             `json:"required"`
	DefaultValue json.RawMessage  `json:"default_value,omitempty"`
	Validation   *FieldValidation `json:"validation,omitempty"`
	Options      []FieldOption    `json:"options,omitempty"`
}

// TypeDetails carries free-form display metadata for a work item type.
type TypeDetails struct {
	Icon          string   `json:"icon,omitempty"`
	Color         string   `json:"color,omitempty"`
	Description   string   `json:"description,omitempty"`
	DefaultFields []string `json:"default_fields,omitempty"`
}

// TypeConfig is a WorkItemType with every JSON column parsed into its typed
// shape. Repositories return TypeConfig so the raw text never leaks past the
// storage boundary.
type TypeConfig struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
	IsActive    bool      `json:"is_active"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`

	AllowedChildrenTypeIDs     []string                    `json:"allowed_children_type_ids"`
	AllowedStatuses            []AllowedStatus             `json:"allowed_statuses"`
	AllowedPriorities          []AllowedPriority           `json:"allowed_priorities"`
	AssignmentFieldDefinitions []AssignmentFieldDefinition `json:"assignment_field_definitions"`
	Details                    TypeDetails                 `json:"work_item_details"`
	Fields                     []WorkItemField             `json:"work_item_fields"`
}

// ParseConfig decodes every JSON column of the type into a TypeConfig.
// Any malformed column fails the whole parse.
func (t *WorkItemType) ParseConfig() (*TypeConfig, error) {
	cfg := &TypeConfig{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		IsActive:    t.IsActive,
		Name:        t.Name,
		DisplayName: t.DisplayName,
	}
	if err := parseJSONColumn(t.AllowedChildrenTypeIDs, "allowed_children_type_ids", &cfg.AllowedChildrenTypeIDs); err != nil {
		return nil, err
	}
	if err := parseJSONColumn(t.AllowedStatuses, "allowed_statuses", &cfg.AllowedStatuses); err != nil {
		return nil, err
	}
	if err := parseJSONColumn(t.AllowedPriorities, "allowed_priorities", &cfg.AllowedPriorities); err != nil {
		return nil, err
	}
	if err := parseJSONColumn(t.AssignmentFieldDefinitions, "assignment_field_definitions", &cfg.AssignmentFieldDefinitions); err != nil {
		return nil, err
	}
	if err := parseJSONColumn(t.WorkItemDetails, "work_item_details", &cfg.Details); err != nil {
		return nil, err
	}
	if err := parseJSONColumn(t.WorkItemFields, "work_item_fields", &cfg.Fields); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Entity converts the parsed config back to its storage representation,
// serializing each typed shape into its JSON column.
func (c *TypeConfig) Entity() (*WorkItemType, error) {
	t := &WorkItemType{
		ID:          c.ID,
		ProjectID:   c.ProjectID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		IsActive:    c.IsActive,
		Name:        c.Name,
		DisplayName: c.DisplayName,
	}
	var err error
	if t.AllowedChildrenTypeIDs, err = encodeJSONColumn(emptySlice(c.AllowedChildrenTypeIDs), "allowed_children_type_ids"); err != nil {
		return nil, err
	}
	if t.AllowedStatuses, err = encodeJSONColumn(emptySlice(c.AllowedStatuses), "allowed_statuses"); err != nil {
		return nil, err
	}
	if t.AllowedPriorities, err = encodeJSONColumn(emptySlice(c.AllowedPriorities), "allowed_priorities"); err != nil {
		return nil, err
	}
	if t.AssignmentFieldDefinitions, err = encodeJSONColumn(emptySlice(c.AssignmentFieldDefinitions), "assignment_field_definitions"); err != nil {
		return nil, err
	}
	if t.WorkItemDetails, err = encodeJSONColumn(c.Details, "work_item_details"); err != nil {
		return nil, err
	}
	if t.WorkItemFields, err = encodeJSONColumn(emptySlice(c.Fields), "work_item_fields"); err != nil {
		return nil, err
	}
	return t, nil
}

// StatusDetail returns the allowed status with the given ID, or nil.
func (c *TypeConfig) StatusDetail(statusID string) *AllowedStatus {
	for i := range c.AllowedStatuses {
		if c.AllowedStatuses[i].ID == statusID {
			return &c.AllowedStatuses[i]
		}
	}
	return nil
}

// PriorityDetail returns the allowed priority with the given value, or nil.
func (c *TypeConfig) PriorityDetail(value int) *AllowedPriority {
	for i := range c.AllowedPriorities {
		if c.AllowedPriorities[i].Value == value {
			return &c.AllowedPriorities[i]
		}
	}
	return nil
}

// Field returns the custom field definition with the given ID, or nil.
func (c *TypeConfig) Field(fieldID string) *WorkItemField {
	for i := range c.Fields {
		if c.Fields[i].ID == fieldID {
			return &c.Fields[i]
		}
	}
	return nil
}

// AssignmentField returns the assignment field definition with the given ID,
// or nil.
func (c *TypeConfig) AssignmentField(fieldID string) *AssignmentFieldDefinition {
	for i := range c.AssignmentFieldDefinitions {
		if c.AssignmentFieldDefinitions[i].ID == fieldID {
			return &c.AssignmentFieldDefinitions[i]
		}
	}
	return nil
}

func parseJSONColumn(raw, column string, dst any) error {
	if raw == "" {
		return fmt.Errorf("parsing %s: empty JSON column", column)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("parsing %s: %w", column, err)
	}
	return nil
}

func encodeJSONColumn(src any, column string) (string, error) {
	data, err := json.Marshal(src)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", column, err)
	}
	return string(data), nil
}

// emptySlice substitutes an empty slice for nil so JSON columns always hold
// "[]" rather than "null".
func emptySlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
