package types

import "time"

// Project is the container every work item belongs to.
type Project struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	UpdatedBy   string    `json:"updated_by,omitempty"`
	IsActive    bool      `json:"is_active"`
}

// ProjectSetting is one key/value configuration entry scoped to a project.
// (project_id, setting_key) is unique.
type ProjectSetting struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	SettingKey   string    `json:"setting_key"`
	SettingValue string    `json:"setting_value"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
	CreatedBy    string    `json:"created_by"`
	UpdatedBy    string    `json:"updated_by,omitempty"`
}

// Well-known project setting keys.
const (
	// SettingSequencePrefix holds the prefix used when formatting sequential
	// work item numbers for display. Unique across projects.
	SettingSequencePrefix = "sequence_prefix"
)
