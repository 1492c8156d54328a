package types

import "time"

// WorkItem is a single tracked unit of work inside a project.
// The ID is assigned by the caller before first write (UUID v7, sortable).
// SequentialNumber holds the formatted display identifier (e.g. "M-0003");
// it is minted from the project's number range when the item is created.
type WorkItem struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at,omitzero"`
	Priority         int       `json:"priority"`
	CreatedBy        string    `json:"created_by"`
	AssignedTo       string    `json:"assigned_to,omitempty"`
	ProjectID        string    `json:"project_id"`
	TypeID           string    `json:"type_id"`
	SequentialNumber string    `json:"sequential_number,omitempty"`
}
