package types

import "time"

// Relationship kinds between two work items.
const (
	RelBlocks     = "blocks"
	RelBlockedBy  = "blocked_by"
	RelRelatesTo  = "relates_to"
	RelDuplicates = "duplicates"
	RelParentOf   = "parent_of"
	RelChildOf    = "child_of"
)

// validRelationshipTypes is the set of recognized relationship kinds.
var validRelationshipTypes = map[string]bool{
	RelBlocks:     true,
	RelBlockedBy:  true,
	RelRelatesTo:  true,
	RelDuplicates: true,
	RelParentOf:   true,
	RelChildOf:    true,
}

// ValidRelationshipType reports whether t is a recognized relationship kind.
func ValidRelationshipType(t string) bool {
	return validRelationshipTypes[t]
}

// Relationship links a source work item to a target work item.
// (source, target, relationship_type) is unique; rows are soft-deleted via
// IsActive.
type Relationship struct {
	ID               string    `json:"id"`
	ProjectID        string    `json:"project_id"`
	SourceWorkItemID string    `json:"source_work_item_id"`
	TargetWorkItemID string    `json:"target_work_item_id"`
	RelationshipType string    `json:"relationship_type"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at,omitzero"`
	CreatedBy        string    `json:"created_by"`
	UpdatedBy        string    `json:"updated_by,omitempty"`
	IsActive         bool      `json:"is_active"`
}
