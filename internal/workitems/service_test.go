package workitems

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pburrows/lepidoptera/internal/sqlite"
	"github.com/pburrows/lepidoptera/pkg/types"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), 1, 4, zerolog.Nop())
	require.NoError(t, err)
	s := NewService(store, "tester", zerolog.Nop())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// taskTemplate is the standard type used across the manager tests: three
// statuses, two priorities, a numeric field, and an assignment field.
func taskTemplate() types.TypeTemplate {
	min := float64(0)
	max := float64(100)
	return types.TypeTemplate{
		Name:        "task",
		DisplayName: "Task",
		AllowedStatuses: []types.AllowedStatus{
			{ID: "to-do", Label: "To Do"},
			{ID: "in-progress", Label: "In Progress"},
			{ID: "done", Label: "Done"},
		},
		AllowedPriorities: []types.AllowedPriority{
			{ID: "low", Label: "Low", Value: 1},
			{ID: "high", Label: "High", Value: 3},
		},
		AssignmentFieldDefinitions: []types.AssignmentFieldDefinition{
			{ID: "reviewer", Label: "Reviewer", FieldType: "person"},
		},
		Fields: []types.WorkItemField{
			{
				ID:        "points",
				Label:     "Story Points",
				FieldType: "number",
				Validation: &types.FieldValidation{Min: &min, Max: &max},
			},
			{ID: "notes", Label: "Notes", FieldType: "text"},
		},
	}
}

// seedWorkspace creates a project with the given prefix and applies
// taskTemplate, returning the project and type IDs.
func seedWorkspace(t *testing.T, s *Service, prefix string) (projectID, typeID string) {
	t.Helper()
	ctx := context.Background()
	p, err := s.CreateProject(ctx, "myproj", "", prefix)
	require.NoError(t, err)
	configs, err := s.ApplyTemplate(ctx, p.ID, []types.TypeTemplate{taskTemplate()})
	require.NoError(t, err)
	require.Len(t, configs, 1)
	return p.ID, configs[0].ID
}

func createItem(t *testing.T, s *Service, projectID, typeID, title, status string, fvs ...types.FieldValueInput) *types.ListItem {
	t.Helper()
	item, err := s.CreateWorkItem(context.Background(), &types.CreateWorkItemRequest{
		ProjectID:   projectID,
		TypeID:      typeID,
		Title:       title,
		Status:      status,
		Priority:    1,
		FieldValues: fvs,
	})
	require.NoError(t, err)
	return item
}

func TestCreateProjectRecordsPrefix(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, "myproj", "a project", "M")
	require.NoError(t, err)

	prefix, err := s.SequencePrefix(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "M", prefix)

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "myproj", projects[0].Name)
}

func TestSequencePrefixUnset(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, "bare", "", "")
	require.NoError(t, err)

	_, err = s.SequencePrefix(ctx, p.ID)
	assert.ErrorIs(t, err, types.ErrSettingNotFound)

	_, err = s.SetSequencePrefix(ctx, p.ID, "B")
	require.NoError(t, err)
	prefix, err := s.SequencePrefix(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", prefix)
}

func TestMachineIDStable(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	first, err := s.MachineID(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	again, err := s.MachineID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestRelationshipLifecycle(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	projectID, typeID := seedWorkspace(t, s, "M")

	a := createItem(t, s, projectID, typeID, "a", "to-do")
	b := createItem(t, s, projectID, typeID, "b", "to-do")

	_, err := s.CreateRelationship(ctx, projectID, a.ID, b.ID, "depends_on")
	assert.ErrorIs(t, err, types.ErrInvalidRelationship)

	rel, err := s.CreateRelationship(ctx, projectID, a.ID, b.ID, types.RelBlocks)
	require.NoError(t, err)

	rels, err := s.ListRelationships(ctx, b.ID, "")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, a.ID, rels[0].SourceWorkItemID)

	require.NoError(t, s.DeleteRelationship(ctx, rel.ID))
	rels, err = s.ListRelationships(ctx, b.ID, "")
	require.NoError(t, err)
	assert.Empty(t, rels)
}
