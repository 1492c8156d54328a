package workitems

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pburrows/lepidoptera/pkg/types"
)

func TestApplyTemplateResolvesChildNames(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	p, err := s.CreateProject(ctx, "templated", "", "T")
	require.NoError(t, err)

	templates := []types.TypeTemplate{
		{
			Name:                     "epic",
			DisplayName:              "Epic",
			AllowedChildrenTypeNames: []string{"story", "task"},
			AllowedStatuses:          []types.AllowedStatus{{ID: "open", Label: "Open"}},
		},
		{
			Name:                     "story",
			DisplayName:              "Story",
			AllowedChildrenTypeNames: []string{"task"},
			AllowedStatuses:          []types.AllowedStatus{{ID: "open", Label: "Open"}},
		},
		{
			Name:            "task",
			DisplayName:     "Task",
			AllowedStatuses: []types.AllowedStatus{{ID: "open", Label: "Open"}},
		},
	}

	configs, err := s.ApplyTemplate(ctx, p.ID, templates)
	require.NoError(t, err)
	require.Len(t, configs, 3)

	idByName := make(map[string]string, len(configs))
	for _, cfg := range configs {
		idByName[cfg.Name] = cfg.ID
	}

	// Child names resolve to the freshly minted IDs, and the resolution is
	// persisted, not just returned.
	epic, err := s.GetType(ctx, idByName["epic"])
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{idByName["story"], idByName["task"]}, epic.AllowedChildrenTypeIDs)

	story, err := s.GetType(ctx, idByName["story"])
	require.NoError(t, err)
	assert.Equal(t, []string{idByName["task"]}, story.AllowedChildrenTypeIDs)

	task, err := s.GetType(ctx, idByName["task"])
	require.NoError(t, err)
	assert.Empty(t, task.AllowedChildrenTypeIDs)
}

func TestApplyTemplateRejectsBadTemplates(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	p, err := s.CreateProject(ctx, "templated", "", "T")
	require.NoError(t, err)

	t.Run("project required", func(t *testing.T) {
		_, err := s.ApplyTemplate(ctx, "", []types.TypeTemplate{{Name: "task"}})
		assert.ErrorIs(t, err, types.ErrProjectRequired)
	})

	t.Run("duplicate type name", func(t *testing.T) {
		_, err := s.ApplyTemplate(ctx, p.ID, []types.TypeTemplate{{Name: "task"}, {Name: "task"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "twice")
	})

	t.Run("unknown child rolls back everything", func(t *testing.T) {
		_, err := s.ApplyTemplate(ctx, p.ID, []types.TypeTemplate{
			{Name: "epic", AllowedChildrenTypeNames: []string{"ghost"}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost")

		// The failed application leaves no types behind.
		listed, err := s.ListTypes(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})
}
