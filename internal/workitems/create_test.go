package workitems

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pburrows/lepidoptera/pkg/types"
)

func TestCreateWorkItem(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	projectID, typeID := seedWorkspace(t, s, "M")

	item, err := s.CreateWorkItem(ctx, &types.CreateWorkItemRequest{
		ProjectID:   projectID,
		TypeID:      typeID,
		Title:       "write the parser",
		Status:      "to-do",
		Priority:    3,
		FieldValues: []types.FieldValueInput{{FieldID: "points", Value: "5"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "M-1000", item.SequentialNumber)
	assert.Equal(t, "tester", item.CreatedBy)
	if assert.NotNil(t, item.StatusDetail) {
		assert.Equal(t, "To Do", item.StatusDetail.Label)
	}
	if assert.NotNil(t, item.PriorityDetail) {
		assert.Equal(t, "High", item.PriorityDetail.Label)
	}
	require.Len(t, item.FieldValues, 1)
	assert.Equal(t, "5", item.FieldValues[0].Value)
	if assert.NotNil(t, item.FieldValues[0].Field) {
		assert.Equal(t, "Story Points", item.FieldValues[0].Field.Label)
	}

	second := createItem(t, s, projectID, typeID, "second", "to-do")
	assert.Equal(t, "M-1001", second.SequentialNumber)
}

func TestCreateWorkItemRejectsBadInput(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	projectID, typeID := seedWorkspace(t, s, "M")

	t.Run("project required", func(t *testing.T) {
		_, err := s.CreateWorkItem(ctx, &types.CreateWorkItemRequest{TypeID: typeID, Title: "x", Status: "to-do"})
		assert.ErrorIs(t, err, types.ErrProjectRequired)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := s.CreateWorkItem(ctx, &types.CreateWorkItemRequest{
			ProjectID: projectID, TypeID: newUUID(), Title: "x", Status: "to-do",
		})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("status outside the type's set", func(t *testing.T) {
		_, err := s.CreateWorkItem(ctx, &types.CreateWorkItemRequest{
			ProjectID: projectID, TypeID: typeID, Title: "x", Status: "archived",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not allowed")
	})

	t.Run("invalid field value", func(t *testing.T) {
		_, err := s.CreateWorkItem(ctx, &types.CreateWorkItemRequest{
			ProjectID: projectID, TypeID: typeID, Title: "x", Status: "to-do",
			FieldValues: []types.FieldValueInput{{FieldID: "points", Value: "many"}},
		})
		var verr *types.FieldValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "points", verr.FieldID)
	})
}

func TestCreateWorkItemRequiresPrefix(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, "unprefixed", "", "")
	require.NoError(t, err)
	configs, err := s.ApplyTemplate(ctx, p.ID, []types.TypeTemplate{taskTemplate()})
	require.NoError(t, err)

	_, err = s.CreateWorkItem(ctx, &types.CreateWorkItemRequest{
		ProjectID: p.ID, TypeID: configs[0].ID, Title: "x", Status: "to-do",
	})
	assert.ErrorIs(t, err, types.ErrSettingNotFound)
}

func TestCreateWorkItemAtomicity(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	projectID, typeID := seedWorkspace(t, s, "M")

	// A creation that fails validation must not consume a sequential number.
	_, err := s.CreateWorkItem(ctx, &types.CreateWorkItemRequest{
		ProjectID: projectID, TypeID: typeID, Title: "bad", Status: "nope",
	})
	require.Error(t, err)

	item := createItem(t, s, projectID, typeID, "good", "to-do")
	assert.Equal(t, "M-1000", item.SequentialNumber)
}

func TestUpdateWorkItem(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	projectID, typeID := seedWorkspace(t, s, "M")

	created := createItem(t, s, projectID, typeID, "draft", "to-do")

	item := created.WorkItem
	item.Title = "final"
	item.Status = "done"
	require.NoError(t, s.UpdateWorkItem(ctx, &item))

	got, err := s.GetWorkItem(ctx, item.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, "done", got.Status)
	assert.False(t, got.UpdatedAt.IsZero())
	assert.Equal(t, created.SequentialNumber, got.SequentialNumber)
}

func TestDeleteWorkItem(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	projectID, typeID := seedWorkspace(t, s, "M")

	item := createItem(t, s, projectID, typeID, "doomed", "to-do",
		types.FieldValueInput{FieldID: "points", Value: "2"})

	require.NoError(t, s.DeleteWorkItem(ctx, item.ID))

	_, err := s.GetWorkItem(ctx, item.ID, nil)
	assert.ErrorIs(t, err, types.ErrNotFound)

	values, err := s.store.FieldValues.ListForItems(ctx, nil, []string{item.ID}, nil)
	require.NoError(t, err)
	assert.Empty(t, values[item.ID])
}
