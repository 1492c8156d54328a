package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pburrows/lepidoptera/pkg/types"
)

func intPtr(n int) *int { return &n }

// seedFieldValue attaches a custom field value to a work item.
func seedFieldValue(t *testing.T, s *Store, projectID, itemID, fieldID, value string) {
	t.Helper()
	fv := &types.WorkItemFieldValue{
		ID:         newID(),
		ProjectID:  projectID,
		WorkItemID: itemID,
		FieldID:    fieldID,
		Value:      value,
		CreatedAt:  nowUTC(),
		CreatedBy:  "tester",
		IsActive:   true,
	}
	_, err := s.FieldValues.Create(context.Background(), nil, fv)
	require.NoError(t, err)
}

func TestListRequiresProject(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.WorkItems.List(context.Background(), nil, &types.WorkItemQuery{})
	assert.ErrorIs(t, err, types.ErrProjectRequired)
}

func TestListStatusFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID := seedProject(t, s)
	typeID := seedType(t, s, projectID, nil)

	a := seedItem(t, s, projectID, typeID, "a", "to-do")
	seedItem(t, s, projectID, typeID, "b", "done")
	c := seedItem(t, s, projectID, typeID, "c", "to-do")

	items, total, err := s.WorkItems.List(ctx, nil, &types.WorkItemQuery{
		ProjectID: projectID,
		Statuses:  []string{"to-do"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	ids := make([]string, len(items))
	for i, w := range items {
		ids[i] = w.ID
	}
	assert.ElementsMatch(t, []string{a.ID, c.ID}, ids)
}

func TestListFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID := seedProject(t, s)
	typeA := seedType(t, s, projectID, &types.TypeConfig{Name: "task"})
	typeB := seedType(t, s, projectID, &types.TypeConfig{Name: "bug"})

	login := seedItem(t, s, projectID, typeA, "Fix login flow", "to-do")
	login.AssignedTo = "bob"
	login.Priority = 3
	login.SequentialNumber = "M-1000"
	require.NoError(t, s.WorkItems.Update(ctx, nil, login))

	crash := seedItem(t, s, projectID, typeB, "Crash on save", "to-do")
	crash.Priority = 1
	require.NoError(t, s.WorkItems.Update(ctx, nil, crash))

	tests := []struct {
		name  string
		query types.WorkItemQuery
		want  []string
	}{
		{
			name:  "type id",
			query: types.WorkItemQuery{ProjectID: projectID, TypeID: typeB},
			want:  []string{crash.ID},
		},
		{
			name:  "type id set",
			query: types.WorkItemQuery{ProjectID: projectID, TypeIDs: []string{typeA, typeB}},
			want:  []string{login.ID, crash.ID},
		},
		{
			name:  "assignee",
			query: types.WorkItemQuery{ProjectID: projectID, AssignedTo: "bob"},
			want:  []string{login.ID},
		},
		{
			name:  "creator",
			query: types.WorkItemQuery{ProjectID: projectID, CreatedBy: "tester"},
			want:  []string{login.ID, crash.ID},
		},
		{
			name:  "title substring",
			query: types.WorkItemQuery{ProjectID: projectID, TitleContains: "login"},
			want:  []string{login.ID},
		},
		{
			name:  "exact priority",
			query: types.WorkItemQuery{ProjectID: projectID, Priority: intPtr(3)},
			want:  []string{login.ID},
		},
		{
			name:  "priority bounds",
			query: types.WorkItemQuery{ProjectID: projectID, PriorityMin: intPtr(2), PriorityMax: intPtr(5)},
			want:  []string{login.ID},
		},
		{
			name:  "sequence numbers",
			query: types.WorkItemQuery{ProjectID: projectID, SequenceNumbers: []string{"M-1000"}},
			want:  []string{login.ID},
		},
		{
			name:  "no match",
			query: types.WorkItemQuery{ProjectID: projectID, AssignedTo: "nobody"},
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := s.WorkItems.List(ctx, nil, &tt.query)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), total)

			var ids []string
			for _, w := range items {
				ids = append(ids, w.ID)
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}

func TestListFieldValueFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID := seedProject(t, s)
	typeID := seedType(t, s, projectID, nil)

	tagged := seedItem(t, s, projectID, typeID, "tagged", "to-do")
	seedItem(t, s, projectID, typeID, "plain", "to-do")
	seedFieldValue(t, s, projectID, tagged.ID, "severity", "high")

	items, total, err := s.WorkItems.List(ctx, nil, &types.WorkItemQuery{
		ProjectID: projectID,
		FieldValues: []types.FieldValueFilter{
			{FieldID: "severity", Value: "high"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, tagged.ID, items[0].ID)
}

func TestListTotalInvariantUnderPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID := seedProject(t, s)
	typeID := seedType(t, s, projectID, nil)

	for i := 0; i < 7; i++ {
		seedItem(t, s, projectID, typeID, "item", "to-do")
	}

	base := types.WorkItemQuery{ProjectID: projectID, Statuses: []string{"to-do"}}

	tests := []struct {
		name     string
		mutate   func(q *types.WorkItemQuery)
		wantPage int
	}{
		{name: "no pagination", mutate: func(q *types.WorkItemQuery) {}, wantPage: 7},
		{name: "page 1 of 3", mutate: func(q *types.WorkItemQuery) { q.Page, q.PageSize = intPtr(1), intPtr(3) }, wantPage: 3},
		{name: "last page partial", mutate: func(q *types.WorkItemQuery) { q.Page, q.PageSize = intPtr(3), intPtr(3) }, wantPage: 1},
		{name: "limit offset", mutate: func(q *types.WorkItemQuery) { q.Limit, q.Offset = intPtr(2), intPtr(6) }, wantPage: 1},
		{name: "offset only", mutate: func(q *types.WorkItemQuery) { q.Offset = intPtr(5) }, wantPage: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			tt.mutate(&q)
			items, total, err := s.WorkItems.List(ctx, nil, &q)
			require.NoError(t, err)
			assert.Equal(t, 7, total, "total must not depend on pagination")
			assert.Len(t, items, tt.wantPage)
		})
	}
}

func TestListNativeSort(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID := seedProject(t, s)
	typeID := seedType(t, s, projectID, nil)

	seedItem(t, s, projectID, typeID, "banana", "to-do")
	seedItem(t, s, projectID, typeID, "apple", "to-do")
	seedItem(t, s, projectID, typeID, "cherry", "to-do")

	items, _, err := s.WorkItems.List(ctx, nil, &types.WorkItemQuery{
		ProjectID:     projectID,
		SortBy:        types.SortTitle,
		SortDirection: types.SortAsc,
	})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "apple", items[0].Title)
	assert.Equal(t, "banana", items[1].Title)
	assert.Equal(t, "cherry", items[2].Title)
}

func TestListFieldValueSortNullPolicy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID := seedProject(t, s)
	typeID := seedType(t, s, projectID, nil)

	low := seedItem(t, s, projectID, typeID, "low", "to-do")
	high := seedItem(t, s, projectID, typeID, "high", "to-do")
	missing := seedItem(t, s, projectID, typeID, "missing", "to-do")
	seedFieldValue(t, s, projectID, low.ID, "rank", "a")
	seedFieldValue(t, s, projectID, high.ID, "rank", "b")

	ascending, _, err := s.WorkItems.List(ctx, nil, &types.WorkItemQuery{
		ProjectID:     projectID,
		SortBy:        types.SortFieldValue,
		SortFieldID:   "rank",
		SortDirection: types.SortAsc,
	})
	require.NoError(t, err)
	require.Len(t, ascending, 3)
	assert.Equal(t, low.ID, ascending[0].ID)
	assert.Equal(t, high.ID, ascending[1].ID)
	assert.Equal(t, missing.ID, ascending[2].ID, "items lacking the field sort last ascending")

	descending, _, err := s.WorkItems.List(ctx, nil, &types.WorkItemQuery{
		ProjectID:     projectID,
		SortBy:        types.SortFieldValue,
		SortFieldID:   "rank",
		SortDirection: types.SortDesc,
	})
	require.NoError(t, err)
	require.Len(t, descending, 3)
	assert.Equal(t, missing.ID, descending[0].ID, "items lacking the field sort first descending")
	assert.Equal(t, high.ID, descending[1].ID)
	assert.Equal(t, low.ID, descending[2].ID)
}

func TestListInvalidRequests(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s)

	tests := []struct {
		name    string
		query   types.WorkItemQuery
		wantErr error
	}{
		{
			name:    "unknown sort field",
			query:   types.WorkItemQuery{ProjectID: projectID, SortBy: "nonsense"},
			wantErr: types.ErrInvalidSort,
		},
		{
			name:    "field sort without field id",
			query:   types.WorkItemQuery{ProjectID: projectID, SortBy: types.SortFieldValue},
			wantErr: types.ErrInvalidSort,
		},
		{
			name:    "bad sort direction",
			query:   types.WorkItemQuery{ProjectID: projectID, SortBy: types.SortTitle, SortDirection: "sideways"},
			wantErr: types.ErrInvalidSort,
		},
		{
			name:    "zero page",
			query:   types.WorkItemQuery{ProjectID: projectID, Page: intPtr(0), PageSize: intPtr(10)},
			wantErr: types.ErrInvalidFilter,
		},
		{
			name:    "page without size",
			query:   types.WorkItemQuery{ProjectID: projectID, Page: intPtr(1)},
			wantErr: types.ErrInvalidFilter,
		},
		{
			name:    "negative limit",
			query:   types.WorkItemQuery{ProjectID: projectID, Limit: intPtr(-1)},
			wantErr: types.ErrInvalidFilter,
		},
		{
			name:    "field filter without id",
			query:   types.WorkItemQuery{ProjectID: projectID, FieldValues: []types.FieldValueFilter{{Value: "x"}}},
			wantErr: types.ErrInvalidFilter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.WorkItems.List(context.Background(), nil, &tt.query)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestListScopedToProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectA := seedProject(t, s)
	projectB := seedProject(t, s)
	typeA := seedType(t, s, projectA, nil)
	typeB := seedType(t, s, projectB, nil)

	mine := seedItem(t, s, projectA, typeA, "mine", "to-do")
	seedItem(t, s, projectB, typeB, "theirs", "to-do")

	items, total, err := s.WorkItems.List(ctx, nil, &types.WorkItemQuery{ProjectID: projectA})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)
}
