package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pburrows/lepidoptera/pkg/types"
)

func seedRange(t *testing.T, s *Store, projectID, machineID string, start, end, current int64) *types.NumberRange {
	t.Helper()
	rng := &types.NumberRange{
		ID:            newID(),
		ProjectID:     projectID,
		MachineID:     machineID,
		RangeStart:    start,
		RangeEnd:      end,
		CurrentNumber: current,
		CreatedAt:     nowUTC(),
	}
	_, err := s.Ranges.Create(context.Background(), nil, rng)
	require.NoError(t, err)
	return rng
}

func TestFindActiveRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID := seedProject(t, s)
	machineID := newID()

	t.Run("no ranges", func(t *testing.T) {
		_, err := s.Ranges.FindActiveRange(ctx, nil, projectID, machineID)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	exhausted := seedRange(t, s, projectID, machineID, 1000, 1999, 1999)
	active := seedRange(t, s, projectID, machineID, 2000, 2999, 2100)

	t.Run("newest usable range wins", func(t *testing.T) {
		got, err := s.Ranges.FindActiveRange(ctx, nil, projectID, machineID)
		require.NoError(t, err)
		assert.Equal(t, active.ID, got.ID)
		assert.NotEqual(t, exhausted.ID, got.ID)
	})

	t.Run("other machine sees nothing", func(t *testing.T) {
		_, err := s.Ranges.FindActiveRange(ctx, nil, projectID, newID())
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestMaxRangeEnd(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID := seedProject(t, s)

	got, err := s.Ranges.MaxRangeEnd(ctx, nil, projectID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got, "empty project reads zero")

	// The maximum spans all machines of the project.
	seedRange(t, s, projectID, newID(), 1000, 1999, 1500)
	seedRange(t, s, projectID, newID(), 2000, 2999, 2000)

	got, err = s.Ranges.MaxRangeEnd(ctx, nil, projectID)
	require.NoError(t, err)
	assert.Equal(t, int64(2999), got)
}

func TestIncrementCurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID := seedProject(t, s)
	machineID := newID()

	rng := seedRange(t, s, projectID, machineID, 1000, 1999, 999)

	minted, err := s.Ranges.IncrementCurrent(ctx, nil, rng.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), minted)

	minted, err = s.Ranges.IncrementCurrent(ctx, nil, rng.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), minted)
}

func TestIncrementCurrentStopsAtRangeEnd(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID := seedProject(t, s)

	rng := seedRange(t, s, projectID, newID(), 1000, 1001, 1000)

	minted, err := s.Ranges.IncrementCurrent(ctx, nil, rng.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), minted)

	_, err = s.Ranges.IncrementCurrent(ctx, nil, rng.ID)
	assert.ErrorIs(t, err, types.ErrNotFound, "a full range must refuse to mint")
}

func TestRangeStartUniquePerMachine(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s)
	machineID := newID()

	seedRange(t, s, projectID, machineID, 1000, 1999, 999)

	dup := &types.NumberRange{
		ID:            newID(),
		ProjectID:     projectID,
		MachineID:     machineID,
		RangeStart:    1000,
		RangeEnd:      1999,
		CurrentNumber: 999,
		CreatedAt:     nowUTC(),
	}
	_, err := s.Ranges.Create(context.Background(), nil, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}

func TestFindByProjectNewestFirst(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s)
	machineID := newID()

	seedRange(t, s, projectID, machineID, 1000, 1999, 1999)
	seedRange(t, s, projectID, machineID, 2000, 2999, 2001)

	ranges, err := s.Ranges.FindByProject(context.Background(), nil, projectID)
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, int64(2000), ranges[0].RangeStart)
	assert.Equal(t, int64(1000), ranges[1].RangeStart)
}
