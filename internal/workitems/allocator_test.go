package workitems

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pburrows/lepidoptera/internal/sqlite"
)

func TestFirstAllocationStartsAtFloor(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	projectID, _ := seedWorkspace(t, s, "M")
	machineID, err := s.MachineID(ctx)
	require.NoError(t, err)

	n, err := s.alloc.NextNumber(ctx, projectID, machineID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), n)

	ranges, err := s.store.Ranges.FindByProject(ctx, nil, projectID)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, int64(1000), ranges[0].RangeStart)
	assert.Equal(t, int64(1999), ranges[0].RangeEnd)
	assert.Equal(t, int64(1000), ranges[0].CurrentNumber)
}

func TestNextNumberMonotonic(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	projectID, _ := seedWorkspace(t, s, "M")
	machineID, err := s.MachineID(ctx)
	require.NoError(t, err)

	var prev int64
	for i := 0; i < 10; i++ {
		n, err := s.alloc.NextNumber(ctx, projectID, machineID)
		require.NoError(t, err)
		assert.Greater(t, n, prev)
		prev = n
	}
	assert.Equal(t, int64(1009), prev)
}

func TestClaimsFreshRangeAtThreshold(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	projectID, _ := seedWorkspace(t, s, "M")
	machineID, err := s.MachineID(ctx)
	require.NoError(t, err)

	first, err := s.alloc.NextNumber(ctx, projectID, machineID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), first)

	// Simulate 800 consumed numbers: the range is treated as exhausted even
	// though 200 remain, so the next mint comes from a fresh range starting
	// one past the highest claimed end.
	err = s.store.WithTx(ctx, func(tx sqlite.Querier) error {
		_, err := tx.ExecContext(ctx,
			"UPDATE work_item_number_ranges SET current_number = 1800 WHERE project_id = ?1", projectID)
		return err
	})
	require.NoError(t, err)

	n, err := s.alloc.NextNumber(ctx, projectID, machineID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), n)

	ranges, err := s.store.Ranges.FindByProject(ctx, nil, projectID)
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, int64(2000), ranges[0].RangeStart)
	assert.Equal(t, int64(2999), ranges[0].RangeEnd)
}

func TestRangesPerProjectIndependent(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	projectA, _ := seedWorkspace(t, s, "A")
	machineID, err := s.MachineID(ctx)
	require.NoError(t, err)

	other, err := s.CreateProject(ctx, "other", "", "B")
	require.NoError(t, err)

	nA, err := s.alloc.NextNumber(ctx, projectA, machineID)
	require.NoError(t, err)
	nB, err := s.alloc.NextNumber(ctx, other.ID, machineID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), nA)
	assert.Equal(t, int64(1000), nB, "each project numbers from its own floor")
}

func TestConcurrentMintsAreDistinct(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	projectID, _ := seedWorkspace(t, s, "M")
	machineID, err := s.MachineID(ctx)
	require.NoError(t, err)

	const workers = 4
	const perWorker = 5
	results := make(chan int64, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				n, err := s.alloc.NextNumber(ctx, projectID, machineID)
				assert.NoError(t, err)
				results <- n
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for n := range results {
		assert.False(t, seen[n], "number %d minted twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers*perWorker)
}
