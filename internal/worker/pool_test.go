package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteKeepsInputOrder(t *testing.T) {
	var calls atomic.Int32
	pool := NewPool(4, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		if n == 3 {
			return 0, errors.New("three")
		}
		return n * n, nil
	})

	tasks := pool.Execute(context.Background(), []int{1, 2, 3, 4, 5})
	require.Len(t, tasks, 5)
	assert.EqualValues(t, 5, calls.Load())
	for i, task := range tasks {
		assert.Equal(t, i+1, task.Input)
	}
	assert.Equal(t, 25, tasks[4].Result)

	failed := Failed(tasks)
	require.Len(t, failed, 1)
	assert.Equal(t, 3, failed[0].Input)
}

func TestExecuteRespectsLimit(t *testing.T) {
	var running, peak atomic.Int32
	pool := NewPool(2, func(_ context.Context, n int) (int, error) {
		now := running.Add(1)
		for {
			old := peak.Load()
			if now <= old || peak.CompareAndSwap(old, now) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return n, nil
	})

	tasks := pool.Execute(context.Background(), []int{1, 2, 3, 4, 5, 6})
	require.Len(t, tasks, 6)
	assert.Empty(t, Failed(tasks))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(2, func(_ context.Context, n int) (int, error) { return n, nil })
	tasks := pool.Execute(ctx, []int{1, 2, 3})
	require.Len(t, tasks, 3)
	for _, task := range tasks {
		if task.Err != nil {
			assert.ErrorIs(t, task.Err, context.Canceled)
		}
	}
}

func TestBatch(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Batch([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1}, {2}}, Batch([]int{1, 2}, 0))
	assert.Nil(t, Batch([]int{}, 3))
}
