package reconcile

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool(t *testing.T) {
	tests := []struct {
		name       string
		numTasks   int
		numWorkers int
		failing    int
	}{
		{name: "Runs every task", numTasks: 5, numWorkers: 2},
		{name: "Failing task does not stop the pool", numTasks: 4, numWorkers: 2, failing: 1},
		{name: "Non-positive size still runs", numTasks: 2, numWorkers: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wp := NewWorkerPool(tt.numWorkers)

			var executed, failed atomic.Int32
			for i := 0; i < tt.numTasks; i++ {
				i := i
				err := wp.AddTask(context.Background(), func() error {
					if i < tt.failing {
						failed.Add(1)
						return assert.AnError
					}
					executed.Add(1)
					return nil
				})
				assert.NoError(t, err)
			}
			wp.Close()

			assert.Equal(t, int32(tt.numTasks-tt.failing), executed.Load())
			assert.Equal(t, int32(tt.failing), failed.Load())
		})
	}
}

func TestWorkerPool_CanceledContext(t *testing.T) {
	wp := NewWorkerPool(1)
	defer wp.Close()

	block := make(chan struct{})
	defer close(block)
	// occupy the worker and the single queue slot
	assert.NoError(t, wp.AddTask(context.Background(), func() error { <-block; return nil }))
	assert.NoError(t, wp.AddTask(context.Background(), func() error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := wp.AddTask(ctx, func() error {
		t.Error("task should not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkerPool_AddAfterClose(t *testing.T) {
	wp := NewWorkerPool(2)
	wp.Close()

	err := wp.AddTask(context.Background(), func() error {
		t.Error("task should not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestWorkerPool_CloseReleasesBlockedAdd(t *testing.T) {
	wp := NewWorkerPool(1)

	block := make(chan struct{})
	assert.NoError(t, wp.AddTask(context.Background(), func() error { <-block; return nil }))
	assert.NoError(t, wp.AddTask(context.Background(), func() error { return nil }))

	added := make(chan error, 1)
	go func() {
		added <- wp.AddTask(context.Background(), func() error { return nil })
	}()

	closed := make(chan struct{})
	go func() {
		wp.Close()
		close(closed)
	}()

	select {
	case err := <-added:
		assert.ErrorIs(t, err, ErrPoolClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked AddTask was not released by Close")
	}
	close(block)
	<-closed
}
