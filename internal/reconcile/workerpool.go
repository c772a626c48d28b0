package reconcile

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool closed")

type WorkerPoolI interface {
	AddTask(ctx context.Context, task Task) error
	Close()
}

type Task func() error

// WorkerPool runs queued tasks on a fixed number of goroutines.
type WorkerPool struct {
	pool   chan Task
	quit   chan struct{}
	mu     sync.RWMutex
	closed bool
	once   sync.Once
	wg     sync.WaitGroup
}

func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	wp := &WorkerPool{
		pool: make(chan Task, size),
		quit: make(chan struct{}),
	}

	wp.wg.Add(size)
	for i := 0; i < size; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.pool {
		if err := task(); err != nil {
			zap.L().Error("reconcile task failed", zap.Error(err))
		}
	}
}

// AddTask blocks until a worker slot is free, ctx is done or the pool is
// closed. Tasks are never sent once Close has started.
func (wp *WorkerPool) AddTask(ctx context.Context, task Task) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return ErrPoolClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.quit:
		return ErrPoolClosed
	case wp.pool <- task:
		return nil
	}
}

// Close stops accepting tasks and waits for the queued ones to finish.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		close(wp.quit)
		wp.mu.Lock()
		wp.closed = true
		close(wp.pool)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}
