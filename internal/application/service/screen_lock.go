package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// ScreenLock serializes everything that reads or drives the screen. Only one
// sequence or agent run may hold it at a time.
type ScreenLock struct {
	sem *semaphore.Weighted
}

func NewScreenLock() *ScreenLock {
	return &ScreenLock{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until the screen is free or ctx is done. The returned func
// releases the lock and is safe to call more than once.
func (l *ScreenLock) Acquire(ctx context.Context) (func(), error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for screen: %w", err)
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		l.sem.Release(1)
	}, nil
}

// TryAcquire takes the lock only if it is free.
func (l *ScreenLock) TryAcquire() (func(), bool) {
	if !l.sem.TryAcquire(1) {
		return nil, false
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		l.sem.Release(1)
	}, true
}
