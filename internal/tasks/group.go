// Package tasks runs detached goroutines whose outcome is observed only by
// the goroutine itself, and lets the owner drain them on shutdown.
package tasks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Group tracks detached tasks. The zero value is not usable; use NewGroup.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	pending atomic.Int64
}

func NewGroup() *Group {
	ctx, cancel := context.WithCancel(context.Background())
	return &Group{ctx: ctx, cancel: cancel}
}

// Go starts fn on its own goroutine. The context passed to fn is cancelled
// only when Close gives up waiting. Go reports false once the group is closed.
func (g *Group) Go(fn func(ctx context.Context)) bool {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return false
	}
	g.wg.Add(1)
	g.pending.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		defer g.pending.Add(-1)
		fn(g.ctx)
	}()
	return true
}

// Pending returns the number of tasks still running.
func (g *Group) Pending() int64 {
	return g.pending.Load()
}

// Close refuses new tasks and waits up to timeout for running ones. A
// non-positive timeout waits indefinitely. After the wait the task context is
// cancelled. Close reports whether every task finished in time.
func (g *Group) Close(timeout time.Duration) bool {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	drained := true
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
			drained = false
		}
	} else {
		<-done
	}

	g.cancel()
	return drained
}
