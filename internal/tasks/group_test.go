package tasks

import (
	"context"
	"testing"
	"time"
)

func TestGroupCloseWaitsForRunningTasks(t *testing.T) {
	g := NewGroup()
	finished := make(chan struct{})

	g.Go(func(context.Context) {
		time.Sleep(20 * time.Millisecond)
		close(finished)
	})

	if !g.Close(time.Second) {
		t.Fatal("expected group to drain within timeout")
	}
	select {
	case <-finished:
	default:
		t.Fatal("Close returned before task finished")
	}
	if g.Pending() != 0 {
		t.Fatalf("expected no pending tasks, got %d", g.Pending())
	}
}

func TestGroupCloseTimesOutAndCancelsHungTask(t *testing.T) {
	g := NewGroup()
	cancelled := make(chan struct{})

	g.Go(func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	})

	if g.Close(20 * time.Millisecond) {
		t.Fatal("expected Close to report an undrained group")
	}

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("hung task was not cancelled after Close timeout")
	}
}

func TestGroupRejectsTasksAfterClose(t *testing.T) {
	g := NewGroup()
	g.Close(0)

	if g.Go(func(context.Context) {}) {
		t.Fatal("expected Go to refuse tasks after Close")
	}
}
