package sched

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSchedule_PendingUntilDue(t *testing.T) {
	clock := NewFakeClock(epoch)
	q := NewQueue(clock, zap.NewNop())

	task := q.Schedule(1500*time.Millisecond, "apply", func() any { return "ok" })
	if task.Status() != StatusPending {
		t.Fatalf("Status() = %s, want pending", task.Status())
	}

	clock.Advance(time.Second)
	if n := q.RunDue(); n != 0 {
		t.Errorf("RunDue() ran %d tasks before due", n)
	}

	clock.Advance(500 * time.Millisecond)
	if n := q.RunDue(); n != 1 {
		t.Fatalf("RunDue() = %d, want 1", n)
	}
	if task.Status() != StatusCompleted || task.Result() != "ok" {
		t.Errorf("task = %s/%v, want completed/ok", task.Status(), task.Result())
	}
	select {
	case <-task.Done():
	default:
		t.Error("Done() not closed")
	}
}

func TestDrain_SchedulingOrder(t *testing.T) {
	clock := NewFakeClock(epoch)
	q := NewQueue(clock, zap.NewNop())

	var order []string
	record := func(name string) func() any {
		return func() any { order = append(order, name); return nil }
	}
	q.Schedule(time.Second, "a", record("a"))
	q.Schedule(time.Second, "b", record("b"))
	q.Schedule(0, "c", record("c"))
	q.Schedule(time.Second, "d", record("d"))

	if err := q.Drain(context.Background()); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}

	want := []string{"c", "a", "b", "d"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
	if got := clock.Now().Sub(epoch); got != time.Second {
		t.Errorf("virtual time advanced %v, want 1s", got)
	}
	if q.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", q.Pending())
	}
}

func TestDrain_RunsTasksScheduledWhileDraining(t *testing.T) {
	q := NewQueue(NewFakeClock(epoch), zap.NewNop())

	var inner *Task
	q.Schedule(time.Second, "outer", func() any {
		inner = q.Schedule(time.Second, "inner", nil)
		return nil
	})

	if err := q.Drain(context.Background()); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if inner == nil || inner.Status() != StatusCompleted {
		t.Error("task scheduled during drain should complete")
	}
}

func TestDrain_ContextCanceled(t *testing.T) {
	q := NewQueue(RealClock{}, zap.NewNop())
	q.Schedule(time.Hour, "slow", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Drain(ctx); err == nil {
		t.Fatal("Drain() should return the context error")
	}
	if q.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", q.Pending())
	}
}

func TestTaskLookupAndWait(t *testing.T) {
	q := NewQueue(NewFakeClock(epoch), zap.NewNop())
	task := q.Schedule(0, "now", func() any { return 42 })

	got, ok := q.Task(task.ID)
	if !ok || got != task {
		t.Fatal("Task() should find the scheduled task")
	}

	q.RunDue()
	if err := task.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if task.Result() != 42 {
		t.Errorf("Result() = %v, want 42", task.Result())
	}
}

func TestTaskLookup_PrunedAfterRetention(t *testing.T) {
	clock := NewFakeClock(epoch)
	q := NewQueue(clock, zap.NewNop())
	old := q.Schedule(0, "old", nil)
	q.RunDue()

	clock.Advance(TaskRetention - time.Second)
	if _, ok := q.Task(old.ID); !ok {
		t.Fatal("completed task should resolve within the retention window")
	}

	pending := q.Schedule(time.Hour, "later", nil)
	clock.Advance(time.Second)
	if _, ok := q.Task(old.ID); ok {
		t.Error("completed task should be pruned after the retention window")
	}
	if _, ok := q.Task(pending.ID); !ok {
		t.Error("pending tasks must never be pruned")
	}
	if old.Status() != StatusCompleted {
		t.Error("pruning must not affect a held task")
	}

	clock.Advance(time.Hour)
	q.RunDue()
	if got, ok := q.Task(pending.ID); !ok || got.Status() != StatusCompleted {
		t.Error("freshly completed task should still resolve")
	}
}

func TestRun_ExecutesInBackground(t *testing.T) {
	q := NewQueue(RealClock{}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	task := q.Schedule(10*time.Millisecond, "bg", func() any { return "done" })

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	if err := task.Wait(waitCtx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func TestCompleted(t *testing.T) {
	task := Completed("noop", "skipped")
	if task.Status() != StatusCompleted || task.Result() != "skipped" {
		t.Errorf("Completed() = %s/%v", task.Status(), task.Result())
	}
}
