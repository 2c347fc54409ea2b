package sched

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/blueprint/internal/logger"
)

// TaskRetention is how long a completed task stays resolvable by id.
const TaskRetention = 10 * time.Minute

// Status is a task's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Task is one deferred completion. Once scheduled it always runs; there is
// no cancellation.
type Task struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Due  time.Time `json:"due"`

	seq  uint64
	fn   func() any
	done chan struct{}

	mu     sync.Mutex
	status Status
	result any

	completedAt time.Time
}

// Status returns the task's current state.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Result returns the value produced by the task body, nil while pending.
func (t *Task) Result() any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Done is closed when the task completes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes or ctx ends.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Completed returns an already-finished task carrying result.
func Completed(name string, result any) *Task {
	t := &Task{ID: ulid.Make().String(), Name: name, done: make(chan struct{}), status: StatusCompleted, result: result}
	close(t.done)
	return t
}

// Queue orders tasks by due time, then by scheduling order.
type Queue struct {
	clock  Clock
	logger *zap.Logger

	// runMu keeps task bodies strictly sequential across runners.
	runMu sync.Mutex

	mu    sync.Mutex
	tasks taskHeap
	byID  map[string]*Task
	// finished holds completed tasks in completion order for pruning.
	finished []*Task
	seq      uint64
	wake     chan struct{}
}

// NewQueue returns an empty queue on clock.
func NewQueue(clock Clock, l *zap.Logger) *Queue {
	if clock == nil {
		clock = RealClock{}
	}
	return &Queue{
		clock:  clock,
		logger: logger.OrNop(l).Named("sched"),
		byID:   make(map[string]*Task),
		wake:   make(chan struct{}, 1),
	}
}

// Clock returns the queue's clock.
func (q *Queue) Clock() Clock {
	return q.clock
}

// Schedule queues fn to run after delay and returns its pending task.
func (q *Queue) Schedule(delay time.Duration, name string, fn func() any) *Task {
	q.mu.Lock()
	q.seq++
	t := &Task{
		ID:     ulid.Make().String(),
		Name:   name,
		Due:    q.clock.Now().Add(delay),
		seq:    q.seq,
		fn:     fn,
		done:   make(chan struct{}),
		status: StatusPending,
	}
	heap.Push(&q.tasks, t)
	q.byID[t.ID] = t
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	q.logger.Debug("task scheduled", zap.String("task_id", t.ID), zap.String("name", name), zap.Duration("delay", delay))
	return t
}

// Task returns a scheduled task by id. Completed tasks are forgotten once
// TaskRetention has passed.
func (q *Queue) Task(id string) (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pruneLocked(q.clock.Now())
	t, ok := q.byID[id]
	return t, ok
}

// Pending returns the number of tasks not yet run.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tasks.Len()
}

// RunDue runs every task due at or before the clock's current time and
// returns how many ran.
func (q *Queue) RunDue() int {
	q.runMu.Lock()
	defer q.runMu.Unlock()
	n := 0
	for {
		t := q.popDue(q.clock.Now())
		if t == nil {
			return n
		}
		q.run(t)
		n++
	}
}

// Drain runs every queued task, including ones scheduled while draining,
// waiting on the clock for each due time.
func (q *Queue) Drain(ctx context.Context) error {
	for {
		due, ok := q.nextDue()
		if !ok {
			return nil
		}
		if wait := due.Sub(q.clock.Now()); wait > 0 {
			select {
			case <-q.clock.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		q.RunDue()
	}
}

// Run executes tasks as they come due until ctx ends. Servers start it in
// its own goroutine.
func (q *Queue) Run(ctx context.Context) {
	for {
		var timer <-chan time.Time
		if due, ok := q.nextDue(); ok {
			wait := due.Sub(q.clock.Now())
			if wait <= 0 {
				q.RunDue()
				continue
			}
			timer = q.clock.After(wait)
		}
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		case <-timer:
			q.RunDue()
		}
	}
}

func (q *Queue) nextDue() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.tasks.Len() == 0 {
		return time.Time{}, false
	}
	return q.tasks[0].Due, true
}

func (q *Queue) popDue(now time.Time) *Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.tasks.Len() == 0 || q.tasks[0].Due.After(now) {
		return nil
	}
	return heap.Pop(&q.tasks).(*Task)
}

func (q *Queue) run(t *Task) {
	var result any
	if t.fn != nil {
		result = t.fn()
	}
	now := q.clock.Now()
	t.mu.Lock()
	t.result = result
	t.status = StatusCompleted
	t.completedAt = now
	t.mu.Unlock()
	close(t.done)

	q.mu.Lock()
	q.finished = append(q.finished, t)
	q.pruneLocked(now)
	q.mu.Unlock()
	q.logger.Debug("task completed", zap.String("task_id", t.ID), zap.String("name", t.Name))
}

// pruneLocked drops completed tasks older than TaskRetention. Caller holds q.mu.
func (q *Queue) pruneLocked(now time.Time) {
	n := 0
	for n < len(q.finished) && now.Sub(q.finished[n].completedAt) >= TaskRetention {
		delete(q.byID, q.finished[n].ID)
		q.finished[n] = nil
		n++
	}
	if n > 0 {
		q.finished = q.finished[n:]
		q.logger.Debug("pruned completed tasks", zap.Int("count", n))
	}
}

type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].Due.Equal(h[j].Due) {
		return h[i].seq < h[j].seq
	}
	return h[i].Due.Before(h[j].Due)
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(*Task)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
