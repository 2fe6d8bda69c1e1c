package finder

import (
	"sync"
	"sync/atomic"
)

// dirTask is one directory awaiting enumeration. Depth is 1 for the root
// and grows by one per level, supporting depth-limited scans.
type dirTask struct {
	path  string
	depth int
}

// dirQueue is a thread-safe FIFO of directory tasks with blocking pop and
// built-in termination detection. The pending counter tracks directories
// that exist anywhere in the system (queued or being enumerated); when it
// reaches zero no new work can ever appear and every blocked consumer is
// woken so it can observe termination and exit.
type dirQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []dirTask
	pending atomic.Int64
	stopped atomic.Bool
}

func newDirQueue() *dirQueue {
	q := &dirQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// AddPending registers one not-yet-finished directory. Callers must invoke
// it strictly before Push so the outstanding-work count is never observed
// low while a task is in flight.
func (q *dirQueue) AddPending() {
	q.pending.Add(1)
}

// Done marks one directory as fully enumerated, after all of its
// subdirectories have been registered via AddPending. The call that drives
// the pending count to zero wakes every blocked consumer.
func (q *dirQueue) Done() {
	if q.pending.Add(-1) == 0 {
		q.wakeAll()
	}
}

// Pending returns the current number of unfinished directories.
func (q *dirQueue) Pending() int64 {
	return q.pending.Load()
}

// Push appends a task to the tail and wakes one blocked consumer.
// It never blocks.
func (q *dirQueue) Push(task dirTask) {
	q.mu.Lock()
	q.items = append(q.items, task)
	q.mu.Unlock()
	q.cond.Signal()
}

// PopOrWait blocks until the queue is non-empty, the pending count is zero,
// or Stop was called. It returns the head of the queue and true, or a zero
// task and false as a terminal signal. A terminal return with a nonzero
// pending count is possible after a broadcast race; callers must re-check
// Pending and retry rather than exit.
func (q *dirQueue) PopOrWait() (dirTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.stopped.Load() && q.pending.Load() != 0 {
		q.cond.Wait()
	}

	if len(q.items) > 0 && !q.stopped.Load() {
		task := q.items[0]
		q.items = q.items[1:]
		return task, true
	}
	return dirTask{}, false
}

// Stop requests early shutdown: blocked consumers return a terminal signal
// and no further work is handed out.
func (q *dirQueue) Stop() {
	q.stopped.Store(true)
	q.wakeAll()
}

// Stopped reports whether Stop has been called.
func (q *dirQueue) Stopped() bool {
	return q.stopped.Load()
}

// wakeAll broadcasts under the queue mutex. Holding the lock closes the
// window between a waiter's predicate check and its Wait, so the wakeup
// that announces termination cannot be lost.
func (q *dirQueue) wakeAll() {
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
}
