// Package schedule provides cancellable delayed tasks behind an interface so
// callers can swap the runtime timer for a deterministic clock in tests.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Task is a pending delayed call.
type Task interface {
	// Stop cancels the task. It reports whether the call was prevented from
	// running.
	Stop() bool
}

// Scheduler runs fn once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

// Real schedules on the runtime timer.
type Real struct{}

func (Real) AfterFunc(d time.Duration, fn func()) Task {
	return time.AfterFunc(d, fn)
}

// Manual is a virtual clock. Tasks only run when Advance moves the clock past
// their deadline, on the goroutine that called Advance.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	m     *Manual
	at    time.Duration
	seq   int
	fn    func()
	state int // 0 pending, 1 fired, 2 stopped
}

// NewManual returns a Manual clock at t=0.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the elapsed virtual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{m: m, at: m.now + d, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

// Pending returns the number of tasks that have neither fired nor been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if t.state == 0 {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, running due tasks in deadline order.
// Tasks scheduled by a running task fire in the same Advance if they fall
// inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()
	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		next.state = 1
		m.mu.Unlock()
		next.fn()
	}
}

func (m *Manual) nextDueLocked(target time.Duration) *manualTask {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if t.state == 0 {
			live = append(live, t)
		}
	}
	m.tasks = live
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].at == m.tasks[j].at {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].at < m.tasks[j].at
	})
	if len(m.tasks) == 0 || m.tasks[0].at > target {
		return nil
	}
	return m.tasks[0]
}

func (t *manualTask) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.state != 0 {
		return false
	}
	t.state = 2
	return true
}
