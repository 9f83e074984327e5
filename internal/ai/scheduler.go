package ai

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrSchedulerStopped is returned by Schedule after Stop.
var ErrSchedulerStopped = errors.New("scheduler stopped")

var errNilTask = errors.New("nil task func")

// Scheduler defaults.
const (
	DefaultResolution = 100 * time.Millisecond
	DefaultWheelSlots = 512
)

// TaskFunc is a scheduled callback. It returns the delay until its next run;
// a non-positive delay ends the chain.
type TaskFunc func() time.Duration

const (
	taskLive int32 = iota
	taskDead
)

// Task is a handle to a scheduled callback chain.
type Task struct {
	fn    TaskFunc
	due   uint64 // absolute wheel tick
	state atomic.Int32
	sched *Scheduler
}

// Cancel stops the chain. A cancelled task never fires again.
// Returns false if the task was already cancelled or finished.
func (t *Task) Cancel() bool {
	return t.kill()
}

// Alive reports whether the chain may still fire.
func (t *Task) Alive() bool {
	return t.state.Load() == taskLive
}

func (t *Task) kill() bool {
	if !t.state.CompareAndSwap(taskLive, taskDead) {
		return false
	}
	t.sched.live.Add(-1)
	return true
}

// SchedulerStats is a point-in-time view of scheduler counters.
type SchedulerStats struct {
	Live   int
	Ticks  uint64
	Fired  uint64
	Panics uint64
}

// Scheduler is a hashed timer wheel shared by all brains.
// Due tasks of one wheel tick run concurrently on a bounded worker group,
// and a task is re-inserted only after its callback returns, so a single
// chain never runs twice at the same time.
type Scheduler struct {
	resolution time.Duration
	workers    int

	mu     sync.Mutex
	slots  [][]*Task
	cursor uint64 // ticks processed

	stopped  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}

	live   atomic.Int64
	fired  atomic.Uint64
	panics atomic.Uint64
}

// NewScheduler creates a wheel with the given tick resolution, slot count and worker limit.
// Non-positive arguments fall back to defaults.
func NewScheduler(resolution time.Duration, slots, workers int) *Scheduler {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	if slots <= 0 {
		slots = DefaultWheelSlots
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Scheduler{
		resolution: resolution,
		workers:    workers,
		slots:      make([][]*Task, slots),
		stopCh:     make(chan struct{}),
	}
}

// Resolution returns the wheel tick length.
func (s *Scheduler) Resolution() time.Duration {
	return s.resolution
}

// Schedule registers fn to run after delay.
func (s *Scheduler) Schedule(delay time.Duration, fn TaskFunc) (*Task, error) {
	if fn == nil {
		return nil, errNilTask
	}
	if s.stopped.Load() {
		return nil, ErrSchedulerStopped
	}

	t := &Task{fn: fn, sched: s}
	s.live.Add(1)

	s.mu.Lock()
	s.insertLocked(t, delay)
	s.mu.Unlock()

	return t, nil
}

// insertLocked places t at cursor + ceil(delay/resolution), at least one tick ahead.
func (s *Scheduler) insertLocked(t *Task, delay time.Duration) {
	ticks := uint64((delay + s.resolution - 1) / s.resolution)
	if ticks == 0 {
		ticks = 1
	}
	t.due = s.cursor + ticks
	slot := t.due % uint64(len(s.slots))
	s.slots[slot] = append(s.slots[slot], t)
}

// Advance processes exactly one wheel tick: fires every task that became due
// and waits for the callbacks to return.
func (s *Scheduler) Advance() {
	s.mu.Lock()
	s.cursor++
	now := s.cursor
	idx := now % uint64(len(s.slots))
	bucket := s.slots[idx]

	var due []*Task
	keep := bucket[:0]
	for _, t := range bucket {
		switch {
		case !t.Alive():
			// cancelled while waiting, drop
		case t.due <= now:
			due = append(due, t)
		default:
			keep = append(keep, t)
		}
	}
	clear(bucket[len(keep):])
	s.slots[idx] = keep
	s.mu.Unlock()

	if len(due) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, t := range due {
		g.Go(func() error {
			s.fire(t)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scheduler) fire(t *Task) {
	if !t.Alive() {
		return
	}

	next, ok := s.call(t)
	if !ok || next <= 0 {
		t.kill()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Alive() {
		s.insertLocked(t, next)
	}
}

// call runs the callback, converting a panic into the end of the chain.
func (s *Scheduler) call(t *Task) (next time.Duration, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.panics.Add(1)
			slog.Error("scheduled task panicked", "panic", r)
			ok = false
		}
	}()

	s.fired.Add(1)
	return t.fn(), true
}

// Run drives the wheel from a ticker (blocks until context is canceled or Stop is called).
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.resolution)
	defer ticker.Stop()

	slog.Info("brain scheduler started", "resolution", s.resolution, "slots", len(s.slots), "workers", s.workers)

	for {
		select {
		case <-ctx.Done():
			slog.Info("brain scheduler stopping")
			return ctx.Err()

		case <-s.stopCh:
			slog.Info("brain scheduler stopped")
			return nil

		case <-ticker.C:
			s.Advance()
		}
	}
}

// Stop ends Run and rejects further Schedule calls. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		close(s.stopCh)
	})
}

// Count returns number of live task chains (O(1) atomic counter).
func (s *Scheduler) Count() int {
	return int(s.live.Load())
}

// Stats returns scheduler counters.
func (s *Scheduler) Stats() SchedulerStats {
	s.mu.Lock()
	ticks := s.cursor
	s.mu.Unlock()

	return SchedulerStats{
		Live:   s.Count(),
		Ticks:  ticks,
		Fired:  s.fired.Load(),
		Panics: s.panics.Load(),
	}
}
