// Package scheduler runs named periodic tasks, each on its own goroutine,
// and keeps a panicking task from taking the process down.
package scheduler

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned when adding a task to a stopped Scheduler.
var ErrStopped = errors.New("scheduler: stopped")

// TaskFn runs once per tick. dt is the wall time since the previous run
// (the interval itself on the first run).
type TaskFn func(dt time.Duration)

type task struct {
	stopCh chan struct{}
	runs   atomic.Uint64
	panics atomic.Uint64
}

// Scheduler manages periodic tasks.
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[string]*task
	logger  *zap.Logger
	wg      sync.WaitGroup
	stopped bool
}

// New creates a new Scheduler.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		tasks:  make(map[string]*task),
		logger: logger,
	}
}

// AddTicker registers fn to run every interval. A task with the same name
// is replaced.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) error {
	if interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if old, ok := s.tasks[name]; ok {
		close(old.stopCh)
	}
	t := &task{stopCh: make(chan struct{})}
	s.tasks[name] = t

	s.wg.Add(1)
	go s.loop(name, interval, t, fn)
	s.logger.Info("scheduler task registered", zap.String("name", name), zap.Duration("interval", interval))
	return nil
}

func (s *Scheduler) loop(name string, interval time.Duration, t *task, fn TaskFn) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			select {
			case <-t.stopCh:
				return
			default:
			}
			dt := now.Sub(last)
			last = now
			s.run(name, t, fn, dt)
		case <-t.stopCh:
			return
		}
	}
}

func (s *Scheduler) run(name string, t *task, fn TaskFn, dt time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			t.panics.Add(1)
			s.logger.Error("scheduler task panicked",
				zap.String("task", name),
				zap.Any("recover", r))
		}
	}()
	t.runs.Add(1)
	fn(dt)
}

// Remove stops the named task. It does not wait for a run in progress.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[name]; ok {
		close(t.stopCh)
		delete(s.tasks, name)
	}
}

// Stop stops every task and waits for their goroutines to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		for name, t := range s.tasks {
			close(t.stopCh)
			delete(s.tasks, name)
		}
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// ListTickers returns the registered task names, sorted.
func (s *Scheduler) ListTickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Stats reports how often the named task ran and panicked.
func (s *Scheduler) Stats(name string) (runs, panics uint64, ok bool) {
	s.mu.Lock()
	t, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return 0, 0, false
	}
	return t.runs.Load(), t.panics.Load(), true
}
