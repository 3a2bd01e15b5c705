package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs named periodic and one-shot background tasks. Tasks are
// isolated from each other: a panic in one is logged and the ticker keeps
// going.
type Scheduler struct {
	mu       sync.Mutex
	periodic map[string]*periodicTask
	oneshots map[string]*time.Timer
	logger   *zap.Logger
	stopCh   chan struct{}
}

type periodicTask struct {
	ticker *time.Ticker
	stopCh chan struct{}
}

// New creates an empty scheduler.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		periodic: make(map[string]*periodicTask),
		oneshots: make(map[string]*time.Timer),
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Every runs fn on a fixed interval under the given name. Registering the
// same name again replaces the previous task.
func (s *Scheduler) Every(name string, interval time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.periodic[name]; ok {
		close(old.stopCh)
	}
	task := &periodicTask{
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
	}
	s.periodic[name] = task

	go func() {
		defer task.ticker.Stop()
		for {
			select {
			case <-task.ticker.C:
				s.runGuarded(name, fn)
			case <-task.stopCh:
				return
			case <-s.stopCh:
				return
			}
		}
	}()
	s.logger.Info("periodic task registered",
		zap.String("name", name), zap.Duration("interval", interval))
}

// After runs fn once after the delay. A second registration under the same
// name cancels the first.
func (s *Scheduler) After(name string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.oneshots[name]; ok {
		old.Stop()
	}
	s.oneshots[name] = time.AfterFunc(delay, func() {
		defer func() {
			s.mu.Lock()
			delete(s.oneshots, name)
			s.mu.Unlock()
		}()
		s.runGuarded(name, fn)
	})
}

// Cancel stops the named task, periodic or one-shot.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task, ok := s.periodic[name]; ok {
		close(task.stopCh)
		delete(s.periodic, name)
	}
	if t, ok := s.oneshots[name]; ok {
		t.Stop()
		delete(s.oneshots, name)
	}
}

// Stop halts every task. Safe to call more than once.
func (s *Scheduler) Stop() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
}

// Names lists the registered periodic tasks.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.periodic))
	for name := range s.periodic {
		out = append(out, name)
	}
	return out
}

func (s *Scheduler) runGuarded(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked",
				zap.String("task", name), zap.Any("panic", r))
		}
	}()
	fn()
}
