// Package schedule runs one-shot jobs at absolute instants on top of a
// robfig/cron scheduler, keyed so pending jobs can be cancelled.
package schedule

import (
	"log"
	"sync"
	"time"

	"github.com/jmhodges/clock"
	"github.com/robfig/cron/v3"
)

// onceAt fires a cron entry a single time. After the entry has run, cron asks
// for the next activation with a later "now" and gets the zero time, which
// parks the entry until it is removed.
type onceAt struct {
	at time.Time
}

func (s onceAt) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		return s.at
	}
	return time.Time{}
}

// Scheduler is the process-wide one-shot job scheduler. Jobs run on cron's
// per-job goroutines, never on the caller's goroutine.
type Scheduler struct {
	cron   *cron.Cron
	clk    clock.Clock
	logger *log.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a stopped scheduler in the given location.
func New(loc *time.Location, clk clock.Clock, logger *log.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		clk:     clk,
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
}

// Start begins the scheduler loop. Repeated calls are no-ops.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Schedule registers action to run exactly once at the given instant. An
// instant at or before now runs immediately on its own goroutine. Scheduling
// a job id that is already pending replaces the pending job.
func (s *Scheduler) Schedule(jobID string, at time.Time, action func()) {
	if !at.After(s.clk.Now()) {
		s.logger.Printf("schedule: job %s due in the past, firing now", jobID)
		go action()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[jobID]; ok {
		s.cron.Remove(old)
	}

	id := s.cron.Schedule(onceAt{at: at}, cron.FuncJob(func() {
		action()
		s.forget(jobID)
	}))
	s.entries[jobID] = id
	s.logger.Printf("schedule: job %s registered for %s", jobID, at.Format(time.RFC3339))
}

// Cancel removes a pending job and reports whether one was pending.
func (s *Scheduler) Cancel(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[jobID]
	if !ok {
		return false
	}
	s.cron.Remove(id)
	delete(s.entries, jobID)
	return true
}

// Pending reports whether a job id has a registered, not-yet-fired entry.
func (s *Scheduler) Pending(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[jobID]
	return ok
}

func (s *Scheduler) forget(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[jobID]; ok {
		s.cron.Remove(id)
		delete(s.entries, jobID)
	}
}
