// Package scheduler runs periodic maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CleanupEnqueuer hands a cleanup run to the task queue.
type CleanupEnqueuer interface {
	EnqueueOrphanCleanup() (string, error)
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := scheduleParser.Parse(schedule)
	return err
}

// OrphanCleanupScheduler enqueues orphan cleanup on a cron schedule. The
// work itself runs on the task queue.
type OrphanCleanupScheduler struct {
	enqueuer CleanupEnqueuer
	schedule string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

func NewOrphanCleanupScheduler(enqueuer CleanupEnqueuer, schedule string) *OrphanCleanupScheduler {
	return &OrphanCleanupScheduler{
		enqueuer: enqueuer,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(scheduleParser)),
	}
}

// Start schedules the job and stops it again when ctx is cancelled.
func (s *OrphanCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunNow(); err != nil {
			log.Printf("[SCHEDULER] Orphan cleanup: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule orphan cleanup: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Printf("[SCHEDULER] Orphan cleanup scheduled '%s'. Next run: %v", s.schedule, s.cron.Entry(entryID).Next)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for an in-flight enqueue and stops the cron.
func (s *OrphanCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false

	log.Printf("[SCHEDULER] Orphan cleanup stopped")
}

// RunNow enqueues a cleanup immediately and returns the task id.
func (s *OrphanCleanupScheduler) RunNow() (string, error) {
	id, err := s.enqueuer.EnqueueOrphanCleanup()
	if err != nil {
		return "", err
	}
	log.Printf("[SCHEDULER] Orphan cleanup enqueued as task %s", id)
	return id, nil
}

func (s *OrphanCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the next scheduled time, or the zero time when stopped.
func (s *OrphanCleanupScheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}
