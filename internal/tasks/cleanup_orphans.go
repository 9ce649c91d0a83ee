package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// OrphanCleaner deletes rows left behind by an interrupted delete.
type OrphanCleaner interface {
	DeleteOrphans(ctx context.Context) (int64, error)
}

// CleanupOrphansTask removes annotations missing an owner or book link and
// comments whose annotation is gone.
type CleanupOrphansTask struct{}

// Config returns the queue configuration for cleanup tasks.
func (t CleanupOrphansTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_orphans",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupOrphansProcessor runs annotation cleanup before comment cleanup so
// comments of freshly removed annotations are caught in the same pass.
func CleanupOrphansProcessor(annotations, comments OrphanCleaner) backlite.QueueProcessor[CleanupOrphansTask] {
	return func(ctx context.Context, task CleanupOrphansTask) error {
		if annotations == nil || comments == nil {
			return fmt.Errorf("orphan cleaners not configured")
		}

		removedAnnotations, err := annotations.DeleteOrphans(ctx)
		if err != nil {
			return fmt.Errorf("cleanup orphan annotations: %w", err)
		}
		removedComments, err := comments.DeleteOrphans(ctx)
		if err != nil {
			return fmt.Errorf("cleanup orphan comments: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d orphan annotations and %d orphan comments",
			removedAnnotations, removedComments)
		return nil
	}
}

// NewCleanupOrphansQueue creates a backlite queue for orphan cleanup.
func NewCleanupOrphansQueue(annotations, comments OrphanCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupOrphansProcessor(annotations, comments))
}

// EnqueueOrphanCleanup schedules one cleanup run and returns its task id.
func (c *Client) EnqueueOrphanCleanup() (string, error) {
	ids, err := c.Add(CleanupOrphansTask{}).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue orphan cleanup: %w", err)
	}
	return ids[0], nil
}
