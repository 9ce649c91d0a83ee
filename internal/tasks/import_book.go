package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/easyreads/easyreads/internal/entities"
	"github.com/easyreads/easyreads/internal/reader"
)

// BookImporter imports a catalog book into the page store.
type BookImporter interface {
	EnsureBookImported(ctx context.Context, id uint) (*entities.Book, error)
}

// ImportBookTask prefetches a book so the first page view is served locally.
type ImportBookTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for book imports.
func (t ImportBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_book",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportBookProcessor imports the task's book. Books the catalog does not
// know are logged and dropped instead of retried.
func ImportBookProcessor(importer BookImporter) backlite.QueueProcessor[ImportBookTask] {
	return func(ctx context.Context, task ImportBookTask) error {
		if importer == nil {
			return fmt.Errorf("book importer not configured")
		}

		book, err := importer.EnsureBookImported(ctx, task.BookID)
		if errors.Is(err, reader.ErrNotFound) {
			log.Printf("[TASK] Book %d not found in catalog, skipping import", task.BookID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("import book %d: %w", task.BookID, err)
		}

		log.Printf("[TASK] Book %d (%s) ready with %d pages", book.ID, book.Title, book.PagesInBook)
		return nil
	}
}

// NewImportBookQueue creates a backlite queue for book imports.
func NewImportBookQueue(importer BookImporter) backlite.Queue {
	return backlite.NewQueue(ImportBookProcessor(importer))
}

// ScheduleImport enqueues a background import of a book.
func (c *Client) ScheduleImport(bookID uint) error {
	if bookID == 0 {
		return fmt.Errorf("book id is required")
	}
	if _, err := c.Add(ImportBookTask{BookID: bookID}).Save(); err != nil {
		return fmt.Errorf("enqueue import of book %d: %w", bookID, err)
	}
	return nil
}
