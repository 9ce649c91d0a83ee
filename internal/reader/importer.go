package reader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/easyreads/easyreads/internal/catalog"
	"github.com/easyreads/easyreads/internal/entities"
	"github.com/easyreads/easyreads/internal/pagination"
)

// EnsureBookImported makes sure a book and all of its pages are stored,
// fetching them from the catalog when needed. It is idempotent: once a book is
// fully stored it returns without contacting the catalog.
//
// Concurrent calls for the same id share one fetch. If another process
// inserts the book first, the call returns the stored copy without error.
func (s *Service) EnsureBookImported(ctx context.Context, id uint) (*entities.Book, error) {
	v, err, _ := s.imports.Do(strconv.FormatUint(uint64(id), 10), func() (any, error) {
		return s.importBook(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entities.Book), nil
}

func (s *Service) importBook(ctx context.Context, id uint) (*entities.Book, error) {
	book, err := s.books.GetBook(ctx, id)
	if err == nil {
		return s.verifyPages(ctx, book)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: load book %d: %w", ErrImportFailure, id, err)
	}

	started := time.Now()

	meta, err := s.catalog.GetBook(ctx, id)
	if err != nil {
		return nil, importCatalogError(err, id)
	}
	text, err := s.catalog.FetchText(ctx, id)
	if err != nil {
		return nil, importCatalogError(err, id)
	}

	pages := toPageEntities(pagination.Segment(text, s.linesPerPage))
	book = &entities.Book{
		ID:          id,
		Title:       meta.Title,
		PagesInBook: len(pages),
	}

	created, err := s.books.CreateBookWithPages(ctx, book, pages)
	if err != nil {
		return nil, fmt.Errorf("%w: store book %d: %w", ErrImportFailure, id, err)
	}
	if !created {
		log.Printf("[IMPORT] Book %d was imported concurrently, using stored copy", id)
		stored, err := s.books.GetBook(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: reload book %d: %w", ErrImportFailure, id, err)
		}
		return stored, nil
	}

	log.Printf("[IMPORT] Imported book %d (%q): %d pages in %v", id, book.Title, book.PagesInBook, time.Since(started))
	return book, nil
}

// verifyPages checks that every page of a stored book is present and rebuilds
// the page set from the catalog when it is not. The stored page count never
// changes: a source that now segments differently fails the repair.
func (s *Service) verifyPages(ctx context.Context, book *entities.Book) (*entities.Book, error) {
	count, err := s.books.CountPages(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: count pages of book %d: %w", ErrImportFailure, book.ID, err)
	}
	if int(count) == book.PagesInBook {
		return book, nil
	}

	log.Printf("[IMPORT] Book %d has %d of %d pages stored, repairing", book.ID, count, book.PagesInBook)

	text, err := s.catalog.FetchText(ctx, book.ID)
	if err != nil {
		return nil, importCatalogError(err, book.ID)
	}

	pages := toPageEntities(pagination.Segment(text, s.linesPerPage))
	if len(pages) != book.PagesInBook {
		return nil, fmt.Errorf("%w: book %d now has %d pages, expected %d",
			ErrImportFailure, book.ID, len(pages), book.PagesInBook)
	}

	if err := s.books.ReplacePages(ctx, book.ID, pages); err != nil {
		return nil, fmt.Errorf("%w: replace pages of book %d: %w", ErrImportFailure, book.ID, err)
	}

	log.Printf("[IMPORT] Repaired book %d (%d pages)", book.ID, book.PagesInBook)
	return book, nil
}

func toPageEntities(pages []pagination.Page) []entities.BookPage {
	out := make([]entities.BookPage, len(pages))
	for i, p := range pages {
		out[i] = entities.BookPage{
			PageNumber:  p.Number,
			PageContent: p.Content,
		}
	}
	return out
}

// importCatalogError marks a catalog failure during import as ErrImportFailure
// while keeping the underlying kind (ErrNotFound, ErrSourceUnavailable)
// matchable with errors.Is.
func importCatalogError(err error, id uint) error {
	translated := translateCatalogError(err, id)
	if errors.Is(translated, ErrImportFailure) {
		return translated
	}
	return fmt.Errorf("%w: %w", ErrImportFailure, translated)
}

func translateCatalogError(err error, id uint) error {
	switch {
	case errors.Is(err, catalog.ErrBookNotFound):
		return fmt.Errorf("%w: book %d is not in the catalog", ErrNotFound, id)
	case errors.Is(err, catalog.ErrTextTooLarge):
		return fmt.Errorf("%w: %w", ErrImportFailure, err)
	default:
		return fmt.Errorf("%w: book %d: %w", ErrSourceUnavailable, id, err)
	}
}
