// Package reader is the application core: it imports catalog books into
// paginated storage and serves pages, annotations, comments and favourites
// on top of them.
//
// Every operation returns one of the error kinds in errors.go, wrapped with
// context. Storage and catalog errors never escape untranslated.
package reader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/easyreads/easyreads/internal/catalog"
	"github.com/easyreads/easyreads/internal/database/annotations"
	"github.com/easyreads/easyreads/internal/entities"
	"github.com/easyreads/easyreads/internal/pagination"
)

// MaxCommentLength is the longest comment accepted, in characters.
const MaxCommentLength = 5000

// CatalogSource resolves book metadata and text.
type CatalogSource interface {
	Search(ctx context.Context, query string) ([]catalog.Book, error)
	GetBook(ctx context.Context, id uint) (*catalog.Book, error)
	FetchText(ctx context.Context, id uint) (string, error)
}

// BookStore persists imported books and their pages.
type BookStore interface {
	GetBook(ctx context.Context, id uint) (*entities.Book, error)
	GetPage(ctx context.Context, bookID uint, pageNumber int) (*entities.BookPage, error)
	CountPages(ctx context.Context, bookID uint) (int64, error)
	CreateBookWithPages(ctx context.Context, book *entities.Book, pages []entities.BookPage) (bool, error)
	ReplacePages(ctx context.Context, bookID uint, pages []entities.BookPage) error
}

// AnnotationStore persists annotations with their owner and book links.
type AnnotationStore interface {
	Create(ctx context.Context, annotation *entities.Annotation, username string) error
	GetByID(ctx context.Context, id uint) (*annotations.Row, error)
	Exists(ctx context.Context, id uint) (bool, error)
	ListForPage(ctx context.Context, bookID uint, pageNumber int) ([]annotations.Row, error)
	ListForBook(ctx context.Context, bookID uint) ([]annotations.Row, error)
	ListForUser(ctx context.Context, username string) ([]annotations.Row, error)
	Delete(ctx context.Context, id uint, username string) error
}

// CommentStore persists comments linked to annotations.
type CommentStore interface {
	Create(ctx context.Context, comment *entities.Comment) error
	ListForAnnotation(ctx context.Context, annotationID uint) ([]entities.Comment, error)
	ListForAnnotations(ctx context.Context, annotationIDs []uint) (map[uint][]entities.Comment, error)
}

// FavouriteStore persists a user's favourite books.
type FavouriteStore interface {
	Add(ctx context.Context, fav *entities.FavoriteBook) error
	Remove(ctx context.Context, username string, bookID uint) error
	ListForUser(ctx context.Context, username string) ([]entities.FavoriteBook, error)
}

// ImportScheduler queues a background import of a book.
type ImportScheduler interface {
	ScheduleImport(bookID uint) error
}

// Options wires a Service to its collaborators. Scheduler is optional.
type Options struct {
	Books        BookStore
	Annotations  AnnotationStore
	Comments     CommentStore
	Favourites   FavouriteStore
	Catalog      CatalogSource
	Scheduler    ImportScheduler
	LinesPerPage int
}

// Service is the reader core: it imports catalog books on demand and
// manages annotations, comments and favourites on top of the stored pages.
type Service struct {
	books        BookStore
	annotations  AnnotationStore
	comments     CommentStore
	favourites   FavouriteStore
	catalog      CatalogSource
	scheduler    ImportScheduler
	linesPerPage int

	imports singleflight.Group
}

// NewService creates a reader service. A non-positive LinesPerPage falls
// back to pagination.DefaultLinesPerPage.
func NewService(opts Options) *Service {
	if opts.LinesPerPage <= 0 {
		opts.LinesPerPage = pagination.DefaultLinesPerPage
	}
	return &Service{
		books:        opts.Books,
		annotations:  opts.Annotations,
		comments:     opts.Comments,
		favourites:   opts.Favourites,
		catalog:      opts.Catalog,
		scheduler:    opts.Scheduler,
		linesPerPage: opts.LinesPerPage,
	}
}

// SetScheduler attaches a background import scheduler after construction.
// The task queue depends on the service, so it is wired in afterwards.
func (s *Service) SetScheduler(scheduler ImportScheduler) {
	s.scheduler = scheduler
}

// GetBook returns an imported book. It never triggers an import.
func (s *Service) GetBook(ctx context.Context, id uint) (*entities.Book, error) {
	book, err := s.books.GetBook(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: book %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load book %d: %w", id, err)
	}
	return book, nil
}

// GetPage returns one page of an imported book.
func (s *Service) GetPage(ctx context.Context, bookID uint, pageNumber int) (*entities.BookPage, error) {
	if pageNumber < 1 {
		return nil, fmt.Errorf("%w: page number must be at least 1, got %d", ErrValidation, pageNumber)
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if pageNumber > book.PagesInBook {
		return nil, fmt.Errorf("%w: page %d of book %d (has %d pages)", ErrNotFound, pageNumber, bookID, book.PagesInBook)
	}

	page, err := s.books.GetPage(ctx, bookID, pageNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: page %d of book %d", ErrNotFound, pageNumber, bookID)
	}
	if err != nil {
		return nil, fmt.Errorf("load page %d of book %d: %w", pageNumber, bookID, err)
	}
	return page, nil
}

// SearchCatalog queries the external catalog.
func (s *Service) SearchCatalog(ctx context.Context, query string) ([]catalog.Book, error) {
	books, err := s.catalog.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return books, nil
}

// AnnotationInput describes a new annotation. Offsets count characters of the
// page content and EndIndex is exclusive.
type AnnotationInput struct {
	Username   string
	BookID     uint
	PageNumber int
	StartIndex int
	EndIndex   int
}

// CreateAnnotation validates the range against the page and stores the annotation.
func (s *Service) CreateAnnotation(ctx context.Context, in AnnotationInput) (*entities.Annotation, error) {
	if strings.TrimSpace(in.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}

	page, err := s.GetPage(ctx, in.BookID, in.PageNumber)
	if err != nil {
		return nil, err
	}

	length := utf8.RuneCountInString(page.PageContent)
	if in.StartIndex < 0 || in.StartIndex >= in.EndIndex || in.EndIndex > length {
		return nil, fmt.Errorf("%w: range [%d,%d) outside page of %d characters",
			ErrValidation, in.StartIndex, in.EndIndex, length)
	}

	annotation := &entities.Annotation{
		BookID:     in.BookID,
		PageNumber: in.PageNumber,
		StartIndex: in.StartIndex,
		EndIndex:   in.EndIndex,
	}
	if err := s.annotations.Create(ctx, annotation, in.Username); err != nil {
		return nil, fmt.Errorf("save annotation: %w", err)
	}
	return annotation, nil
}

// GetAnnotation returns a single annotation with its owner.
func (s *Service) GetAnnotation(ctx context.Context, id uint) (*annotations.Row, error) {
	row, err := s.annotations.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: annotation %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load annotation %d: %w", id, err)
	}
	return row, nil
}

// DeleteAnnotation removes an annotation and its comments. Only the creator may delete it.
func (s *Service) DeleteAnnotation(ctx context.Context, id uint, username string) error {
	err := s.annotations.Delete(ctx, id, username)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: annotation %d", ErrNotFound, id)
	case errors.Is(err, annotations.ErrNotOwner):
		return fmt.Errorf("%w: annotation %d belongs to another user", ErrForbidden, id)
	default:
		return fmt.Errorf("delete annotation %d: %w", id, err)
	}
}

// ListAnnotationsForPage returns the annotations on one page ordered by start
// offset. A book that is not imported or a page past its end is ErrNotFound,
// as with GetPage.
func (s *Service) ListAnnotationsForPage(ctx context.Context, bookID uint, pageNumber int) ([]annotations.Row, error) {
	if pageNumber < 1 {
		return nil, fmt.Errorf("%w: page number must be at least 1, got %d", ErrValidation, pageNumber)
	}
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if pageNumber > book.PagesInBook {
		return nil, fmt.Errorf("%w: page %d of book %d (has %d pages)", ErrNotFound, pageNumber, bookID, book.PagesInBook)
	}

	rows, err := s.annotations.ListForPage(ctx, bookID, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("list annotations for page %d of book %d: %w", pageNumber, bookID, err)
	}
	return rows, nil
}

// CreateComment attaches a comment to an existing annotation.
func (s *Service) CreateComment(ctx context.Context, annotationID uint, username, text string) (*entities.Comment, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment is empty", ErrValidation)
	}
	if n := utf8.RuneCountInString(text); n > MaxCommentLength {
		return nil, fmt.Errorf("%w: comment has %d characters, limit is %d", ErrValidation, n, MaxCommentLength)
	}

	comment := &entities.Comment{
		Username:     username,
		AnnotationID: annotationID,
		Comment:      text,
	}
	err := s.comments.Create(ctx, comment)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: annotation %d", ErrNotFound, annotationID)
	}
	if err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}
	return comment, nil
}

// ListComments returns the comments of an annotation, oldest first.
func (s *Service) ListComments(ctx context.Context, annotationID uint) ([]entities.Comment, error) {
	exists, err := s.annotations.Exists(ctx, annotationID)
	if err != nil {
		return nil, fmt.Errorf("check annotation %d: %w", annotationID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: annotation %d", ErrNotFound, annotationID)
	}

	comments, err := s.comments.ListForAnnotation(ctx, annotationID)
	if err != nil {
		return nil, fmt.Errorf("list comments for annotation %d: %w", annotationID, err)
	}
	return comments, nil
}

// ListCommentsForAnnotations returns comments grouped by annotation id.
func (s *Service) ListCommentsForAnnotations(ctx context.Context, ids []uint) (map[uint][]entities.Comment, error) {
	grouped, err := s.comments.ListForAnnotations(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return grouped, nil
}

// AddFavourite marks a book as a user's favourite and queues its import.
func (s *Service) AddFavourite(ctx context.Context, username string, bookID uint) (*entities.FavoriteBook, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}

	title, err := s.bookTitle(ctx, bookID)
	if err != nil {
		return nil, err
	}

	fav := &entities.FavoriteBook{Username: username, BookID: bookID, Title: title}
	if err := s.favourites.Add(ctx, fav); err != nil {
		return nil, fmt.Errorf("save favourite: %w", err)
	}

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleImport(bookID); err != nil {
			log.Printf("[IMPORT] Failed to schedule import of book %d: %v", bookID, err)
		}
	}
	return fav, nil
}

// RemoveFavourite unmarks a favourite book.
func (s *Service) RemoveFavourite(ctx context.Context, username string, bookID uint) error {
	err := s.favourites.Remove(ctx, username, bookID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: book %d is not a favourite of %s", ErrNotFound, bookID, username)
	}
	if err != nil {
		return fmt.Errorf("remove favourite: %w", err)
	}
	return nil
}

// ListFavourites returns a user's favourite books.
func (s *Service) ListFavourites(ctx context.Context, username string) ([]entities.FavoriteBook, error) {
	favs, err := s.favourites.ListForUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list favourites of %s: %w", username, err)
	}
	return favs, nil
}

// bookTitle prefers the imported row and falls back to the catalog.
func (s *Service) bookTitle(ctx context.Context, bookID uint) (string, error) {
	book, err := s.books.GetBook(ctx, bookID)
	if err == nil {
		return book.Title, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("load book %d: %w", bookID, err)
	}

	meta, err := s.catalog.GetBook(ctx, bookID)
	if err != nil {
		return "", translateCatalogError(err, bookID)
	}
	return meta.Title, nil
}
