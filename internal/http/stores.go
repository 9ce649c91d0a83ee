package http

import (
	"context"

	"github.com/easyreads/easyreads/internal/catalog"
	"github.com/easyreads/easyreads/internal/database/annotations"
	"github.com/easyreads/easyreads/internal/entities"
	"github.com/easyreads/easyreads/internal/reader"
)

// Each controller depends on the slice of the reader service it uses.
// *reader.Service satisfies all of them.

// CatalogSearcher searches the public catalog.
type CatalogSearcher interface {
	SearchCatalog(ctx context.Context, query string) ([]catalog.Book, error)
}

// PageReader serves books and their pages.
type PageReader interface {
	EnsureBookImported(ctx context.Context, id uint) (*entities.Book, error)
	GetBook(ctx context.Context, id uint) (*entities.Book, error)
	PageView(ctx context.Context, bookID uint, pageNumber int) (*reader.PageView, error)
	ListAnnotationsForPage(ctx context.Context, bookID uint, pageNumber int) ([]annotations.Row, error)
}

// AnnotationWriter creates and deletes annotations.
type AnnotationWriter interface {
	CreateAnnotation(ctx context.Context, in reader.AnnotationInput) (*entities.Annotation, error)
	GetAnnotation(ctx context.Context, id uint) (*annotations.Row, error)
	DeleteAnnotation(ctx context.Context, id uint, username string) error
}

// CommentService reads and writes annotation comments.
type CommentService interface {
	CreateComment(ctx context.Context, annotationID uint, username, text string) (*entities.Comment, error)
	ListComments(ctx context.Context, annotationID uint) ([]entities.Comment, error)
	ListCommentsForAnnotations(ctx context.Context, ids []uint) (map[uint][]entities.Comment, error)
}

// ProfileReader aggregates a user's favourites and annotations.
type ProfileReader interface {
	ProfileView(ctx context.Context, username string) (*reader.Profile, error)
}

// FavouriteService toggles favourite books.
type FavouriteService interface {
	AddFavourite(ctx context.Context, username string, bookID uint) (*entities.FavoriteBook, error)
	RemoveFavourite(ctx context.Context, username string, bookID uint) error
	ListFavourites(ctx context.Context, username string) ([]entities.FavoriteBook, error)
}

// NotesStore persists class notes.
type NotesStore interface {
	Create(ctx context.Context, note *entities.Note) error
	ListForCourse(ctx context.Context, courseID string) ([]entities.Note, error)
}

// ReaderService is the whole reader surface the router wires.
type ReaderService interface {
	CatalogSearcher
	PageReader
	AnnotationWriter
	CommentService
	ProfileReader
	FavouriteService
}
