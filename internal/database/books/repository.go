// Package books provides database operations for imported books and their pages.
//
// A book row is written together with all of its pages in one transaction, so
// a row in books implies its pages were persisted. ReplacePages is the repair
// path used when a stored page set is found incomplete.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	created, err := repo.CreateBookWithPages(ctx, book, pages)
//	page, err := repo.GetPage(ctx, book.ID, 1)
package books

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/easyreads/easyreads/internal/entities"
)

// pageBatchSize bounds the number of rows per INSERT statement.
const pageBatchSize = 500

// Repository handles all book and page database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBook retrieves a book without its pages.
func (r *Repository) GetBook(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBooks retrieves the books with the given ids. Missing ids are skipped.
func (r *Repository) GetBooks(ctx context.Context, ids []uint) ([]entities.Book, error) {
	books := []entities.Book{}
	if len(ids) == 0 {
		return books, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&books).Error
	return books, err
}

// GetPage retrieves one page of a book.
func (r *Repository) GetPage(ctx context.Context, bookID uint, pageNumber int) (*entities.BookPage, error) {
	var page entities.BookPage
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND page_number = ?", bookID, pageNumber).
		First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// CountPages returns the number of stored pages for a book.
func (r *Repository) CountPages(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.BookPage{}).
		Where("book_id = ?", bookID).
		Count(&count).Error
	return count, err
}

// CreateBookWithPages inserts a book and all its pages atomically.
// If a row with the same id already exists nothing is written and created is false.
func (r *Repository) CreateBookWithPages(ctx context.Context, book *entities.Book, pages []entities.BookPage) (bool, error) {
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Omit("Pages").Clauses(clause.OnConflict{DoNothing: true}).Create(book)
		if result.Error != nil {
			return fmt.Errorf("insert book %d: %w", book.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := insertPages(tx, book.ID, pages); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// ReplacePages swaps the stored page set of a book for a new one atomically.
func (r *Repository) ReplacePages(ctx context.Context, bookID uint, pages []entities.BookPage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", bookID).Delete(&entities.BookPage{}).Error; err != nil {
			return fmt.Errorf("delete pages of book %d: %w", bookID, err)
		}
		return insertPages(tx, bookID, pages)
	})
}

func insertPages(tx *gorm.DB, bookID uint, pages []entities.BookPage) error {
	if len(pages) == 0 {
		return nil
	}
	for i := range pages {
		pages[i].BookID = bookID
	}
	if err := tx.CreateInBatches(pages, pageBatchSize).Error; err != nil {
		return fmt.Errorf("insert pages of book %d: %w", bookID, err)
	}
	return nil
}
