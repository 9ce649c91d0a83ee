// Package favourites provides database operations for the books a user has
// marked as favourite (the user_to_books table).
//
// # Usage
//
//	repo := favourites.NewRepository(db)
//	err := repo.Add(ctx, &entities.FavoriteBook{Username: "alice", BookID: 84, Title: "Frankenstein"})
//	books, err := repo.ListForUser(ctx, "alice")
package favourites

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/easyreads/easyreads/internal/entities"
)

// Repository handles all favourites database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new favourites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add links a book to a user. Adding an existing favourite is a no-op.
func (r *Repository) Add(ctx context.Context, fav *entities.FavoriteBook) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fav).Error
}

// Remove unlinks a book from a user.
// Returns gorm.ErrRecordNotFound if the book was not a favourite.
func (r *Repository) Remove(ctx context.Context, username string, bookID uint) error {
	result := r.db.WithContext(ctx).
		Where("username = ? AND book_id = ?", username, bookID).
		Delete(&entities.FavoriteBook{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListForUser returns a user's favourite books, most recently added first.
func (r *Repository) ListForUser(ctx context.Context, username string) ([]entities.FavoriteBook, error) {
	favs := []entities.FavoriteBook{}
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at DESC, book_id ASC").
		Find(&favs).Error
	return favs, err
}

// IsFavourite reports whether a user has marked a book as favourite.
func (r *Repository) IsFavourite(ctx context.Context, username string, bookID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.FavoriteBook{}).
		Where("username = ? AND book_id = ?", username, bookID).
		Count(&count).Error
	return count > 0, err
}

// BookIDs returns the distinct ids of every favourited book.
func (r *Repository) BookIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entities.FavoriteBook{}).
		Distinct("book_id").
		Order("book_id ASC").
		Pluck("book_id", &ids).Error
	return ids, err
}
