// Package annotations provides database operations for annotations and the
// link tables that record who created them and which book they belong to.
//
// An annotation is always written together with its user_to_annotation and
// books_to_annotation rows, and removed together with them and with every
// comment attached to it.
package annotations

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/easyreads/easyreads/internal/entities"
)

// ErrNotOwner is returned when a user tries to delete someone else's annotation.
var ErrNotOwner = errors.New("annotation belongs to another user")

// Row is an annotation joined with its owner and the title of its book.
type Row struct {
	entities.Annotation
	Username  string `json:"username"`
	BookTitle string `json:"book_title"`
}

// Repository handles all annotation database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new annotations repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the annotation and both of its links in one transaction.
func (r *Repository) Create(ctx context.Context, annotation *entities.Annotation, username string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(annotation).Error; err != nil {
			return fmt.Errorf("insert annotation: %w", err)
		}
		if err := tx.Create(&entities.UserAnnotation{
			Username:     username,
			AnnotationID: annotation.ID,
		}).Error; err != nil {
			return fmt.Errorf("link annotation to user: %w", err)
		}
		if err := tx.Create(&entities.BookAnnotation{
			BookID:       annotation.BookID,
			AnnotationID: annotation.ID,
		}).Error; err != nil {
			return fmt.Errorf("link annotation to book: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a single annotation with its owner and book title.
func (r *Repository) GetByID(ctx context.Context, id uint) (*Row, error) {
	var rows []Row
	err := r.baseQuery(ctx).
		Where("annotations.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// Exists reports whether an annotation with the given id is stored.
func (r *Repository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Annotation{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ListForPage returns the annotations anchored to one page, ordered by position.
func (r *Repository) ListForPage(ctx context.Context, bookID uint, pageNumber int) ([]Row, error) {
	rows := []Row{}
	err := r.baseQuery(ctx).
		Where("annotations.book_id = ? AND annotations.page_number = ?", bookID, pageNumber).
		Order("annotations.start_index ASC, annotations.id ASC").
		Scan(&rows).Error
	return rows, err
}

// ListForBook returns every annotation linked to a book through books_to_annotation.
func (r *Repository) ListForBook(ctx context.Context, bookID uint) ([]Row, error) {
	rows := []Row{}
	err := r.db.WithContext(ctx).
		Table("books_to_annotation").
		Select("annotations.*, user_to_annotation.username AS username, books.title AS book_title").
		Joins("JOIN annotations ON annotations.id = books_to_annotation.annotation_id").
		Joins("LEFT JOIN user_to_annotation ON user_to_annotation.annotation_id = annotations.id").
		Joins("LEFT JOIN books ON books.id = books_to_annotation.book_id").
		Where("books_to_annotation.book_id = ?", bookID).
		Order("annotations.page_number ASC, annotations.start_index ASC, annotations.id ASC").
		Scan(&rows).Error
	return rows, err
}

// ListForUser returns every annotation created by a user, newest first.
func (r *Repository) ListForUser(ctx context.Context, username string) ([]Row, error) {
	rows := []Row{}
	err := r.db.WithContext(ctx).
		Table("user_to_annotation").
		Select("annotations.*, user_to_annotation.username AS username, books.title AS book_title").
		Joins("JOIN annotations ON annotations.id = user_to_annotation.annotation_id").
		Joins("LEFT JOIN books ON books.id = annotations.book_id").
		Where("user_to_annotation.username = ?", username).
		Order("annotations.created_at DESC, annotations.id DESC").
		Scan(&rows).Error
	return rows, err
}

// Delete removes an annotation owned by username along with its links and comments.
// Returns gorm.ErrRecordNotFound if the annotation does not exist and ErrNotOwner
// if it exists but was created by someone else.
func (r *Repository) Delete(ctx context.Context, id uint, username string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var annotation entities.Annotation
		if err := tx.First(&annotation, id).Error; err != nil {
			return err
		}

		var owner entities.UserAnnotation
		err := tx.Where("annotation_id = ?", id).First(&owner).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotOwner
		}
		if err != nil {
			return err
		}
		if owner.Username != username {
			return ErrNotOwner
		}

		return deleteCascade(tx, []uint{id})
	})
}

// DeleteOrphans removes annotations missing either their owner or book link,
// together with whatever links and comments remain for them.
func (r *Repository) DeleteOrphans(ctx context.Context) (int64, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entities.Annotation{}).
		Where("id NOT IN (?)", r.db.Model(&entities.UserAnnotation{}).Select("annotation_id")).
		Or("id NOT IN (?)", r.db.Model(&entities.BookAnnotation{}).Select("annotation_id")).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("find orphaned annotations: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteCascade(tx, ids)
	})
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (r *Repository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entities.Annotation{}).
		Select("annotations.*, user_to_annotation.username AS username, books.title AS book_title").
		Joins("LEFT JOIN user_to_annotation ON user_to_annotation.annotation_id = annotations.id").
		Joins("LEFT JOIN books ON books.id = annotations.book_id")
}

func deleteCascade(tx *gorm.DB, ids []uint) error {
	var commentIDs []uint
	if err := tx.Model(&entities.AnnotationComment{}).
		Where("annotation_id IN ?", ids).
		Pluck("comment_id", &commentIDs).Error; err != nil {
		return fmt.Errorf("find linked comments: %w", err)
	}

	if err := tx.Where("annotation_id IN ?", ids).Delete(&entities.AnnotationComment{}).Error; err != nil {
		return fmt.Errorf("delete comment links: %w", err)
	}

	comments := tx.Where("annotation_id IN ?", ids)
	if len(commentIDs) > 0 {
		comments = tx.Where("annotation_id IN ? OR id IN ?", ids, commentIDs)
	}
	if err := comments.Delete(&entities.Comment{}).Error; err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}

	if err := tx.Where("annotation_id IN ?", ids).Delete(&entities.UserAnnotation{}).Error; err != nil {
		return fmt.Errorf("delete user link: %w", err)
	}
	if err := tx.Where("annotation_id IN ?", ids).Delete(&entities.BookAnnotation{}).Error; err != nil {
		return fmt.Errorf("delete book link: %w", err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&entities.Annotation{}).Error; err != nil {
		return fmt.Errorf("delete annotation: %w", err)
	}
	return nil
}
