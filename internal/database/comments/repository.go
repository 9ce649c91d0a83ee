// Package comments provides database operations for comments on annotations.
//
// Every comment is written together with an annotation_to_comments link, so
// comments can be fetched by link or by their annotation_id column.
package comments

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/easyreads/easyreads/internal/entities"
)

// Repository handles all comment database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new comments repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a comment and links it to its annotation.
// Returns gorm.ErrRecordNotFound if the annotation does not exist.
func (r *Repository) Create(ctx context.Context, comment *entities.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var annotation entities.Annotation
		if err := tx.Select("id").First(&annotation, comment.AnnotationID).Error; err != nil {
			return err
		}

		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		if err := tx.Create(&entities.AnnotationComment{
			AnnotationID: comment.AnnotationID,
			CommentID:    comment.ID,
		}).Error; err != nil {
			return fmt.Errorf("link comment to annotation: %w", err)
		}
		return nil
	})
}

// ListForAnnotation returns the comments of one annotation, oldest first.
func (r *Repository) ListForAnnotation(ctx context.Context, annotationID uint) ([]entities.Comment, error) {
	comments := []entities.Comment{}
	err := r.db.WithContext(ctx).
		Where("annotation_id = ?", annotationID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// ListForAnnotations returns comments grouped by annotation id.
// Annotations without comments are absent from the map. An empty id set
// returns an empty map without touching the database.
func (r *Repository) ListForAnnotations(ctx context.Context, annotationIDs []uint) (map[uint][]entities.Comment, error) {
	grouped := make(map[uint][]entities.Comment)
	if len(annotationIDs) == 0 {
		return grouped, nil
	}

	var comments []entities.Comment
	err := r.db.WithContext(ctx).
		Where("annotation_id IN ?", annotationIDs).
		Order("annotation_id ASC, created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	for _, c := range comments {
		grouped[c.AnnotationID] = append(grouped[c.AnnotationID], c)
	}
	return grouped, nil
}

// CountForUser returns how many comments a user has written.
func (r *Repository) CountForUser(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Comment{}).Where("username = ?", username).Count(&count).Error
	return count, err
}

// DeleteOrphans removes comments whose annotation no longer exists and any
// links pointing at missing annotations or comments.
func (r *Repository) DeleteOrphans(ctx context.Context) (int64, error) {
	var removed int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		annotationIDs := tx.Model(&entities.Annotation{}).Select("id")

		result := tx.Where("annotation_id NOT IN (?)", annotationIDs).Delete(&entities.Comment{})
		if result.Error != nil {
			return fmt.Errorf("delete orphaned comments: %w", result.Error)
		}
		removed = result.RowsAffected

		commentIDs := tx.Model(&entities.Comment{}).Select("id")
		if err := tx.Where("annotation_id NOT IN (?) OR comment_id NOT IN (?)", annotationIDs, commentIDs).
			Delete(&entities.AnnotationComment{}).Error; err != nil {
			return fmt.Errorf("delete orphaned comment links: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
