// Package notes stores free-form class notes grouped by course.
package notes

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/easyreads/easyreads/internal/entities"
)

var (
	ErrCourseRequired = errors.New("course id is required")
	ErrTitleRequired  = errors.New("title is required")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create validates and stores a note.
func (r *Repository) Create(ctx context.Context, note *entities.Note) error {
	note.CourseID = strings.TrimSpace(note.CourseID)
	note.Title = strings.TrimSpace(note.Title)
	if note.CourseID == "" {
		return ErrCourseRequired
	}
	if note.Title == "" {
		return ErrTitleRequired
	}
	return r.db.WithContext(ctx).Create(note).Error
}

// ListForCourse returns the notes of a course in creation order.
func (r *Repository) ListForCourse(ctx context.Context, courseID string) ([]entities.Note, error) {
	notes := []entities.Note{}
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC, id ASC").
		Find(&notes).Error
	return notes, err
}
