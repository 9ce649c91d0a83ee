package entities

import "time"

// Annotation is a highlighted character range on one page of one book.
// Offsets count characters (runes) of the page content; EndIndex is exclusive.
type Annotation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BookID     uint      `gorm:"index:idx_annotations_book_page" json:"book_id"`
	PageNumber int       `gorm:"index:idx_annotations_book_page" json:"page_number"`
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserAnnotation records which user created an annotation.
type UserAnnotation struct {
	Username     string `gorm:"primaryKey;size:64" json:"username"`
	AnnotationID uint   `gorm:"primaryKey;autoIncrement:false;index" json:"annotation_id"`
}

// BookAnnotation is the authoritative join path from a book to its annotations.
type BookAnnotation struct {
	BookID       uint `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	AnnotationID uint `gorm:"primaryKey;autoIncrement:false;index" json:"annotation_id"`
}

type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;index" json:"username"`
	AnnotationID uint      `gorm:"index" json:"annotation_id"`
	Comment      string    `gorm:"type:text" json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// AnnotationComment links a comment to the annotation it responds to.
type AnnotationComment struct {
	AnnotationID uint `gorm:"primaryKey;autoIncrement:false" json:"annotation_id"`
	CommentID    uint `gorm:"primaryKey;autoIncrement:false;index" json:"comment_id"`
}

func (Annotation) TableName() string {
	return "annotations"
}

func (UserAnnotation) TableName() string {
	return "user_to_annotation"
}

func (BookAnnotation) TableName() string {
	return "books_to_annotation"
}

func (Comment) TableName() string {
	return "comments"
}

func (AnnotationComment) TableName() string {
	return "annotation_to_comments"
}
