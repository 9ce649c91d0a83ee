package entities

import "time"

// Note is a free-form class note grouped by course.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  string    `gorm:"index;size:64" json:"course_id"`
	Title     string    `gorm:"size:512" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (Note) TableName() string {
	return "cnotes"
}
