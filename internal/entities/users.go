package entities

import "time"

type User struct {
	Username  string    `gorm:"primaryKey;size:64" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash, hidden from JSON
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
