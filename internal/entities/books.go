package entities

import "time"

// Book is a catalog book whose text has been imported and paginated.
// ID is the external catalog identifier and is never auto-generated.
type Book struct {
	ID          uint       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title       string     `gorm:"size:1024" json:"title"`
	PagesInBook int        `gorm:"not null" json:"pages_in_book"`
	Pages       []BookPage `gorm:"foreignKey:BookID" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}

// BookPage holds one fixed-size slice of a book's text.
type BookPage struct {
	BookID      uint   `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	PageNumber  int    `gorm:"primaryKey;autoIncrement:false" json:"page_number"`
	PageContent string `gorm:"type:text" json:"page_content"`
}

// FavoriteBook links a user to a book they marked as favourite.
// Title is copied from the catalog so the favourite renders before import finishes.
type FavoriteBook struct {
	Username  string    `gorm:"primaryKey;size:64" json:"username"`
	BookID    uint      `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	Title     string    `gorm:"size:1024" json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func (Book) TableName() string {
	return "books"
}

func (BookPage) TableName() string {
	return "book_pages"
}

func (FavoriteBook) TableName() string {
	return "user_to_books"
}
