// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── books/           # Imported books and their pages
//	├── annotations/     # Annotations and their ownership links
//	├── comments/        # Comments attached to annotations
//	├── favourites/      # Books a user marked as favourite
//	├── notes/           # Course notes
//	└── users/           # User accounts
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./easyreads.db")
//
//	booksRepo := books.NewRepository(db.DB)
//	annotationsRepo := annotations.NewRepository(db.DB)
//
//	page, err := booksRepo.GetPage(ctx, 84, 3)
//	rows, err := annotationsRepo.ListForBook(ctx, 84)
//
// Repositories return gorm.ErrRecordNotFound for missing rows; callers map it
// to their own error kinds.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add a compile-time interface check in internal/interfaces
package database
