package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/easyreads/easyreads/internal/auth"
	"github.com/easyreads/easyreads/internal/catalog"
	"github.com/easyreads/easyreads/internal/database"
	"github.com/easyreads/easyreads/internal/database/annotations"
	"github.com/easyreads/easyreads/internal/database/books"
	"github.com/easyreads/easyreads/internal/database/comments"
	"github.com/easyreads/easyreads/internal/database/favourites"
	"github.com/easyreads/easyreads/internal/database/notes"
	"github.com/easyreads/easyreads/internal/database/users"
	"github.com/easyreads/easyreads/internal/http"
	"github.com/easyreads/easyreads/internal/reader"
	"github.com/easyreads/easyreads/internal/scheduler"
	"github.com/easyreads/easyreads/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ reader.BookStore = (*books.Repository)(nil)
var _ reader.AnnotationStore = (*annotations.Repository)(nil)
var _ reader.CommentStore = (*comments.Repository)(nil)
var _ reader.FavouriteStore = (*favourites.Repository)(nil)
var _ auth.UserRepository = (*users.Repository)(nil)
var _ http.NotesStore = (*notes.Repository)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ reader.CatalogSource = (*catalog.Client)(nil)

// =============================================================================
// Reader Service
// =============================================================================

var _ http.ReaderService = (*reader.Service)(nil)
var _ tasks.BookImporter = (*reader.Service)(nil)
var _ auth.TokenValidator = (*auth.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ reader.ImportScheduler = (*tasks.Client)(nil)
var _ scheduler.CleanupEnqueuer = (*tasks.Client)(nil)
var _ tasks.OrphanCleaner = (*annotations.Repository)(nil)
var _ tasks.OrphanCleaner = (*comments.Repository)(nil)
