// Package interfaces documents the core abstractions used throughout the application.
//
// Consumers declare the small interfaces they need next to the code that
// uses them; checks.go pins every concrete implementation to them.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookStore, AnnotationStore, CommentStore, FavouriteStore: persistence
//     behind the reader service (internal/reader/service.go)
//   - UserRepository: accounts (internal/auth/service.go)
//   - NotesStore: class notes (internal/http/stores.go)
//
// ## External Service Interfaces
//
//   - CatalogSource: book search, metadata and text (internal/reader/service.go)
//
// ## HTTP Interfaces
//
//   - ReaderService and its parts CatalogSearcher, PageReader,
//     AnnotationWriter, CommentService, ProfileReader, FavouriteService
//     (internal/http/stores.go)
//   - TokenValidator: bearer token checks (internal/auth/middleware.go)
//
// ## Background Work Interfaces
//
//   - ImportScheduler: prefetch of favourited books (internal/reader/service.go)
//   - BookImporter, OrphanCleaner: task processors (internal/tasks)
//   - CleanupEnqueuer: cron-triggered cleanup (internal/scheduler)
//
// # Adding a New Catalog Source
//
//  1. Implement reader.CatalogSource, mapping "no such book" to
//     catalog.ErrBookNotFound and transport failures to catalog.ErrUnavailable.
//  2. Add a compile-time check to checks.go.
//  3. Pass the implementation as reader.Options.Catalog in internal/entrypoint.
package interfaces
