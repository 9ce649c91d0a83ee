package http

import (
	"github.com/easyreads/easyreads/internal/auth"
	"github.com/easyreads/easyreads/internal/config"
	"github.com/easyreads/easyreads/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Reader   ReaderService
	Notes    NotesStore
	Database Pinger

	// Authentication. Without an AuthService every route is anonymous and
	// the write endpoints answer 401.
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte // 32 bytes; empty disables CSRF protection

	// UI paths. An empty TemplatesPath skips HTML template loading.
	TemplatesPath string
	StaticPath    string

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
