package http

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/easyreads/easyreads/internal/auth"
)

// Router is the configured engine plus the pieces that need shutting down.
type Router struct {
	*gin.Engine
	authController *auth.AuthController
}

// Stop releases background resources held by the router's controllers.
func (r *Router) Stop() {
	if r.authController != nil {
		r.authController.Stop()
	}
}

// templateFuncs are available in every page template.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"subtract": func(a, b int) int {
			return a - b
		},
		"join": strings.Join,
		"pagePath": pagePath,
	}
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *Router {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		var tokens auth.TokenValidator
		if cfg.AuthService != nil {
			tokens = cfg.AuthService
		}
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies, tokens))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthService != nil {
		router.Use(auth.NewMiddleware(cfg.AuthService, cfg.SessionManager).Handler())
	}

	router.Use(AuthContextMiddleware())

	if cfg.TemplatesPath != "" {
		tmpl := template.Must(template.New("").Funcs(templateFuncs()).ParseGlob(cfg.TemplatesPath + "/*.html"))
		router.SetHTMLTemplate(tmpl)
	}
	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	r := &Router{Engine: router}

	if cfg.AuthService != nil {
		r.authController = auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.TemplatesPath, cfg.AuthConfig)
		r.authController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)
	router.GET("/welcome", health.Welcome)

	catalogController := NewCatalogController(cfg.Reader)
	readerController := NewReaderController(cfg.Reader)
	annotationsController := NewAnnotationsController(cfg.Reader)
	commentsController := NewCommentsController(cfg.Reader)
	profileController := NewProfileController(cfg.Reader)
	favouritesController := NewFavouritesController(cfg.Reader)

	// UI routes
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/books")
	})
	router.GET("/books", catalogController.SearchPage)
	router.GET("/books/:id", readerController.OpenBook)
	router.GET("/books/:id/pages/:page", readerController.ReaderPage)
	router.GET("/profile", profileController.ProfilePage)

	// Catalog and books API
	router.GET("/api/catalog", catalogController.Search)
	router.GET("/api/books/:id", readerController.GetBook)
	router.GET("/api/books/:id/pages/:page", readerController.GetPage)
	router.GET("/api/books/:id/pages/:page/annotations", readerController.PageAnnotations)

	// Annotations and comments
	router.POST("/api/annotations", annotationsController.Create)
	router.GET("/api/annotations/:id", annotationsController.Get)
	router.DELETE("/api/annotations/:id", annotationsController.Delete)
	router.GET("/api/annotations/:id/comments", commentsController.List)
	router.POST("/api/annotations/:id/comments", commentsController.Create)
	router.POST("/api/comments/batch", commentsController.Batch)

	// Profile and favourites
	router.GET("/api/profile", profileController.Profile)
	router.GET("/api/favourites", favouritesController.ListFavourites)
	router.POST("/api/books/:id/favourite", favouritesController.AddFavourite)
	router.DELETE("/api/books/:id/favourite", favouritesController.RemoveFavourite)

	if cfg.Notes != nil {
		notesController := NewNotesController(cfg.Notes)
		router.POST("/api/notes", notesController.Create)
		router.GET("/api/notes/:course_id", notesController.ListForCourse)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	return r
}
