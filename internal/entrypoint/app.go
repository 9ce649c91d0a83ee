package entrypoint

import (
	"github.com/easyreads/easyreads/internal/auth"
	"github.com/easyreads/easyreads/internal/catalog"
	"github.com/easyreads/easyreads/internal/config"
	"github.com/easyreads/easyreads/internal/database"
	"github.com/easyreads/easyreads/internal/database/annotations"
	"github.com/easyreads/easyreads/internal/database/books"
	"github.com/easyreads/easyreads/internal/database/comments"
	"github.com/easyreads/easyreads/internal/database/favourites"
	"github.com/easyreads/easyreads/internal/database/notes"
	"github.com/easyreads/easyreads/internal/database/users"
	"github.com/easyreads/easyreads/internal/reader"
)

// App holds the components shared by the server and the CLI commands.
type App struct {
	Config      *config.Config
	DB          *database.Database
	Catalog     *catalog.Client
	Reader      *reader.Service
	Auth        *auth.Service
	Annotations *annotations.Repository
	Comments    *comments.Repository
	Favourites  *favourites.Repository
	Notes       *notes.Repository
}

// NewApp opens the database and wires the repositories and services.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:      cfg,
		DB:          db,
		Catalog:     catalog.NewClient(catalogConfig(cfg.Catalog)),
		Annotations: annotations.NewRepository(db.DB),
		Comments:    comments.NewRepository(db.DB),
		Favourites:  favourites.NewRepository(db.DB),
		Notes:       notes.NewRepository(db.DB),
		Auth:        auth.NewService(users.NewRepository(db.DB), cfg.Auth),
	}
	app.Reader = reader.NewService(reader.Options{
		Books:        books.NewRepository(db.DB),
		Annotations:  app.Annotations,
		Comments:     app.Comments,
		Favourites:   app.Favourites,
		Catalog:      app.Catalog,
		LinesPerPage: cfg.Reader.LinesPerPage,
	})
	return app, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}

func catalogConfig(cfg config.Catalog) catalog.Config {
	return catalog.Config{
		BaseURL:         cfg.BaseURL,
		TextURLTemplate: cfg.TextURLTemplate,
		Timeout:         cfg.Timeout,
		RequestInterval: cfg.RequestInterval,
		MaxTextBytes:    cfg.MaxTextBytes,
	}
}
