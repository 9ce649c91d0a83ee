package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/easyreads/easyreads/internal/auth"
	"github.com/easyreads/easyreads/internal/catalog"
	"github.com/easyreads/easyreads/internal/config"
	"github.com/easyreads/easyreads/internal/database"
	"github.com/easyreads/easyreads/internal/database/annotations"
	"github.com/easyreads/easyreads/internal/database/books"
	"github.com/easyreads/easyreads/internal/database/comments"
	"github.com/easyreads/easyreads/internal/database/favourites"
	"github.com/easyreads/easyreads/internal/database/users"
	"github.com/easyreads/easyreads/internal/reader"
)

const testTemplatesPath = "../../templates"

func init() {
	gin.SetMode(gin.TestMode)
}

// frankensteinText is split two lines per page in tests:
// page 1 "You will rejoice to hear\nthat no disaster", page 2 "has accompanied".
const frankensteinText = "You will rejoice to hear\nthat no disaster\nhas accompanied"

// newCatalogServer serves a one-book Gutendex and text mirror.
func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch {
		case r.URL.Path == "/books/" && r.URL.Query().Get("ids") == "84",
			r.URL.Path == "/books/" && r.URL.Query().Get("ids") == "" && r.URL.Query().Get("search") != "nothing":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"count": 1, "results": [{"id": 84, "title": "Frankenstein",
				"authors": [{"name": "Shelley, Mary Wollstonecraft"}], "languages": ["en"], "download_count": 42}]}`)
		case r.URL.Path == "/books/":
			fmt.Fprint(w, `{"count": 0, "results": []}`)
		case r.URL.Path == "/files/84/pg84.txt":
			fmt.Fprint(w, frankensteinText)
		default:
			w.WriteHeader(nethttp.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

type testEnv struct {
	db     *database.Database
	reader *reader.Service
	auth   *auth.Service
	dbPath string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "http.db")
	db, err := database.NewDatabaseWithOptions(dbPath, database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	server := newCatalogServer(t)
	client := catalog.NewClient(catalog.Config{
		BaseURL:         server.URL,
		TextURLTemplate: server.URL + "/files/%d/pg%d.txt",
		Timeout:         5 * time.Second,
	})

	svc := reader.NewService(reader.Options{
		Books:        books.NewRepository(db.DB),
		Annotations:  annotations.NewRepository(db.DB),
		Comments:     comments.NewRepository(db.DB),
		Favourites:   favourites.NewRepository(db.DB),
		Catalog:      client,
		LinesPerPage: 2,
	})

	authSvc := auth.NewService(users.NewRepository(db.DB), testAuthConfig())

	return &testEnv{db: db, reader: svc, auth: authSvc, dbPath: dbPath}
}

func testAuthConfig() config.Auth {
	return config.Auth{
		SessionSecret:    "test-session-secret",
		SessionLifetime:  time.Hour,
		TokenExpiry:      time.Hour,
		JWTSecret:        "test-jwt-secret",
		BcryptCost:       4,
		MaxLoginAttempts: 5,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}
}

// token registers a user and returns a bearer token for them.
func (e *testEnv) token(t *testing.T, username string) string {
	t.Helper()
	ctx := context.Background()
	_, err := e.auth.Register(ctx, username, "password123")
	require.NoError(t, err)
	token, _, err := e.auth.IssueToken(ctx, username, "password123")
	require.NoError(t, err)
	return token
}

// withUser authenticates every request as username, standing in for the
// auth middleware in controller tests.
func withUser(username string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if username != "" {
			c.Set(auth.ContextKeyUsername, username)
		}
		c.Next()
	}
}

// newTestEngine returns an engine with page templates loaded.
func newTestEngine(t *testing.T, username string) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.Use(withUser(username), AuthContextMiddleware())
	tmpl := template.Must(template.New("").Funcs(templateFuncs()).ParseGlob(testTemplatesPath + "/*.html"))
	router.SetHTMLTemplate(tmpl)
	return router
}

func doRequest(t *testing.T, h nethttp.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", strings.TrimSpace(w.Body.String()))
}

func newRequestWithHeader(method, path, header, value string) *nethttp.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(header, value)
	return req
}

func serve(h nethttp.Handler, req *nethttp.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
