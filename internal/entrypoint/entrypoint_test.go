package entrypoint

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyreads/easyreads/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		HTTP:     config.HTTP{Host: "127.0.0.1", Port: 0},
		Global:   config.Global{ShutdownTimeoutInSeconds: 1},
		Database: config.Database{Path: filepath.Join(t.TempDir(), "easyreads.db")},
		Catalog:  config.Catalog{BaseURL: "http://127.0.0.1:1"},
		Reader:   config.Reader{LinesPerPage: 60},
		Auth:     config.Auth{BcryptCost: 4, SessionSecret: "secret"},
	}
}

func TestNewApp(t *testing.T) {
	app, err := NewApp(testConfig(t))
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Reader)
	assert.NotNil(t, app.Auth)
	assert.NotNil(t, app.Notes)
	require.NoError(t, app.DB.Ping(context.Background()))

	hasUsers, err := app.Auth.HasUsers(context.Background())
	require.NoError(t, err)
	assert.False(t, hasUsers)
}

func TestCatalogConfig(t *testing.T) {
	cfg := catalogConfig(config.Catalog{
		BaseURL:         "https://example.com",
		TextURLTemplate: "https://example.com/%d/%d.txt",
		Timeout:         time.Second,
		RequestInterval: time.Millisecond,
		MaxTextBytes:    1024,
	})

	assert.Equal(t, "https://example.com", cfg.BaseURL)
	assert.Equal(t, "https://example.com/%d/%d.txt", cfg.TextURLTemplate)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, time.Millisecond, cfg.RequestInterval)
	assert.Equal(t, int64(1024), cfg.MaxTextBytes)
}

func TestEnsureSessionSecret(t *testing.T) {
	cfg := config.Auth{}
	require.NoError(t, ensureSessionSecret(&cfg))
	assert.Len(t, cfg.SessionSecret, 64)

	cfg = config.Auth{SessionSecret: "configured"}
	require.NoError(t, ensureSessionSecret(&cfg))
	assert.Equal(t, "configured", cfg.SessionSecret)
}

func TestCSRFKey(t *testing.T) {
	assert.Len(t, csrfKey("anything"), 32)
	assert.Equal(t, csrfKey("a"), csrfKey("a"))
	assert.NotEqual(t, csrfKey("a"), csrfKey("b"))
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	var shutdownCalled atomic.Bool
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, gin.New(), cfg, func(context.Context) { shutdownCalled.Store(true) })
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.True(t, shutdownCalled.Load())
}

func TestServe_ListenError(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.Host = "256.0.0.1"

	err := Serve(context.Background(), gin.New(), cfg, nil)
	assert.Error(t, err)
}
