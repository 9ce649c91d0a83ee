package auth

import (
	"context"
	"database/sql"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/easyreads/easyreads/internal/config"
	"github.com/easyreads/easyreads/internal/database/users"
	"github.com/easyreads/easyreads/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuthConfig() config.Auth {
	return config.Auth{
		SessionSecret:    "test-session-secret",
		SessionLifetime:  24 * time.Hour,
		TokenExpiry:      time.Hour,
		BcryptCost:       4,
		SecureCookies:    false,
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}
}

func setupTestDB(t *testing.T) (*gorm.DB, *sql.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&entities.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get SQL DB: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return db, sqlDB
}

func setupTestService(t *testing.T) *Service {
	t.Helper()
	db, _ := setupTestDB(t)
	return NewService(users.NewRepository(db), testAuthConfig())
}

func mustRegister(t *testing.T, svc *Service, username, password string) {
	t.Helper()
	if _, err := svc.Register(context.Background(), username, password); err != nil {
		t.Fatalf("failed to register %s: %v", username, err)
	}
}

// sessionCookie returns the session cookie set by a response, if any.
func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "easyreads_session" {
			return c
		}
	}
	return nil
}
