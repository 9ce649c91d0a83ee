package auth

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/easyreads/easyreads/internal/config"
)

// isLocalPath reports whether path is safe to redirect to after login.
func isLocalPath(path string) bool {
	if path == "" || !strings.HasPrefix(path, "/") {
		return false
	}
	// Protocol-relative URLs (//evil.com) and backslash tricks.
	if strings.HasPrefix(path, "//") || strings.Contains(path, "\\") {
		return false
	}
	return !strings.Contains(path, "://")
}

// sanitizeRedirectPath returns path if it is local, otherwise "/".
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// AuthController serves the login, registration and token endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	templates      *template.Template
	rateLimiter    *RateLimiter
}

// NewAuthController parses templates/auth/*.html under templatesPath. When
// the templates are missing the pages fall back to JSON.
func NewAuthController(service *Service, sessionManager *SessionManager, templatesPath string, cfg config.Auth) *AuthController {
	tmpl, err := template.ParseGlob(filepath.Join(templatesPath, "auth", "*.html"))
	if err != nil {
		tmpl = nil
	}

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		templates:      tmpl,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
	}
}

func (ac *AuthController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.GET("/register", ac.RegisterPage)
	router.POST("/register", ac.Register)
	router.POST("/logout", ac.Logout)
	router.GET("/logout", ac.Logout)
	router.POST("/api/auth/token", ac.Token)
	router.POST("/api/auth/password", ac.ChangePassword)
}

// Stop releases the rate limiter's sweeper goroutine.
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

func (ac *AuthController) LoginPage(c *gin.Context) {
	if ac.sessionManager != nil && ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	ac.renderTemplate(c, http.StatusOK, "login.html", gin.H{
		"Title":     "Login",
		"Next":      sanitizeRedirectPath(c.Query("next")),
		"CSRFToken": GetCSRFToken(c),
		"Error":     c.Query("error"),
	})
}

// Login handles the login form.
func (ac *AuthController) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	fail := func(status int, message string) {
		ac.renderTemplate(c, status, "login.html", gin.H{
			"Title":     "Login",
			"Next":      next,
			"Username":  username,
			"CSRFToken": GetCSRFToken(c),
			"Error":     message,
		})
	}

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, username); !allowed {
		c.Header("Retry-After", retryAfterSeconds(retryAfter))
		fail(http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	if _, err := ac.service.Authenticate(c.Request.Context(), username, password); err != nil {
		ac.rateLimiter.RecordFailure(clientIP, username)
		if isCredentialError(err) {
			fail(http.StatusUnauthorized, "Invalid username or password")
			return
		}
		fail(http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}
	ac.rateLimiter.RecordSuccess(clientIP, username)

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, username); err != nil {
			fail(http.StatusInternalServerError, "Failed to create session")
			return
		}
	}

	c.Redirect(http.StatusFound, next)
}

func (ac *AuthController) RegisterPage(c *gin.Context) {
	if ac.sessionManager != nil && ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	ac.renderTemplate(c, http.StatusOK, "register.html", gin.H{
		"Title":     "Create account",
		"CSRFToken": GetCSRFToken(c),
		"Error":     c.Query("error"),
	})
}

// Register creates an account from the registration form and logs it in.
func (ac *AuthController) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")

	fail := func(status int, message string) {
		ac.renderTemplate(c, status, "register.html", gin.H{
			"Title":     "Create account",
			"Username":  username,
			"CSRFToken": GetCSRFToken(c),
			"Error":     message,
		})
	}

	if password != confirm {
		fail(http.StatusBadRequest, "Passwords do not match")
		return
	}

	if _, err := ac.service.Register(c.Request.Context(), username, password); err != nil {
		switch {
		case errors.Is(err, ErrUserExists):
			fail(http.StatusConflict, "That username is taken")
		case errors.Is(err, ErrPasswordTooShort):
			fail(http.StatusBadRequest, "Password must be at least 8 characters")
		case errors.Is(err, ErrPasswordTooLong):
			fail(http.StatusBadRequest, "Password exceeds maximum length of 72 bytes")
		case errors.Is(err, ErrUsernameRequired), errors.Is(err, ErrPasswordRequired):
			fail(http.StatusBadRequest, "Username and password are required")
		case errors.Is(err, ErrUsernameInvalid):
			fail(http.StatusBadRequest, "Username must be 3-64 characters: letters, digits, dot, underscore or hyphen")
		default:
			fail(http.StatusInternalServerError, "Failed to create account")
		}
		return
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, username); err != nil {
			c.Redirect(http.StatusFound, "/login")
			return
		}
	}
	c.Redirect(http.StatusFound, "/")
}

// Logout destroys the session and redirects to login.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	c.Redirect(http.StatusFound, "/login")
}

type tokenRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Token exchanges credentials for a bearer token.
func (ac *AuthController) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	clientIP := c.ClientIP()
	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Username); !allowed {
		c.Header("Retry-After", retryAfterSeconds(retryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
		return
	}

	token, expiresAt, err := ac.service.IssueToken(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, req.Username)
		if isCredentialError(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	ac.rateLimiter.RecordSuccess(clientIP, req.Username)

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"token_type": "Bearer",
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" form:"new_password" binding:"required"`
}

// ChangePassword replaces the current user's password.
func (ac *AuthController) ChangePassword(c *gin.Context) {
	username := GetUsername(c)
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_password and new_password are required"})
		return
	}

	err := ac.service.ChangePassword(c.Request.Context(), username, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "password changed"})
	case errors.Is(err, ErrInvalidPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
	case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("Failed to change password for %s: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
	}
}

func isCredentialError(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidPassword)
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// renderTemplate renders an auth template or falls back to JSON.
func (ac *AuthController) renderTemplate(c *gin.Context, status int, name string, data gin.H) {
	if ac.templates == nil {
		c.JSON(status, data)
		return
	}

	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := ac.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		c.String(http.StatusInternalServerError, "Template error: %v", err)
	}
}
