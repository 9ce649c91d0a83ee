package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUsername = "auth_username"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the user was authenticated.
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// TokenValidator resolves a bearer token to a username.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// Middleware authenticates requests by bearer token or session cookie.
type Middleware struct {
	tokens         TokenValidator
	sessionManager *SessionManager
	publicPaths    map[string]bool
}

// NewMiddleware creates the authentication middleware. Either argument may be
// nil to disable that method.
func NewMiddleware(tokens TokenValidator, sessionManager *SessionManager) *Middleware {
	return &Middleware{
		tokens:         tokens,
		sessionManager: sessionManager,
		publicPaths: map[string]bool{
			"/health":         true,
			"/ping":           true,
			"/welcome":        true,
			"/login":          true,
			"/register":       true,
			"/logout":         true,
			"/api/auth/token": true,
			"/favicon.ico":    true,
		},
	}
}

// Handler identifies the user on every request. Public paths pass through
// anonymously; anything else without credentials gets 401 (API) or a
// redirect to the login page.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if username := m.tryBearerAuth(c); username != "" {
			setUser(c, username, AuthTypeBearer)
			c.Next()
			return
		}
		if username := m.trySessionAuth(c); username != "" {
			setUser(c, username, AuthTypeSession)
			c.Next()
			return
		}

		c.Set(ContextKeyAuthType, AuthTypeNone)
		if m.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}
		m.reject(c)
	}
}

// RequireAuth rejects anonymous requests on routes outside the global check.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUsername(c) == "" {
			m.reject(c)
			return
		}
		c.Next()
	}
}

func (m *Middleware) reject(c *gin.Context) {
	if isAPIRequest(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	target := c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		target += "?" + c.Request.URL.RawQuery
	}
	c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(target))
	c.Abort()
}

func (m *Middleware) tryBearerAuth(c *gin.Context) string {
	if m.tokens == nil {
		return ""
	}
	token, ok := bearerToken(c)
	if !ok {
		return ""
	}
	username, err := m.tokens.ValidateToken(token)
	if err != nil {
		return ""
	}
	return username
}

func (m *Middleware) trySessionAuth(c *gin.Context) string {
	if m.sessionManager == nil {
		return ""
	}
	return m.sessionManager.GetUsername(c.Request)
}

func (m *Middleware) isPublicPath(path string) bool {
	return m.publicPaths[path] || strings.HasPrefix(path, "/static/")
}

func setUser(c *gin.Context, username string, authType AuthType) {
	c.Set(ContextKeyUsername, username)
	c.Set(ContextKeyAuthType, authType)
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// isAPIRequest tells JSON clients apart from browsers.
func isAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return c.GetHeader("Authorization") != ""
}

// GetUsername returns the authenticated username, or "" for anonymous requests.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

// GetAuthType returns how the current request was authenticated.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}

func IsAuthenticated(c *gin.Context) bool {
	return GetUsername(c) != ""
}
