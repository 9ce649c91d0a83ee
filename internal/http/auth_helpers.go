package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/easyreads/easyreads/internal/auth"
)

// AuthTemplateData holds authentication info for templates.
type AuthTemplateData struct {
	LoggedIn  bool
	Username  string
	CSRFToken string
	CSRFField template.HTML
}

// AuthContextMiddleware makes auth data available to templates as .Auth.
// It must run after the auth and CSRF middleware.
func AuthContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := auth.GetUsername(c)
		c.Set("auth_template_data", AuthTemplateData{
			LoggedIn:  username != "",
			Username:  username,
			CSRFToken: auth.GetCSRFToken(c),
			CSRFField: auth.CSRFTokenField(c),
		})
		c.Next()
	}
}

// GetAuthTemplateData retrieves auth data from context for use in templates.
func GetAuthTemplateData(c *gin.Context) AuthTemplateData {
	if data, exists := c.Get("auth_template_data"); exists {
		if authData, ok := data.(AuthTemplateData); ok {
			return authData
		}
	}
	return AuthTemplateData{Username: auth.GetUsername(c), LoggedIn: auth.IsAuthenticated(c)}
}

// requireUsername returns the authenticated username or responds 401.
func requireUsername(c *gin.Context) (string, bool) {
	username := auth.GetUsername(c)
	if username == "" {
		c.JSON(401, ErrorResponse{Error: "authentication required"})
		return "", false
	}
	return username, true
}
