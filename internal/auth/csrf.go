package auth

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader carries the token on requests made from page scripts.
const CSRFTokenHeader = "X-CSRF-Token"

const csrfContextKey = "csrf_token"

// CSRFMiddleware protects cookie-authenticated form and script requests.
// Requests bearing a valid bearer token are exempt since browsers never
// attach one on their own.
func CSRFMiddleware(secret []byte, secure bool, tokens TokenValidator) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if hasValidBearer(c, tokens) {
			c.Next()
			return
		}

		// Without TLS the origin check must compare against http:// referers.
		if !secure {
			c.Request = csrf.PlaintextHTTPRequest(c.Request)
		}

		passed := false
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(csrfContextKey, csrf.Token(r))
			c.Request = r
			c.Next()
		}))
		handler.ServeHTTP(c.Writer, c.Request)

		// The error handler has already written the response.
		if !passed {
			c.Abort()
		}
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") || strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing"}`))
		return
	}

	if referer := r.Referer(); referer != "" {
		sep := "?"
		if strings.Contains(referer, "?") {
			sep = "&"
		}
		http.Redirect(w, r, referer+sep+"error=Session+expired.+Please+try+again.", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html><head><title>Session expired</title></head>
<body><h1>Session expired</h1><p>Please go back, reload the page and try again.</p></body>
</html>`))
}

func hasValidBearer(c *gin.Context, tokens TokenValidator) bool {
	if tokens == nil {
		return false
	}
	token, ok := bearerToken(c)
	if !ok {
		return false
	}
	_, err := tokens.ValidateToken(token)
	return err == nil
}

// GetCSRFToken returns the token for the current request, if any.
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(csrfContextKey)
}

// CSRFTokenField returns a hidden form input carrying the token.
func CSRFTokenField(c *gin.Context) template.HTML {
	token := GetCSRFToken(c)
	if token == "" {
		return ""
	}
	return template.HTML(`<input type="hidden" name="gorilla.csrf.Token" value="` + template.HTMLEscapeString(token) + `">`)
}
