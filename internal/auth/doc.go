// Package auth identifies readers for the web UI and the JSON API.
//
// Browsers log in with a form and carry a SQLite-backed session cookie
// (scs). API clients exchange credentials at POST /api/auth/token for an
// HS256 JWT and send it as "Authorization: Bearer <token>". Either way the
// authenticated username ends up in the gin context:
//
//	router.Use(sessions.SessionLoadSave())
//	router.Use(auth.NewMiddleware(authService, sessions).Handler())
//
//	username := auth.GetUsername(c)
//
// Passwords are hashed with bcrypt. Cookie-authenticated form posts are
// guarded by gorilla/csrf, and failed logins are throttled per IP and
// username.
//
// Configuration comes from the AUTH_* environment variables:
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # generated at startup if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_JWT_SECRET=                    # falls back to the session secret
//	AUTH_TOKEN_EXPIRY=720h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true
package auth
