package handlers

import (
	"net/http"
	"strings"

	"github.com/partylabs/ideasthesia/internal/auth"
)

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// requireIdentity resolves the auth_token cookie to an identity. On failure
// it writes the error response itself and returns ok=false; unauthenticated
// callers are pointed at /user/login via the Location header.
func requireIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	cookie := r.Header.Get("Cookie")
	if !strings.Contains(cookie, "auth_token=") {
		w.Header().Set("Location", "/user/login")
		http.Error(w, "missing auth_token", http.StatusUnauthorized)
		return auth.Identity{}, false
	}
	ident, err := auth.AuthenticateJWT(extractCookieToken(cookie, "auth_token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusForbidden)
		return auth.Identity{}, false
	}
	return ident, true
}
