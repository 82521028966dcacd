package middleware

import (
	"encoding/json"
	"net/http"

	"p9e.in/corecut/models"
)

// RequireAdmin gates mutating admin endpoints on the role carried in the
// token. Operators get 403, unauthenticated callers 401.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r)
		if claims == nil {
			unauthorized(w, "unauthorized")
			return
		}
		if claims.Role != models.RoleAdmin {
			forbidden(w, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeEnvelope(w, http.StatusUnauthorized, msg)
}

func forbidden(w http.ResponseWriter, msg string) {
	writeEnvelope(w, http.StatusForbidden, msg)
}

func writeEnvelope(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}
