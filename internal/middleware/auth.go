package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// AdminGuard rejects requests whose X-Admin-Token header (or admin_token
// query parameter) does not match token. An empty configured token disables
// the protected endpoints entirely rather than leaving them open.
func AdminGuard(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		supplied := r.Header.Get("X-Admin-Token")
		if supplied == "" {
			supplied = r.URL.Query().Get("admin_token")
		}
		if !tokensEqual(token, supplied) {
			writeUnauthorized(w, http.StatusForbidden, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CronGuard rejects requests whose cron_token query parameter does not match
// token. Scheduled jobs call their endpoints with this token.
func CronGuard(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tokensEqual(token, r.URL.Query().Get("cron_token")) {
			writeUnauthorized(w, http.StatusUnauthorized, "invalid cron token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tokensEqual(expected, supplied string) bool {
	if expected == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}

func writeUnauthorized(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
