package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/carlosalbertovr/intratime-killer/auth"
	"github.com/carlosalbertovr/intratime-killer/store"
)

type contextKey string

const SessionContextKey contextKey = "session"

// Session is the per-request authenticated state injected into the
// context: who the user is, their vendor token and the cached quota.
type Session struct {
	UserID      string
	Username    string
	VendorToken string
	WeeklyQuota float64
}

// AuthMiddleware validates API tokens and injects the session into the
// request context. The cached profile supplies the latest quota; a
// missing profile falls back to the default 40h week.
func AuthMiddleware(sessions *auth.SessionManager, st *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			token, err := auth.ExtractToken(authHeader)
			if err != nil {
				writeError(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := sessions.ValidateToken(token)
			if err != nil {
				writeError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			session := &Session{
				UserID:      claims.UserID,
				Username:    claims.Username,
				VendorToken: claims.VendorToken,
				WeeklyQuota: 40,
			}
			if profile, err := st.GetProfile(claims.UserID); err == nil {
				session.WeeklyQuota = profile.WeeklyQuota
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionFromContext retrieves the session from the request context.
func GetSessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(SessionContextKey).(*Session)
	return session, ok
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
