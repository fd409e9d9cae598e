package middleware

import (
	"context"
	"net/http"

	"github.com/mockmate/webapp/internal/model/auth"
	"github.com/mockmate/webapp/pkg/utils"
)

// SessionCookie is the browser cookie holding the opaque session ID.
const SessionCookie = "mm_session"

// SessionSource resolves cookie IDs to live provider sessions. Satisfied by
// the auth session store.
type SessionSource interface {
	Get(id string) (auth.Session, bool)
}

type contextKey string

const (
	sessionKey   contextKey = "session"
	sessionIDKey contextKey = "sessionID"
)

// GatePages guards the protected page routes: unauthenticated requests are
// redirected to /login before any protected content renders. This is a
// boundary guard, not a security mechanism; the backend authorizes its own
// calls.
func GatePages(store SessionSource) func(http.Handler) http.Handler {
	return gate(store, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
}

// GateAPI guards the JSON API: unauthenticated requests get a 401 envelope.
func GateAPI(store SessionSource) func(http.Handler) http.Handler {
	return gate(store, func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
	})
}

func gate(store SessionSource, deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				deny(w, r)
				return
			}

			session, ok := store.Get(cookie.Value)
			if !ok {
				deny(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			ctx = context.WithValue(ctx, sessionIDKey, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the gated request's provider session.
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	session, ok := ctx.Value(sessionKey).(auth.Session)
	return session, ok
}

// SessionIDFromContext returns the gated request's cookie session ID.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}
