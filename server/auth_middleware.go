package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/kogase-admin/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the signed-in operator
const ContextKeyUser ContextKey = "user"

// RequireAuth rejects requests while no operator is signed in. The cached
// identity is put in the request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, ok := s.services.Auth.CurrentUser()
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Authentication required"})
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next(w, r.WithContext(ctx))
		}
	}
}

// UserFromContext returns the operator stored by RequireAuth.
func UserFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*users.User)
	return user, ok
}
