package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"sales_system/internal/app/service"
	"sales_system/internal/common"
	"sales_system/internal/common/security"
	"sales_system/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const SessionCtxKey contextKey = "session"

// Authenticator resolves the token's session against the store, so a
// destroyed session rejects even an otherwise valid token.
func Authenticator(sessions service.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context()) // Extracts token from Authorization header

			if err != nil {
				if strings.Contains(err.Error(), "token not found") || token == nil {
					common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				} else {
					common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				}
				return
			}

			if token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			sessionID, err := security.GetSessionIDFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims")
				return
			}

			sess, err := sessions.Get(r.Context(), sessionID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					common.RespondWithError(w, http.StatusUnauthorized, "Session expired or revoked")
				} else {
					common.RespondWithError(w, http.StatusInternalServerError, "Session lookup failed")
				}
				return
			}

			ctx := context.WithValue(r.Context(), SessionCtxKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission gates a route on the access table for the session role.
func RequirePermission(access *service.AccessService, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := SessionFromContext(r.Context())
			if !access.HasPermission(sess, permission) {
				common.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireModule gates a route on the module table for the session role.
func RequireModule(access *service.AccessService, module string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := SessionFromContext(r.Context())
			if !access.CanAccessModule(sess, module) {
				common.RespondWithError(w, http.StatusForbidden, "Module access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext returns the authenticated session, if any.
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	sess, ok := ctx.Value(SessionCtxKey).(*model.Session)
	return sess, ok
}
