package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/ameropro/stars-api/internal/pkg/response"
)

type contextKey string

const (
	ActingUserKey contextKey = "acting_user"
)

// ActingUserHeader carries the end-user identity forwarded by the bot
// transport. The transport itself is authenticated by the service token;
// end users never talk to this API directly.
const ActingUserHeader = "X-Acting-User"

// AdminChecker answers whether a user belongs to the durable admin set.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// Auth returns middleware that validates the static service token
func Auth(serviceToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(serviceToken)) != 1 {
				response.Unauthorized(w, "Invalid service token")
				return
			}

			// An acting user is optional here; RequireUser gates the
			// routes that cannot work without one.
			ctx := r.Context()
			if raw := r.Header.Get(ActingUserHeader); raw != "" {
				if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
					ctx = context.WithValue(ctx, ActingUserKey, id)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetActingUser extracts the acting end-user ID from context
func GetActingUser(ctx context.Context) int64 {
	if id, ok := ctx.Value(ActingUserKey).(int64); ok {
		return id
	}
	return 0
}

// RequireUser returns middleware that rejects requests without a valid
// acting-user header
func RequireUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetActingUser(r.Context()) == 0 {
				response.Unauthorized(w, "Missing or invalid "+ActingUserHeader+" header")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns middleware that checks the acting user against the
// durable admin set on every request (no in-process admin cache).
func RequireAdmin(admins AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetActingUser(r.Context())
			if userID == 0 {
				response.Unauthorized(w, "Missing or invalid "+ActingUserHeader+" header")
				return
			}

			ok, err := admins.IsAdmin(r.Context(), userID)
			if err != nil {
				response.InternalError(w)
				return
			}
			if !ok {
				response.Forbidden(w, "Admin privileges required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
