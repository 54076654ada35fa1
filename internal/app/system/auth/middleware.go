package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dalemusser/flockhub/internal/app/system/apperr"
	"github.com/dalemusser/flockhub/internal/app/system/httpjson"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// RequireAuth returns middleware that rejects requests without a valid
// bearer access token and stores the authenticated user id in the request
// context for handlers downstream.
func RequireAuth(tokens *TokenService, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				httpjson.Error(w, log, apperr.Unauthorized("missing bearer token"))
				return
			}
			userID, err := tokens.VerifyAccessToken(token)
			if err != nil {
				httpjson.Error(w, log, err)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id stored by RequireAuth, or ""
// when the request did not pass through it.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// WithTestUser returns a copy of r authenticated as userID. Test helper
// for exercising handlers without minting tokens.
func WithTestUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}
