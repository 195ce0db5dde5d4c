package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cardledger/backend/internal/services"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenParser resolves a session token to its owner
type TokenParser interface {
	ParseToken(ctx context.Context, token string) (int64, error)
}

// Auth rejects requests without a valid session. The token is taken from
// the Authorization header first, then from the session cookie.
func Auth(parser TokenParser, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, cookieName)
			if token == "" {
				services.SendErrorResponse(w, services.ErrLoginRequired.Error(), http.StatusUnauthorized, nil)
				return
			}

			userID, err := parser.ParseToken(r.Context(), token)
			if err != nil {
				services.SendErrorResponse(w, services.ErrLoginRequired.Error(), http.StatusUnauthorized, nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// TokenFromRequest extracts a bearer token or, failing that, the cookie value
func TokenFromRequest(r *http.Request, cookieName string) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok && userID > 0
}
