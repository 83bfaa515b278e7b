package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/isdelr/fuego-api/internal/models"
	"github.com/isdelr/fuego-api/internal/store"
)

// UserResolver looks up the account a token claims to belong to.
type UserResolver interface {
	GetUserByID(ctx context.Context, id int64) (models.User, error)
}

type contextKey string

// userKey is the context key for the authenticated user.
const userKey = contextKey("user")

// UserFromContext returns the user bound by JWTMiddleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

// WithUser binds an authenticated user to ctx. JWTMiddleware does this for
// every accepted request; it is exported for tests.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// JWTMiddleware creates a middleware for protecting routes. Requests must carry
// "Authorization: JWT <token>" (Bearer is accepted too) for a user that still
// exists; everything else is rejected with 401 before the store is touched
// where possible.
func JWTMiddleware(codec *TokenCodec, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Authorization")
			logger := hlog.FromRequest(r)

			tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.Debug().Msg("Missing or malformed Authorization header")
				unauthorized(w)
				return
			}

			claims, err := codec.Validate(tokenStr)
			if err != nil {
				logger.Warn().Err(err).Msg("Rejected auth token")
				unauthorized(w)
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if errors.Is(err, store.ErrNotFound) {
				logger.Warn().Int64("user_id", claims.UserID).Msg("Token user no longer exists")
				unauthorized(w)
				return
			} else if err != nil {
				logger.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to resolve token user")
				writeMsg(w, http.StatusPreconditionFailed, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// bearerToken splits "<scheme> <token>" and accepts the JWT and Bearer schemes.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "JWT") && !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeMsg(w, http.StatusUnauthorized, "unauthorized")
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"msg": msg})
}
