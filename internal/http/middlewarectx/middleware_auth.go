// Package middlewarectx содержит HTTP middleware проверки сессионного токена.
//
// JWTMiddleware проверяет заголовок Authorization до разбора тела запроса,
// валидирует токен и кладёт идентификатор пользователя в контекст.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/services/account"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// UserID — ключ идентификатора пользователя в контексте.
const UserID Key = "user_id"

const bearerPrefix = "Bearer "

// Authenticator проверяет токен и возвращает идентификатор пользователя.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

// JWTMiddleware возвращает middleware, который пропускает дальше только запросы
// с валидным Bearer-токеном.
//
// Нет заголовка или он не в формате "Bearer <token>" — 401.
// Токен не прошёл проверку — 403.
func JWTMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			tokenStr := strings.TrimPrefix(authHeader, bearerPrefix)
			if !strings.HasPrefix(authHeader, bearerPrefix) || strings.TrimSpace(tokenStr) == "" {
				log.Info("missing or malformed authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("Unauthorized"))
				return
			}

			id, err := auth.Authenticate(r.Context(), tokenStr)
			if err != nil {
				log.Info("token rejected", sl.Err(err))
				msg := "Invalid token"
				if errors.Is(err, account.ErrInvalidTokenPayload) {
					msg = "Invalid token payload"
				}
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error(msg))
				return
			}

			ctx := context.WithValue(r.Context(), UserID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext достаёт идентификатор пользователя, положенный JWTMiddleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
