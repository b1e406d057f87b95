// Package logout реализует HTTP-обработчик выхода.
//
// Сервер не хранит сессий, поэтому выход только подтверждает, что токен валиден.
// Сам токен клиент просто забывает.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/http/response"
)

// Handler обрабатывает POST /auth/logout. Ожидает JWTMiddleware перед собой.
type Handler struct {
	log *slog.Logger
}

// New создает Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Проверяет токен. Состояние на сервере не меняется.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.MessageResponse
// @Failure 401 {object} response.ErrorResponse "Нет заголовка Authorization"
// @Failure 403 {object} response.ErrorResponse "Невалидный токен"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Unauthorized"))
		return
	}

	log.Info("user logged out", slog.String("user_id", id.String()))
	render.JSON(w, r, response.Message("Logged out successfully"))
}
