// Package signup реализует HTTP-обработчик регистрации пользователя.
//
// При успехе тело ответа — сессионный токен в виде простого текста.
package signup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/lib/validate"
	"github.com/magabrotheeeer/account-service/internal/services/account"
)

// Request — входные данные для регистрации.
type Request struct {
	Email    string  `json:"email" validate:"required,email" example:"a@b.com"`
	Password string  `json:"password" validate:"required,min=6" example:"secret1"`
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1" example:"Alice"`
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	SignUp(ctx context.Context, email, password string, name *string) (string, error)
}

// Handler обрабатывает POST /auth/signup.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создаёт пользователя и возвращает сессионный токен простым текстом.
// @Tags Auth
// @Accept  json
// @Produce plain
// @Param request body Request true "Данные пользователя"
// @Success 200 {string} string "Сессионный токен"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signup"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			log.Error("validator failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Internal server error"))
			return
		}
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	token, err := h.service.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			log.Info("email already taken", slog.String("email", req.Email))
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("User with this email already exists"))
			return
		}
		log.Error("signup failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	}

	log.Info("user signed up", slog.String("email", req.Email))
	render.PlainText(w, r, token)
}
