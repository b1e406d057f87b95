// Package response содержит типы и функции для формирования единообразных
// JSON-ответов HTTP-обработчиков: сообщения, ошибки валидации и данные профиля.
package response

import (
	"fmt"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/account-service/internal/models"
)

// MsgValidationFailed — сообщение ответа при ошибке валидации.
const MsgValidationFailed = "Validation failed"

// ErrorResponse — тело ответа с ошибкой.
// Errors заполняется только при ошибках валидации: имя поля -> описание.
type ErrorResponse struct {
	Message string            `json:"message" example:"Unauthorized"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// MessageResponse — тело успешного ответа, содержащее только сообщение.
type MessageResponse struct {
	Message string `json:"message" example:"Logged out successfully"`
}

// ProfileResponse — тело ответа с профилем пользователя.
type ProfileResponse struct {
	Message string          `json:"message,omitempty"`
	User    *models.Profile `json:"user"`
}

// Error возвращает ErrorResponse с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Message: msg}
}

// Message возвращает MessageResponse с переданным сообщением.
func Message(msg string) MessageResponse {
	return MessageResponse{Message: msg}
}

// Profile возвращает ProfileResponse; msg может быть пустым.
func Profile(msg string, p *models.Profile) ProfileResponse {
	return ProfileResponse{Message: msg, User: p}
}

// ValidationError собирает все нарушения в один ответ, по одному сообщению на поле.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	fields := make(map[string]string, len(errs))
	for _, err := range errs {
		if _, ok := fields[err.Field()]; ok {
			continue
		}
		fields[err.Field()] = fieldMessage(err)
	}
	return ErrorResponse{
		Message: MsgValidationFailed,
		Errors:  fields,
	}
}

func fieldMessage(err validator.FieldError) string {
	switch err.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "please enter a valid email address"
	case "min":
		if err.Param() == "1" {
			return fmt.Sprintf("%s cannot be empty", err.Field())
		}
		return fmt.Sprintf("%s must be at least %s characters long", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", err.Field(), err.Param())
	default:
		return fmt.Sprintf("%s is not valid", err.Field())
	}
}
