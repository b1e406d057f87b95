// Package models содержит доменную модель пользователя сервиса учётных записей,
// его публичное (редактированное) представление и входные данные частичного обновления.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User представляет зарегистрированного пользователя системы.
//
// Пароль хранится и сравнивается в том виде, в котором пришёл от клиента.
type User struct {
	ID        uuid.UUID // Уникальный идентификатор, генерируется базой данных
	Email     string    // Электронная почта (уникальная), используется для входа
	Password  string    // Пароль пользователя
	Name      *string   // Имя, может отсутствовать
	Phone     *string   // Телефон, может отсутствовать
	CreatedAt time.Time // Время создания записи
	UpdatedAt time.Time // Время последнего изменения записи
}

// Profile — представление пользователя без пароля, отдаётся клиенту.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile возвращает редактированное представление пользователя.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ProfileUpdate описывает частичное обновление профиля.
// Поле со значением nil не изменяется.
type ProfileUpdate struct {
	Name  *string
	Phone *string
}

// IsEmpty сообщает, что обновление не затрагивает ни одного поля.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Phone == nil
}
