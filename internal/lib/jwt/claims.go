package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims — полезная нагрузка сессионного токена.
//
// Токен несёт только идентификатор пользователя: exp, iat, aud не выставляются,
// поэтому встроенные RegisteredClaims при сериализации пусты.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// UserID декодирует идентификатор пользователя из claims.
func (c *Claims) UserID() (uuid.UUID, error) {
	const op = "jwt.Claims.UserID"
	if c.ID == "" {
		return uuid.Nil, fmt.Errorf("%s: %w: missing id", op, ErrInvalidClaims)
	}
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidClaims, err)
	}
	return id, nil
}
