// Package jwt выпускает и проверяет подписанные сессионные токены.
//
// Токены подписываются HS256 общим секретом процесса, который передаётся
// в конструктор Maker явно.
package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken — токен повреждён, подделан или подписан другим секретом.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidClaims — подпись верна, но полезная нагрузка не содержит корректного id.
	ErrInvalidClaims = errors.New("invalid token claims")
)

// Maker описывает выпуск и проверку токенов.
type Maker interface {
	Issue(userID uuid.UUID) (string, error)
	Verify(tokenStr string) (*Claims, error)
}

// MakerImpl реализует Maker на секретном ключе HMAC.
type MakerImpl struct {
	secretKey []byte
}

// NewMaker создаёт MakerImpl с указанным секретом.
func NewMaker(secretKey string) *MakerImpl {
	return &MakerImpl{secretKey: []byte(secretKey)}
}

// Issue подписывает {id} пользователя. Для одного id и секрета результат всегда один и тот же.
func (m *MakerImpl) Issue(userID uuid.UUID) (string, error) {
	const op = "jwt.Issue"
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: userID.String()})
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// Verify проверяет подпись токена и возвращает его claims.
func (m *MakerImpl) Verify(tokenStr string) (*Claims, error) {
	const op = "jwt.Verify"
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return m.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}
