// Package account содержит бизнес-логику сервиса учётных записей:
// регистрацию, вход, проверку сессионного токена и работу с профилем.
//
// Каждая операция — одна проверка и одно обращение к хранилищу.
// Кэш профилей и публикация событий выполняются по принципу best effort:
// их ошибки логируются и не меняют результат операции.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/account-service/internal/events"
	"github.com/magabrotheeeer/account-service/internal/lib/jwt"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
	"github.com/magabrotheeeer/account-service/internal/storage"
)

var (
	// ErrEmailTaken — email уже занят другим пользователем.
	ErrEmailTaken = errors.New("email already taken")
	// ErrInvalidCredentials — пара email/пароль не найдена.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken — токен не прошёл проверку подписи.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidTokenPayload — подпись верна, но в токене нет корректного id.
	ErrInvalidTokenPayload = errors.New("invalid token payload")
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository описывает контракт хранилища пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, email, password string, name *string) (*models.User, error)
	GetUserByCredentials(ctx context.Context, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// ProfileCache описывает кэш редактированных профилей.
//
// GetProfile с found == true и nil-профилем означает, что пользователь удалён.
// SetProfile не должен перетирать более свежую версию профиля (по UpdatedAt)
// и пометку об удалении.
type ProfileCache interface {
	GetProfile(ctx context.Context, id uuid.UUID) (p *models.Profile, found bool, err error)
	SetProfile(ctx context.Context, p *models.Profile) error
	MarkProfileDeleted(ctx context.Context, id uuid.UUID) error
}

// Service реализует операции над учётными записями.
type Service struct {
	users     UserRepository
	tokens    jwt.Maker
	cache     ProfileCache
	publisher events.Publisher
	log       *slog.Logger
}

// NewService создаёт Service. cache и publisher обязательны; для отключения
// используйте cache.Noop и events.Noop.
func NewService(users UserRepository, tokens jwt.Maker, cache ProfileCache, publisher events.Publisher, log *slog.Logger) *Service {
	return &Service{
		users:     users,
		tokens:    tokens,
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

// SignUp создаёт пользователя и возвращает сессионный токен.
func (s *Service) SignUp(ctx context.Context, email, password string, name *string) (string, error) {
	const op = "account.SignUp"

	user, err := s.users.CreateUser(ctx, email, password, name)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, events.New(events.TypeSignedUp, user.ID, user.Email))
	return token, nil
}

// SignIn ищет пользователя по точному совпадению email и пароля и выпускает токен.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, error) {
	const op = "account.SignIn"

	user, err := s.users.GetUserByCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Authenticate проверяет токен и возвращает идентификатор пользователя из него.
func (s *Service) Authenticate(_ context.Context, token string) (uuid.UUID, error) {
	const op = "account.Authenticate"

	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, jwt.ErrInvalidClaims) {
			return uuid.Nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidTokenPayload, err)
		}
		return uuid.Nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}

	id, err := claims.UserID()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidTokenPayload, err)
	}
	return id, nil
}

// Profile возвращает профиль пользователя без пароля.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	const op = "account.Profile"

	if p, found, err := s.cache.GetProfile(ctx, id); err != nil {
		s.log.Warn("profile cache read failed", slog.String("op", op), sl.Err(err))
	} else if found {
		if p == nil {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return p, nil
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := user.Profile()
	s.storeProfile(ctx, op, p)
	return p, nil
}

// UpdateProfile применяет к профилю только переданные поля.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Profile, error) {
	const op = "account.UpdateProfile"

	user, err := s.users.UpdateUser(ctx, id, upd)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := user.Profile()
	if !upd.IsEmpty() {
		s.storeProfile(ctx, op, p)
		s.publish(ctx, events.New(events.TypeUpdated, user.ID, user.Email))
	}
	return p, nil
}

// DeleteProfile удаляет учётную запись пользователя.
func (s *Service) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	const op = "account.DeleteProfile"

	if err := s.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.MarkProfileDeleted(ctx, id); err != nil {
		s.log.Warn("profile cache delete mark failed", slog.String("op", op), sl.Err(err))
	}
	s.publish(ctx, events.New(events.TypeDeleted, id, ""))
	return nil
}

// storeProfile кладёт профиль в кэш. Устаревшую версию кэш отбрасывает сам.
func (s *Service) storeProfile(ctx context.Context, op string, p *models.Profile) {
	if err := s.cache.SetProfile(ctx, p); err != nil {
		s.log.Warn("profile cache write failed", slog.String("op", op), sl.Err(err))
	}
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Warn("failed to publish account event",
			slog.String("type", e.Type),
			slog.String("user_id", e.UserID.String()),
			sl.Err(err),
		)
	}
}
