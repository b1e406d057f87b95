package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/account-service/internal/models"
)

func strPtr(s string) *string { return &s }

func TestStorage_Users(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	t.Run("create user", func(t *testing.T) {
		u, err := s.CreateUser(ctx, "a@b.com", "secret1", nil)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, u.ID)
		assert.Equal(t, "a@b.com", u.Email)
		assert.Equal(t, "secret1", u.Password)
		assert.Nil(t, u.Name)
		assert.Nil(t, u.Phone)
		assert.False(t, u.UpdatedAt.Before(u.CreatedAt))
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := s.CreateUser(ctx, "dup@b.com", "secret1", strPtr("First"))
		require.NoError(t, err)

		_, err = s.CreateUser(ctx, "dup@b.com", "another", nil)
		assert.ErrorIs(t, err, ErrUserExists)
		assert.Equal(t, 1, countUsersByEmail(t, s, "dup@b.com"))
	})

	t.Run("get by credentials", func(t *testing.T) {
		created, err := s.CreateUser(ctx, "cred@b.com", "secret1", strPtr("Cred"))
		require.NoError(t, err)

		got, err := s.GetUserByCredentials(ctx, "cred@b.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		require.NotNil(t, got.Name)
		assert.Equal(t, "Cred", *got.Name)

		_, err = s.GetUserByCredentials(ctx, "cred@b.com", "wrong")
		assert.ErrorIs(t, err, ErrUserNotFound)

		_, err = s.GetUserByCredentials(ctx, "nobody@b.com", "secret1")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("get by id", func(t *testing.T) {
		created, err := s.CreateUser(ctx, "id@b.com", "secret1", nil)
		require.NoError(t, err)

		got, err := s.GetUserByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Email, got.Email)

		_, err = s.GetUserByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("update applies only provided fields", func(t *testing.T) {
		created, err := s.CreateUser(ctx, "patch@b.com", "secret1", strPtr("Patch"))
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		updated, err := s.UpdateUser(ctx, created.ID, models.ProfileUpdate{Phone: strPtr("555-1234")})
		require.NoError(t, err)

		require.NotNil(t, updated.Phone)
		assert.Equal(t, "555-1234", *updated.Phone)
		require.NotNil(t, updated.Name)
		assert.Equal(t, "Patch", *updated.Name)
		assert.Equal(t, created.Email, updated.Email)
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
		assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	})

	t.Run("empty update leaves record unchanged", func(t *testing.T) {
		created, err := s.CreateUser(ctx, "noop@b.com", "secret1", nil)
		require.NoError(t, err)

		got, err := s.UpdateUser(ctx, created.ID, models.ProfileUpdate{})
		require.NoError(t, err)

		assert.Equal(t, created.Name, got.Name)
		assert.Equal(t, created.Phone, got.Phone)
		assert.True(t, got.UpdatedAt.Equal(created.UpdatedAt))
	})

	t.Run("update missing user", func(t *testing.T) {
		_, err := s.UpdateUser(ctx, uuid.New(), models.ProfileUpdate{Name: strPtr("x")})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("delete user", func(t *testing.T) {
		created, err := s.CreateUser(ctx, "del@b.com", "secret1", nil)
		require.NoError(t, err)

		require.NoError(t, s.DeleteUser(ctx, created.ID))
		assert.Equal(t, 0, countUsersByEmail(t, s, "del@b.com"))

		assert.ErrorIs(t, s.DeleteUser(ctx, created.ID), ErrUserNotFound)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := s.GetUserByID(cctx, uuid.New())
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}
