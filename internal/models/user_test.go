package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_ProfileOmitsPassword(t *testing.T) {
	name := "Alice"
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	u := &User{
		ID:        uuid.New(),
		Email:     "a@b.com",
		Password:  "secret1",
		Name:      &name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	body, err := json.Marshal(u.Profile())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))

	assert.NotContains(t, got, "password")
	assert.Equal(t, u.ID.String(), got["id"])
	assert.Equal(t, "a@b.com", got["email"])
	assert.Equal(t, "Alice", got["name"])
	assert.Contains(t, got, "phone")
	assert.Nil(t, got["phone"])
	assert.Contains(t, got, "createdAt")
	assert.Contains(t, got, "updatedAt")
}

func TestProfileUpdate_IsEmpty(t *testing.T) {
	phone := "555-1234"
	empty := ""

	assert.True(t, ProfileUpdate{}.IsEmpty())
	assert.False(t, ProfileUpdate{Phone: &phone}.IsEmpty())
	assert.False(t, ProfileUpdate{Name: &empty}.IsEmpty())
}
