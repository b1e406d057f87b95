package jwt

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_IssueAndVerify(t *testing.T) {
	maker := NewMaker("test_secret_key_1234567890")

	for range 5 {
		id := uuid.New()

		token, err := maker.Issue(id)
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := maker.Verify(token)
		require.NoError(t, err)

		got, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestMaker_IssueIsDeterministic(t *testing.T) {
	maker := NewMaker("secret")
	id := uuid.New()

	first, err := maker.Issue(id)
	require.NoError(t, err)
	second, err := maker.Issue(id)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMaker_PayloadCarriesOnlyID(t *testing.T) {
	maker := NewMaker("secret")
	id := uuid.New()

	token, err := maker.Issue(id)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, map[string]any{"id": id.String()}, payload)
}

func TestMaker_Verify_InvalidTokens(t *testing.T) {
	maker := NewMaker("test_secret_key_1234567890")

	validToken, err := maker.Issue(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty token", token: "", wantErr: ErrInvalidToken},
		{name: "malformed token", token: "invalid.token.here", wantErr: ErrInvalidToken},
		{name: "tampered token", token: validToken + "tampered", wantErr: ErrInvalidToken},
		{name: "wrong secret key", token: issueWith(t, "wrong_secret_key", jwt.SigningMethodHS256, Claims{ID: uuid.NewString()}), wantErr: ErrInvalidToken},
		{name: "unexpected algorithm", token: issueWith(t, "test_secret_key_1234567890", jwt.SigningMethodHS512, Claims{ID: uuid.NewString()}), wantErr: ErrInvalidToken},
		{name: "missing id", token: issueWith(t, "test_secret_key_1234567890", jwt.SigningMethodHS256, Claims{}), wantErr: ErrInvalidClaims},
		{name: "id is not uuid", token: issueWith(t, "test_secret_key_1234567890", jwt.SigningMethodHS256, Claims{ID: "42"}), wantErr: ErrInvalidClaims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.Verify(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}

func TestMaker_DifferentSecretKeys(t *testing.T) {
	maker1 := NewMaker("first_secret_key")
	maker2 := NewMaker("different_secret_key")

	token, err := maker1.Issue(uuid.New())
	require.NoError(t, err)

	claims, err := maker2.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)

	claims, err = maker1.Verify(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
}

func issueWith(t *testing.T, secret string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}
