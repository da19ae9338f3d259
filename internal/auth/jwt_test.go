package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService("test-secret", "tradekeep", 60)

	token, err := svc.GenerateToken("user-1", "EDITOR", "editor@tradekeep.test")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "EDITOR", claims.Role)
	assert.Equal(t, "editor@tradekeep.test", claims.Email)
	assert.Equal(t, "tradekeep", claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewJWTService("secret-a", "tradekeep", 60)
	other := NewJWTService("secret-b", "tradekeep", 60)

	token, err := svc.GenerateToken("user-1", "EDITOR", "e@t.test")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", "tradekeep", 60)
	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestExtractTokenFromBearer(t *testing.T) {
	assert.Equal(t, "abc123", ExtractTokenFromBearer("Bearer abc123"))
	assert.Equal(t, "abc123", ExtractTokenFromBearer("bearer abc123"))
	assert.Empty(t, ExtractTokenFromBearer("abc123"))
	assert.Empty(t, ExtractTokenFromBearer("Basic abc123"))
	assert.Empty(t, ExtractTokenFromBearer(""))
}
