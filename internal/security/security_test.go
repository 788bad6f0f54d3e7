package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := "test-access-secret"

	token, err := GenerateAccessToken(secret, "user-1", "sess-1", "dev-1", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAccessToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "sess-1", claims.SessionID)
	require.Equal(t, "dev-1", claims.DeviceID)
	require.Equal(t, "user-1", claims.Subject)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken("secret-a", "user-1", "sess-1", "dev-1", time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "secret-b")
	require.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken("secret", "user-1", "sess-1", "dev-1", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "secret")
	require.Error(t, err)
}

func TestRefreshTokenHash(t *testing.T) {
	token, hash, err := GenerateRefreshToken(64)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Len(t, hash, 32)
	require.Equal(t, hash, HashRefreshToken(token))

	other, _, err := GenerateRefreshToken(64)
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}

func TestPasswordHashing(t *testing.T) {
	// small params keep the test fast; production uses the defaults
	params := Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

	hash, err := HashPasswordWithParams("correct horse battery", params)
	require.NoError(t, err)

	ok, err := VerifyPassword("correct horse battery", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyPasswordMalformed(t *testing.T) {
	_, err := VerifyPassword("pw", []byte("not-a-hash"))
	require.Error(t, err)

	_, err = VerifyPassword("pw", []byte("$bcrypt$v=19$t=1,m=8,p=1$AAAA$BBBB"))
	require.Error(t, err)
}

func TestPasswordHashesAreSalted(t *testing.T) {
	params := Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

	first, err := HashPasswordWithParams("same password", params)
	require.NoError(t, err)
	second, err := HashPasswordWithParams("same password", params)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
