package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWTSecret = "test-secret"
	return cfg
}

// TestIssueParse_Roundtrip 有效期内 verify(issue(claim)) 必须还原原始身份
func TestIssueParse_Roundtrip(t *testing.T) {
	cfg := testConfig()

	token, err := IssueToken(cfg, "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "a@x.com", claims.Subject)

	// 过期时间约为 7 天后
	ttl := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, (7 * 24 * time.Hour).Seconds(), ttl.Seconds(), 60)
}

func TestParseToken_Expired(t *testing.T) {
	cfg := testConfig()
	cfg.TokenTTL = -time.Hour // 签发即过期

	token, err := IssueToken(cfg, "a@x.com")
	require.NoError(t, err)

	_, err = ParseToken(cfg, token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseToken_WrongSecret(t *testing.T) {
	cfg := testConfig()

	token, err := IssueToken(cfg, "a@x.com")
	require.NoError(t, err)

	other := cfg
	other.JWTSecret = "another-secret"
	_, err = ParseToken(other, token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	cfg := testConfig()

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := ParseToken(cfg, tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := WithIdentity(t.Context(), "a@x.com")
	assert.Equal(t, "a@x.com", GetIdentity(ctx))
	assert.Equal(t, "", GetIdentity(t.Context()))
}
