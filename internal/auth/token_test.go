package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	tm, err := NewTokenManager("")
	assert.Nil(t, tm)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tm, err := NewTokenManager("secret", WithClock(fixedClock(now)))
	require.NoError(t, err)

	token, err := tm.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", token.SubjectID)
	assert.Equal(t, now, token.IssuedAt)
	assert.Equal(t, now.Add(24*time.Hour), token.ExpiresAt)
	assert.NotEmpty(t, token.Value)

	subject, err := tm.Verify(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestTokenManager_IssueRejectsEmptySubject(t *testing.T) {
	tm, err := NewTokenManager("secret")
	require.NoError(t, err)

	_, err = tm.Issue("")
	assert.Error(t, err)
}

func TestTokenManager_VerifyExpired(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	issuer, err := NewTokenManager("secret", WithClock(fixedClock(issued)))
	require.NoError(t, err)
	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	stillValid, err := NewTokenManager("secret", WithClock(fixedClock(issued.Add(24*time.Hour-time.Second))))
	require.NoError(t, err)
	_, err = stillValid.Verify(token.Value)
	assert.NoError(t, err)

	expired, err := NewTokenManager("secret", WithClock(fixedClock(issued.Add(24*time.Hour))))
	require.NoError(t, err)
	_, err = expired.Verify(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_VerifyWrongSecret(t *testing.T) {
	issuer, err := NewTokenManager("secret-a")
	require.NoError(t, err)
	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	verifier, err := NewTokenManager("secret-b")
	require.NoError(t, err)
	_, err = verifier.Verify(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_VerifyRejects(t *testing.T) {
	tm, err := NewTokenManager("secret")
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-1",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":    "not-a-jwt",
		"empty":      "",
		"no expiry":  noExp,
		"no subject": noSubject,
		"other alg":  hs512,
		"alg none":   unsigned,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tm.Verify(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
