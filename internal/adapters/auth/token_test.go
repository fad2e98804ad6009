package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_IssueAndVerify(t *testing.T) {
	j := NewJWT("test-secret")

	token, err := j.Issue("user-123", "u@campus.edu", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "u@campus.edu", claims.Email)

	userID, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestJWT_VerifyRejects(t *testing.T) {
	issued := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	j := NewJWT("test-secret")
	j.now = func() time.Time { return issued }
	valid, err := j.Issue("user-123", "u@campus.edu", time.Hour)
	require.NoError(t, err)
	noSubject, err := j.Issue("", "u@campus.edu", time.Hour)
	require.NoError(t, err)
	otherKey, err := NewJWT("other-secret").Issue("user-123", "u@campus.edu", time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-123"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		now   time.Time
	}{
		{name: "expired", token: valid, now: issued.Add(2 * time.Hour)},
		{name: "other key", token: otherKey, now: issued},
		{name: "no subject", token: noSubject, now: issued},
		{name: "alg none", token: none, now: issued},
		{name: "garbage", token: "not.a.jwt", now: issued},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j.now = func() time.Time { return tt.now }
			_, err := j.Verify(tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
