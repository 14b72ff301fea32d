package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	appErrors "github.com/noah-isme/campus-registrar-api/pkg/errors"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(nil, nil, AuthConfig{
		AdminEmail:        "admin@campus.local",
		AdminPasswordHash: string(hash),
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
	})
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: " Admin@Campus.local ", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.EqualValues(t, 3600, resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@campus.local", claims.Email)
	assert.Equal(t, "campus-registrar-api", claims.Issuer)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@campus.local", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidLogin)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "other@campus.local", Password: "s3cret!"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidLogin)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "x"})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestLoginWithoutConfiguredHash(t *testing.T) {
	svc := NewAuthService(nil, nil, AuthConfig{AdminEmail: "admin@campus.local", AccessTokenSecret: "x"})
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@campus.local", Password: "anything"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidLogin)
}

func TestValidateTokenRejectsForeignAndExpiredTokens(t *testing.T) {
	svc := newAuthFixture(t)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, models.JWTClaims{
		Email:            "admin@campus.local",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := foreign.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(signed)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrUnauthorized.Code))

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@campus.local", Password: "s3cret!"})
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrUnauthorized.Code))

	_, err = svc.ValidateToken("garbage")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrUnauthorized.Code))
}
