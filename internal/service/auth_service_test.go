package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/acadlab/timetable-api/internal/models"
	appErrors "github.com/acadlab/timetable-api/pkg/errors"
)

func newAuthServiceForTest(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(nil, zap.NewNop(), AuthConfig{
		JWTSecret:         "test_secret",
		TokenExpiration:   time.Hour,
		AdminEmail:        "admin@example.com",
		AdminPasswordHash: string(hash),
	})
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newAuthServiceForTest(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.Equal(t, int64(3600), res.ExpiresIn)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", claims.Email)
	require.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newAuthServiceForTest(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	require.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := newAuthServiceForTest(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "intruder@example.com",
		Password: "s3cret",
	})
	require.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginValidatesPayload(t *testing.T) {
	svc := newAuthServiceForTest(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "s3cret"})
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthServiceForTest(t)

	_, err := svc.ValidateToken("not.a.token")
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	svc := newAuthServiceForTest(t)
	other := NewAuthService(nil, zap.NewNop(), AuthConfig{
		JWTSecret:         "other_secret",
		TokenExpiration:   time.Hour,
		AdminEmail:        "admin@example.com",
		AdminPasswordHash: svc.cfg.AdminPasswordHash,
	})

	res, err := other.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.AccessToken)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
