package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbir-marketplace/internal/config"
	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/mocks"
	"sbir-marketplace/internal/service/auth"
)

const secret = "test-signing-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestValidateAccessToken(t *testing.T) {
	svc := auth.NewService(new(mocks.ProfileRepository), &config.Config{JWTSecret: secret})
	profileID := uuid.New()

	t.Run("Valid token", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(secret), auth.Claims{
			Email: "admin@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   profileID.String(),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		claims, err := svc.ValidateAccessToken(token)

		require.NoError(t, err)
		id, err := claims.ProfileID()
		require.NoError(t, err)
		assert.Equal(t, profileID, id)
		assert.Equal(t, "admin@example.com", claims.Email)
	})

	tests := []struct {
		name   string
		method jwt.SigningMethod
		key    interface{}
		claims jwt.RegisteredClaims
	}{
		{
			name:   "Expired",
			method: jwt.SigningMethodHS256,
			key:    []byte(secret),
			claims: jwt.RegisteredClaims{Subject: profileID.String(), ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
		},
		{
			name:   "Missing expiry",
			method: jwt.SigningMethodHS256,
			key:    []byte(secret),
			claims: jwt.RegisteredClaims{Subject: profileID.String()},
		},
		{
			name:   "Wrong secret",
			method: jwt.SigningMethodHS256,
			key:    []byte("other"),
			claims: jwt.RegisteredClaims{Subject: profileID.String(), ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		},
		{
			name:   "Other algorithm",
			method: jwt.SigningMethodHS512,
			key:    []byte(secret),
			claims: jwt.RegisteredClaims{Subject: profileID.String(), ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		},
		{
			name:   "Subject not a uuid",
			method: jwt.SigningMethodHS256,
			key:    []byte(secret),
			claims: jwt.RegisteredClaims{Subject: "service-account", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := sign(t, tt.method, tt.key, tt.claims)

			claims, err := svc.ValidateAccessToken(token)

			assert.ErrorIs(t, err, auth.ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.ProfileRepository)
	svc := auth.NewService(repo, &config.Config{JWTSecret: secret})

	known := &domain.Profile{ID: uuid.New(), Email: "a@example.com", Role: domain.RoleAdmin}
	unknown := uuid.New()
	repo.On("GetByID", ctx, known.ID).Return(known, nil).Once()
	repo.On("GetByID", ctx, unknown).Return(nil, nil).Once()

	profile, err := svc.GetProfile(ctx, known.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsAdmin())

	_, err = svc.GetProfile(ctx, unknown)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
