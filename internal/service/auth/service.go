package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"sbir-marketplace/internal/config"
	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/repository"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrUserNotFound = errors.New("user not found")
)

// Service validates access tokens minted by the hosted identity provider and
// resolves them to local profiles. Sign-up, login and sessions live with the
// provider.
type Service interface {
	ValidateAccessToken(token string) (*Claims, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}

type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ProfileID is the subject claim parsed as a profile id.
func (c *Claims) ProfileID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type service struct {
	profileRepo repository.ProfileRepository
	cfg         *config.Config
}

func NewService(profileRepo repository.ProfileRepository, cfg *config.Config) Service {
	return &service{
		profileRepo: profileRepo,
		cfg:         cfg,
	}
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if _, err := claims.ProfileID(); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrUserNotFound
	}
	return profile, nil
}
