package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/service/auth"
)

const (
	ProfileContextKey   = "profile"
	ProfileIDContextKey = "profile_id"
)

func AuthRequired(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"code":    "UNAUTHORIZED",
				"message": "Missing authorization header",
			})
		}

		profile, ok := authenticate(c, authService, authHeader)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"code":    "UNAUTHORIZED",
				"message": "Invalid or expired token",
			})
		}

		setProfile(c, profile)
		return c.Next()
	}
}

// OptionalAuth resolves the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authHeader := c.Get("Authorization"); authHeader != "" {
			if profile, ok := authenticate(c, authService, authHeader); ok {
				setProfile(c, profile)
			}
		}
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, authService auth.Service, authHeader string) (*domain.Profile, bool) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := authService.ValidateAccessToken(parts[1])
	if err != nil {
		return nil, false
	}

	profileID, err := claims.ProfileID()
	if err != nil {
		return nil, false
	}

	profile, err := authService.GetProfile(c.UserContext(), profileID)
	if err != nil || profile == nil {
		return nil, false
	}
	return profile, true
}

func setProfile(c *fiber.Ctx, profile *domain.Profile) {
	c.Locals(ProfileContextKey, profile)
	c.Locals(ProfileIDContextKey, profile.ID)
}

func GetCurrentProfile(c *fiber.Ctx) *domain.Profile {
	profile, ok := c.Locals(ProfileContextKey).(*domain.Profile)
	if !ok {
		return nil
	}
	return profile
}

func GetCurrentProfileID(c *fiber.Ctx) uuid.UUID {
	profileID, ok := c.Locals(ProfileIDContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return profileID
}

// GetCurrentActor returns the caller as an explicit actor, or nil for
// anonymous requests.
func GetCurrentActor(c *fiber.Ctx) *domain.Actor {
	profile := GetCurrentProfile(c)
	if profile == nil {
		return nil
	}
	actor := profile.Actor()
	return &actor
}
