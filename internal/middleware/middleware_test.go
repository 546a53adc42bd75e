package middleware_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/middleware"
	"sbir-marketplace/internal/mocks"
	"sbir-marketplace/internal/service/auth"
)

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.NewErrorHandler(zerolog.Nop())})
	app.Use(middleware.CorrelationID())
	return app
}

func withProfile(profile *domain.Profile) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if profile != nil {
			c.Locals(middleware.ProfileContextKey, profile)
			c.Locals(middleware.ProfileIDContextKey, profile.ID)
		}
		return c.Next()
	}
}

func decode(t *testing.T, resp *http.Response) middleware.ErrorResponse {
	t.Helper()
	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		profile *domain.Profile
		want    int
	}{
		{name: "admin", profile: &domain.Profile{ID: uuid.New(), Role: domain.RoleAdmin}, want: fiber.StatusOK},
		{name: "user", profile: &domain.Profile{ID: uuid.New(), Role: domain.RoleUser}, want: fiber.StatusForbidden},
		{name: "anonymous", want: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Get("/admin", withProfile(tt.profile), middleware.RequireAdmin(), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRequirePermission(t *testing.T) {
	app := newApp()
	user := &domain.Profile{ID: uuid.New(), Role: domain.RoleUser}
	app.Post("/listings", withProfile(user), middleware.RequirePermission(middleware.PermSubmitListing), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	app.Get("/audit", withProfile(user), middleware.RequirePermission(middleware.PermViewAuditLogs), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/listings", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/audit", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	profile := &domain.Profile{ID: uuid.New(), Email: "admin@example.com", Role: domain.RoleAdmin}

	authSvc := new(mocks.AuthService)
	authSvc.On("ValidateAccessToken", "good").Return(&auth.Claims{}, nil).Maybe()
	authSvc.On("ValidateAccessToken", "bad").Return(nil, auth.ErrInvalidToken).Maybe()

	app := newApp()
	app.Get("/me", middleware.AuthRequired(authSvc), func(c *fiber.Ctx) error {
		actor := middleware.GetCurrentActor(c)
		return c.JSON(fiber.Map{"id": actor.ID, "admin": actor.IsAdmin()})
	})

	t.Run("Missing header", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer bad")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Valid token", func(t *testing.T) {
		subjectApp := newApp()
		svc := new(mocks.AuthService)
		claims := &auth.Claims{}
		claims.Subject = profile.ID.String()
		svc.On("ValidateAccessToken", "good").Return(claims, nil).Once()
		svc.On("GetProfile", mock.Anything, profile.ID).Return(profile, nil).Once()
		subjectApp.Get("/me", middleware.AuthRequired(svc), func(c *fiber.Ctx) error {
			actor := middleware.GetCurrentActor(c)
			return c.JSON(fiber.Map{"id": actor.ID, "admin": actor.IsAdmin()})
		})

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")

		resp, err := subjectApp.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			ID    uuid.UUID `json:"id"`
			Admin bool      `json:"admin"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, profile.ID, body.ID)
		assert.True(t, body.Admin)
		svc.AssertExpectations(t)
	})
}

func TestErrorHandler(t *testing.T) {
	type sample struct {
		Reason string `validate:"required"`
	}
	validationErr := validator.New().Struct(sample{})

	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		contains string
	}{
		{name: "listing not found", err: domain.ErrListingNotFound, status: 404, code: "NOT_FOUND"},
		{name: "processed", err: domain.ErrChangeRequestProcessed, status: 409, code: "CONFLICT"},
		{name: "forbidden", err: domain.ErrForbidden, status: 403, code: "FORBIDDEN"},
		{name: "unknown field", err: fmt.Errorf("%w: budget", domain.ErrInvalidField), status: 422, code: "VALIDATION_ERROR", contains: "budget"},
		{name: "validator", err: validationErr, status: 422, code: "VALIDATION_ERROR", contains: "reason failed required"},
		{name: "audit write", err: fmt.Errorf("%w: timeout", domain.ErrAuditWrite), status: 500, code: "INTERNAL_ERROR", contains: "not applied"},
		{name: "fiber error", err: fiber.NewError(fiber.StatusBadRequest, "Invalid request body"), status: 400, code: "BAD_REQUEST"},
		{name: "unmapped", err: errors.New("pq: connection refused"), status: 500, code: "INTERNAL_ERROR", contains: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Correlation-ID", "trace-123")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode(t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, "trace-123", body.TraceID)
			if tt.contains != "" {
				assert.Contains(t, body.Message, tt.contains)
			}
			assert.NotContains(t, body.Message, "pq:")
		})
	}
}
