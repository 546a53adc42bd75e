package middleware

import (
	"github.com/gofiber/fiber/v2"

	"sbir-marketplace/internal/domain"
)

const (
	PermSubmitListing         = "submit_listing"
	PermRequestChange         = "request_change"
	PermModerateListings      = "moderate_listings"
	PermProcessChangeRequests = "process_change_requests"
	PermViewAuditLogs         = "view_audit_logs"
	PermViewDashboard         = "view_dashboard"
)

var rolePermissions = map[domain.Role]map[string]bool{
	domain.RoleUser: {
		PermSubmitListing: true,
		PermRequestChange: true,
	},
	domain.RoleAdmin: {
		PermSubmitListing:         true,
		PermRequestChange:         true,
		PermModerateListings:      true,
		PermProcessChangeRequests: true,
		PermViewAuditLogs:         true,
		PermViewDashboard:         true,
	},
}

func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile := GetCurrentProfile(c)
		if profile == nil {
			return Unauthorized("User not found")
		}

		for _, role := range roles {
			if profile.Role == role {
				return c.Next()
			}
		}

		return Forbidden("Insufficient permissions for this operation")
	}
}

func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}

func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile := GetCurrentProfile(c)
		if profile == nil {
			return Unauthorized("User not found")
		}

		if !hasPermission(profile.Role, permission) {
			return Forbidden("Insufficient permissions for this operation")
		}

		return c.Next()
	}
}

func hasPermission(role domain.Role, permission string) bool {
	if perms, exists := rolePermissions[role]; exists {
		return perms[permission]
	}
	return false
}

func IsAdmin(c *fiber.Ctx) bool {
	profile := GetCurrentProfile(c)
	return profile != nil && profile.IsAdmin()
}
