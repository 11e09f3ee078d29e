// Package middleware provides fiber middleware for token authentication
package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"

	"med-field-force/internal/models"
)

const userKey = "user"

// Caller is the authenticated staff member behind a request
type Caller struct {
	StaffID string
	Role    models.Role
}

// IsManager reports whether the caller has the manager role
func (c Caller) IsManager() bool {
	return c.Role == models.RoleManager
}

// JWT validates the bearer token signed with secret
func JWT(secret []byte) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    secret,
		SigningMethod: "HS256",
		ContextKey:    userKey,
		ErrorHandler:  jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return fiber.NewError(fiber.StatusBadRequest, "Auth token missing")
	}
	return fiber.NewError(fiber.StatusUnauthorized, "Request unauthorized")
}

// CallerFrom reads the staff id and role from the validated token
func CallerFrom(c *fiber.Ctx) (Caller, bool) {
	token, ok := c.Locals(userKey).(*jwt.Token)
	if !ok {
		return Caller{}, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Caller{}, false
	}
	id, _ := claims["id"].(string)
	role, _ := claims["role"].(string)
	if id == "" {
		return Caller{}, false
	}
	return Caller{StaffID: id, Role: models.Role(role)}, true
}

// RequireRole rejects callers whose token does not carry role
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := CallerFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Request unauthorized")
		}
		if caller.Role != role {
			return fiber.NewError(fiber.StatusForbidden, "This action requires the "+string(role)+" role")
		}
		return c.Next()
	}
}
