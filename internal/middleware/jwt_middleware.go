package middleware

import (
	"context"
	"log"
	"strings"

	"pasar/internal/models"
	"pasar/internal/session"

	"github.com/gofiber/fiber/v2"
)

const sessionKey = "session"

// TokenValidator turns a bearer token into a session.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*session.Session, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		sess, err := validator.ValidateToken(c.UserContext(), parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals(sessionKey, sess)
		return c.Next()
	}
}

// RequireRole rejects sessions of any other role. It must run after AuthRequired.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := CurrentSession(c)
		if sess == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		if sess.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "This action requires a " + strings.ToLower(string(role)) + " account",
			})
		}
		return c.Next()
	}
}

// CurrentSession returns the session stored by AuthRequired, or nil.
func CurrentSession(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(sessionKey).(*session.Session)
	return sess
}

// Guard builds per-route middleware chains so public and protected routes can
// share a path prefix.
type Guard struct {
	auth   fiber.Handler
	user   fiber.Handler
	vendor fiber.Handler
}

// NewGuard creates a Guard validating tokens with validator.
func NewGuard(validator TokenValidator) Guard {
	return Guard{
		auth:   AuthRequired(validator),
		user:   RequireRole(models.RoleUser),
		vendor: RequireRole(models.RoleVendor),
	}
}

// Any requires a session of either role.
func (g Guard) Any(h fiber.Handler) []fiber.Handler { return []fiber.Handler{g.auth, h} }

// User requires a USER session.
func (g Guard) User(h fiber.Handler) []fiber.Handler { return []fiber.Handler{g.auth, g.user, h} }

// Vendor requires a VENDOR session.
func (g Guard) Vendor(h fiber.Handler) []fiber.Handler { return []fiber.Handler{g.auth, g.vendor, h} }
