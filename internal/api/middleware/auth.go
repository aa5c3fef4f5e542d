package middleware

import (
	"strings"

	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/models"
	"github.com/colmena-labs/stellardonate/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Auth returns a Fiber middleware for Bearer token authentication. The
// token resolves to a server-side session; resolution also refreshes the
// session's last-activity timestamp.
func Auth(sessions services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			c.Set("WWW-Authenticate", `Bearer realm="Access to protected resource"`)
			return apperrors.Unauthorized("Missing or invalid Bearer token")
		}

		session, err := sessions.Resolve(token)
		if err != nil {
			c.Set("WWW-Authenticate", `Bearer realm="Access to protected resource"`)
			return err
		}

		// Store authenticated identity in context
		c.Locals("session", session)
		c.Locals("user", &session.User)
		return c.Next()
	}
}

// BearerToken extracts the Bearer token from the Authorization header.
func BearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// AuthenticatedUser retrieves the authenticated user from Fiber context.
// Returns nil if no user is found or if user is not of correct type.
func AuthenticatedUser(c *fiber.Ctx) *models.UserProfile {
	userInterface := c.Locals("user")
	if userInterface == nil {
		return nil
	}
	user, ok := userInterface.(*models.UserProfile)
	if !ok {
		return nil
	}
	return user
}
