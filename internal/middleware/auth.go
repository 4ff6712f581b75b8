package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gemmarket/internal/models"
)

const userContextKey = "currentUser"

// SessionResolver turns a session token into its user.
type SessionResolver interface {
	Session(ctx context.Context, token string) (*models.User, error)
}

// TokenFromRequest reads the session token from the Authorization header,
// falling back to the session cookie.
func TokenFromRequest(c *fiber.Ctx, cookieName string) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(cookieName)
}

// Session loads the user behind the request's token, if any, into context.
// Requests without a valid session continue anonymously.
func Session(resolver SessionResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c, cookieName)
		if token == "" {
			return c.Next()
		}

		user, err := resolver.Session(c.UserContext(), token)
		if err == nil && user != nil {
			c.Locals(userContextKey, user)
		}
		return c.Next()
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		return c.Next()
	}
}

// AdminGate guards the back office. Anonymous visitors are sent to the
// login page and signed-in non-admins to the home page.
func AdminGate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.Redirect("/login", fiber.StatusFound)
		}
		if !user.IsAdmin() {
			return c.Redirect("/", fiber.StatusFound)
		}
		return c.Next()
	}
}

// CurrentUser returns the session user stored by Session.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(userContextKey).(*models.User)
	return user, ok && user != nil
}
