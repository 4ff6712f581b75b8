package middleware

import "github.com/gofiber/fiber/v2"

const (
	publicCacheControl = "public, s-maxage=60, stale-while-revalidate=300"
	noStore            = "no-store"
)

// PublicCache lets shared caches keep successful anonymous GET responses
// briefly. Everything else, including failed requests and responses built
// for a signed-in user, is marked no-store.
func PublicCache() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		_, signedIn := CurrentUser(c)
		cacheable := err == nil && !signedIn &&
			(c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead) &&
			c.Response().StatusCode() < fiber.StatusBadRequest

		if cacheable {
			c.Set(fiber.HeaderCacheControl, publicCacheControl)
		} else {
			c.Set(fiber.HeaderCacheControl, noStore)
		}
		return err
	}
}

// NoStore marks every response as uncacheable.
func NoStore() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, noStore)
		return c.Next()
	}
}
