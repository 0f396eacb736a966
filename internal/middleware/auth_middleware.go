package middleware

import (
	"encoding/base64"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"catalog/internal/services"
)

// AuthRequired guards write endpoints. It accepts HTTP Basic credentials
// for the admin account, or a Bearer token obtained from the login
// endpoint. Reads on the catalog stay public and never pass through here.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			c.Set("WWW-Authenticate", `Basic realm="catalog"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Basic <credentials>' or 'Bearer <token>'",
			})
		}

		switch parts[0] {
		case "Basic":
			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid basic auth encoding",
				})
			}
			username, password, ok := strings.Cut(string(decoded), ":")
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid basic auth credentials",
				})
			}
			if err := authService.Authenticate(username, password); err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid credentials",
				})
			}
			c.Locals("username", username)

		case "Bearer":
			claims, err := authService.ValidateToken(parts[1])
			if err != nil {
				log.Printf("JWT validation failed: %v", err)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid or expired token",
				})
			}
			c.Locals("username", claims["username"])

		default:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unsupported authorization scheme",
			})
		}

		return c.Next()
	}
}
