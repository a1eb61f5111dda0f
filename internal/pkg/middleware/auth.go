package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"rendsocial/internal/pkg/env"
	"rendsocial/internal/pkg/security"
	"rendsocial/internal/pkg/usercontext"
)

// JWTAuthMiddleware authenticates requests carrying a bearer session token.
func JWTAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing bearer token"})
		}

		secret := env.GetEnv("JWT_SECRET", "")
		claims, err := security.VerifySessionToken(token, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid or expired token"})
		}

		usercontext.SetUserContext(c, usercontext.UserContext{
			UserID:     claims.UserID,
			Username:   claims.Username,
			IsLoggedIn: true,
		})
		c.Locals(usercontext.KeyUserID, claims.UserID)
		c.Locals(usercontext.KeyUsername, claims.Username)

		return c.Next()
	}
}

// OptionalJWTAuthMiddleware populates the user context when a valid token is
// present but lets anonymous requests through.
func OptionalJWTAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token != "" {
			secret := env.GetEnv("JWT_SECRET", "")
			if claims, err := security.VerifySessionToken(token, secret); err == nil {
				usercontext.SetUserContext(c, usercontext.UserContext{
					UserID:     claims.UserID,
					Username:   claims.Username,
					IsLoggedIn: true,
				})
				c.Locals(usercontext.KeyUserID, claims.UserID)
				c.Locals(usercontext.KeyUsername, claims.Username)
			}
		}
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
