// Package middleware provides authentication, logging and rate limiting
// middleware for the application.
package middleware

import (
	"errors"
	"strings"

	"kritika/internal/auth"
	"kritika/internal/models"
	"kritika/internal/repository"

	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

// Authenticate resolves the bearer token, if any, into the acting user and
// stores it in the request context. Requests without a token proceed as
// anonymous; requests with an invalid token are rejected so clients learn
// their credential is bad before hitting an authorization denial.
func Authenticate(secret string, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Next()
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid authorization header format"))
		}

		userID, err := auth.ParseAccessToken(secret, parts[1])
		if err != nil {
			return models.RespondAppError(c, err)
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token user no longer exists"))
			}
			return models.RespondAppError(c, err)
		}

		c.Locals(actorKey, user)
		c.Locals("userID", user.ID)
		return c.Next()
	}
}

// Actor returns the authenticated user for the request, or nil.
func Actor(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals(actorKey).(*models.User); ok {
		return user
	}
	return nil
}
