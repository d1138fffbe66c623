package server

import (
	"fmt"
	"log"

	"kritika/internal/auth"
	"kritika/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/v1/auth/signup. Repeating a signup with the exact
// same (username, email) pair resends the confirmation code instead of
// failing, so interrupted registrations can be retried.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	ctx := c.UserContext()

	existing, err := s.users.GetBySignupPair(ctx, req.Username, req.Email)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if existing != nil {
		s.sendConfirmationCode(existing)
		return c.JSON(req)
	}

	if err := models.ValidateUsername(req.Username); err != nil {
		return models.RespondAppError(c, err)
	}
	if err := models.ValidateEmail(req.Email); err != nil {
		return models.RespondAppError(c, err)
	}

	taken, err := s.users.UsernameTaken(ctx, req.Username)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if taken {
		return models.RespondAppError(c,
			models.NewFieldError("username", "A user with that username already exists"))
	}

	taken, err = s.users.EmailTaken(ctx, req.Email)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if taken {
		return models.RespondAppError(c,
			models.NewFieldError("email", "A user with that email address already exists"))
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return models.RespondAppError(c, err)
	}

	s.sendConfirmationCode(user)
	return c.JSON(req)
}

// Token handles POST /api/v1/auth/token, exchanging a confirmation code for a
// bearer token.
func (s *Server) Token(c *fiber.Ctx) error {
	var req struct {
		Username         string `json:"username"`
		ConfirmationCode string `json:"confirmation_code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" {
		return models.RespondAppError(c,
			models.NewFieldError("username", "Username is required"))
	}

	user, err := s.users.GetByUsername(c.UserContext(), req.Username)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if user == nil {
		return models.RespondAppError(c,
			models.NewNotFoundError("User", req.Username))
	}

	if !auth.CheckConfirmationCode(s.config.JWTSecret, user, req.ConfirmationCode) {
		return models.RespondAppError(c, models.NewInvalidTokenError())
	}

	token, err := auth.NewAccessToken(s.config.JWTSecret, user)
	if err != nil {
		return models.RespondAppError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"token": token})
}

// sendConfirmationCode delivers the user's current confirmation code. Mail
// failures are logged, not surfaced: the code can always be re-requested by
// repeating the signup.
func (s *Server) sendConfirmationCode(user *models.User) {
	code := auth.ConfirmationCode(s.config.JWTSecret, user)
	body := fmt.Sprintf(
		"To confirm user %s registration please use %s code.",
		user.Username, code,
	)
	subject := s.config.EmailSubject
	if subject == "" {
		subject = "Registration confirmation"
	}
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		log.Printf("failed to send confirmation code to %s: %v", user.Email, err)
	}
}
