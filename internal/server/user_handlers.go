package server

import (
	"kritika/internal/middleware"
	"kritika/internal/models"
	"kritika/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// ListUsers handles GET /api/v1/users (admin only)
func (s *Server) ListUsers(c *fiber.Ctx) error {
	if err := s.authorize(c, policy.Users, 0); err != nil {
		return models.RespondAppError(c, err)
	}

	search := c.Query("search")
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	users, err := s.users.List(c.UserContext(), search, limit, offset)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(users)
}

// CreateUser handles POST /api/v1/users (admin only)
func (s *Server) CreateUser(c *fiber.Ctx) error {
	if err := s.authorize(c, policy.Users, 0); err != nil {
		return models.RespondAppError(c, err)
	}

	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Bio       string `json:"bio"`
		Role      string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if err := s.validateNewUser(c, req.Username, req.Email, req.Role); err != nil {
		return models.RespondAppError(c, err)
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	}
	if err := s.users.Create(c.UserContext(), user); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetUser handles GET /api/v1/users/:username (admin only)
func (s *Server) GetUser(c *fiber.Ctx) error {
	if err := s.authorize(c, policy.Users, 0); err != nil {
		return models.RespondAppError(c, err)
	}

	username := c.Params("username")
	user, err := s.users.GetByUsername(c.UserContext(), username)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if user == nil {
		return models.RespondAppError(c, models.NewNotFoundError("User", username))
	}
	return c.JSON(user)
}

// UpdateUser handles PATCH /api/v1/users/:username (admin only)
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	if err := s.authorize(c, policy.Users, 0); err != nil {
		return models.RespondAppError(c, err)
	}

	username := c.Params("username")
	user, err := s.users.GetByUsername(c.UserContext(), username)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if user == nil {
		return models.RespondAppError(c, models.NewNotFoundError("User", username))
	}

	return s.applyUserPatch(c, user, true)
}

// DeleteUser handles DELETE /api/v1/users/:username (admin only)
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	if err := s.authorize(c, policy.Users, 0); err != nil {
		return models.RespondAppError(c, err)
	}

	username := c.Params("username")
	user, err := s.users.GetByUsername(c.UserContext(), username)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if user == nil {
		return models.RespondAppError(c, models.NewNotFoundError("User", username))
	}

	if err := s.users.Delete(c.UserContext(), user.ID); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMyProfile handles GET /api/v1/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if actor == nil {
		return models.RespondAppError(c,
			models.NewUnauthorizedError("Authentication required"))
	}
	return c.JSON(actor)
}

// UpdateMyProfile handles PATCH /api/v1/users/me. The role field is read-only
// through this path: a supplied value is silently ignored.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if actor == nil {
		return models.RespondAppError(c,
			models.NewUnauthorizedError("Authentication required"))
	}
	return s.applyUserPatch(c, actor, false)
}

// applyUserPatch applies the PATCH body to user. allowRole controls whether a
// role change is honored (admin path) or dropped (self-profile path).
func (s *Server) applyUserPatch(c *fiber.Ctx, user *models.User, allowRole bool) error {
	var req struct {
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Bio       *string `json:"bio"`
		Role      *string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	ctx := c.UserContext()

	if req.Username != nil && *req.Username != user.Username {
		if err := models.ValidateUsername(*req.Username); err != nil {
			return models.RespondAppError(c, err)
		}
		taken, err := s.users.UsernameTaken(ctx, *req.Username)
		if err != nil {
			return models.RespondAppError(c, err)
		}
		if taken {
			return models.RespondAppError(c,
				models.NewFieldError("username", "A user with that username already exists"))
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if err := models.ValidateEmail(*req.Email); err != nil {
			return models.RespondAppError(c, err)
		}
		taken, err := s.users.EmailTaken(ctx, *req.Email)
		if err != nil {
			return models.RespondAppError(c, err)
		}
		if taken {
			return models.RespondAppError(c,
				models.NewFieldError("email", "A user with that email address already exists"))
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Role != nil && allowRole {
		if err := models.ValidateRole(*req.Role); err != nil {
			return models.RespondAppError(c, err)
		}
		user.Role = *req.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(user)
}

// validateNewUser runs the shared username/email/role validation for
// admin-created accounts.
func (s *Server) validateNewUser(c *fiber.Ctx, username, email, role string) error {
	if err := models.ValidateUsername(username); err != nil {
		return err
	}
	if err := models.ValidateEmail(email); err != nil {
		return err
	}
	if err := models.ValidateRole(role); err != nil {
		return err
	}

	ctx := c.UserContext()
	taken, err := s.users.UsernameTaken(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return models.NewFieldError("username", "A user with that username already exists")
	}
	taken, err = s.users.EmailTaken(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return models.NewFieldError("email", "A user with that email address already exists")
	}
	return nil
}
