package server

import (
	"kritika/internal/models"
	"kritika/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// ListCategories handles GET /api/v1/categories (public)
func (s *Server) ListCategories(c *fiber.Ctx) error {
	search := c.Query("name", c.Query("search"))
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	categories, err := s.categories.List(c.UserContext(), search, limit, offset)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(categories)
}

// CreateCategory handles POST /api/v1/categories (admin only)
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	if err := s.authorize(c, policy.Catalog, 0); err != nil {
		return models.RespondAppError(c, err)
	}

	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondAppError(c, models.NewFieldError("name", "Name is required"))
	}
	if err := models.ValidateSlug(req.Slug); err != nil {
		return models.RespondAppError(c, err)
	}

	existing, err := s.categories.GetBySlug(c.UserContext(), req.Slug)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if existing != nil {
		return models.RespondAppError(c,
			models.NewFieldError("slug", "A category with that slug already exists"))
	}

	category := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := s.categories.Create(c.UserContext(), category); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// DeleteCategory handles DELETE /api/v1/categories/:slug (admin only).
// Titles referencing the category survive with a nulled reference.
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	if err := s.authorize(c, policy.Catalog, 0); err != nil {
		return models.RespondAppError(c, err)
	}

	if err := s.categories.DeleteBySlug(c.UserContext(), c.Params("slug")); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListGenres handles GET /api/v1/genres (public)
func (s *Server) ListGenres(c *fiber.Ctx) error {
	search := c.Query("name", c.Query("search"))
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	genres, err := s.genres.List(c.UserContext(), search, limit, offset)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(genres)
}

// CreateGenre handles POST /api/v1/genres (admin only)
func (s *Server) CreateGenre(c *fiber.Ctx) error {
	if err := s.authorize(c, policy.Catalog, 0); err != nil {
		return models.RespondAppError(c, err)
	}

	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondAppError(c, models.NewFieldError("name", "Name is required"))
	}
	if err := models.ValidateSlug(req.Slug); err != nil {
		return models.RespondAppError(c, err)
	}

	existing, err := s.genres.GetBySlug(c.UserContext(), req.Slug)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if existing != nil {
		return models.RespondAppError(c,
			models.NewFieldError("slug", "A genre with that slug already exists"))
	}

	genre := &models.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.genres.Create(c.UserContext(), genre); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(genre)
}

// DeleteGenre handles DELETE /api/v1/genres/:slug (admin only)
func (s *Server) DeleteGenre(c *fiber.Ctx) error {
	if err := s.authorize(c, policy.Catalog, 0); err != nil {
		return models.RespondAppError(c, err)
	}

	if err := s.genres.DeleteBySlug(c.UserContext(), c.Params("slug")); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
