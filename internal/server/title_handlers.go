package server

import (
	"kritika/internal/models"
	"kritika/internal/policy"
	"kritika/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// ListTitles handles GET /api/v1/titles (public), with query filters name,
// year, category (slug) and genre (slug).
func (s *Server) ListTitles(c *fiber.Ctx) error {
	filter := repository.TitleFilter{
		Name:     c.Query("name"),
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
	}
	if c.Query("year") != "" {
		year := c.QueryInt("year")
		filter.Year = &year
	}
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	titles, err := s.titles.List(c.UserContext(), filter, limit, offset)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(titles)
}

// GetTitle handles GET /api/v1/titles/:id (public)
func (s *Server) GetTitle(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondAppError(c, models.NewValidationError("Invalid title ID"))
	}

	title, err := s.titles.GetByID(c.UserContext(), uint(id))
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(title)
}

// CreateTitle handles POST /api/v1/titles (admin only)
func (s *Server) CreateTitle(c *fiber.Ctx) error {
	if err := s.authorize(c, policy.Catalog, 0); err != nil {
		return models.RespondAppError(c, err)
	}

	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Year        int      `json:"year"`
		Category    string   `json:"category"`
		Genre       []string `json:"genre"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondAppError(c, models.NewFieldError("name", "Name is required"))
	}
	if err := models.ValidateTitleYear(req.Year); err != nil {
		return models.RespondAppError(c, err)
	}

	ctx := c.UserContext()

	title := &models.Title{
		Name:        req.Name,
		Description: req.Description,
		Year:        req.Year,
	}

	if req.Category != "" {
		category, err := s.categories.GetBySlug(ctx, req.Category)
		if err != nil {
			return models.RespondAppError(c, err)
		}
		if category == nil {
			return models.RespondAppError(c,
				models.NewFieldError("category", "Unknown category slug"))
		}
		title.CategoryID = &category.ID
	}

	genres, appErr := s.resolveGenres(c, req.Genre)
	if appErr != nil {
		return models.RespondAppError(c, appErr)
	}
	title.Genres = genres

	if err := s.titles.Create(ctx, title); err != nil {
		return models.RespondAppError(c, err)
	}

	created, err := s.titles.GetByID(ctx, title.ID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateTitle handles PATCH /api/v1/titles/:id (admin only)
func (s *Server) UpdateTitle(c *fiber.Ctx) error {
	if err := s.authorize(c, policy.Catalog, 0); err != nil {
		return models.RespondAppError(c, err)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondAppError(c, models.NewValidationError("Invalid title ID"))
	}

	ctx := c.UserContext()
	title, err := s.titles.GetByID(ctx, uint(id))
	if err != nil {
		return models.RespondAppError(c, err)
	}

	var req struct {
		Name        *string   `json:"name"`
		Description *string   `json:"description"`
		Year        *int      `json:"year"`
		Category    *string   `json:"category"`
		Genre       *[]string `json:"genre"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	if req.Name != nil {
		if *req.Name == "" {
			return models.RespondAppError(c, models.NewFieldError("name", "Name is required"))
		}
		title.Name = *req.Name
	}
	if req.Description != nil {
		title.Description = *req.Description
	}
	if req.Year != nil {
		if err := models.ValidateTitleYear(*req.Year); err != nil {
			return models.RespondAppError(c, err)
		}
		title.Year = *req.Year
	}
	if req.Category != nil {
		if *req.Category == "" {
			title.CategoryID = nil
			title.Category = nil
		} else {
			category, err := s.categories.GetBySlug(ctx, *req.Category)
			if err != nil {
				return models.RespondAppError(c, err)
			}
			if category == nil {
				return models.RespondAppError(c,
					models.NewFieldError("category", "Unknown category slug"))
			}
			title.CategoryID = &category.ID
			title.Category = category
		}
	}

	if err := s.titles.Update(ctx, title); err != nil {
		return models.RespondAppError(c, err)
	}

	if req.Genre != nil {
		genres, appErr := s.resolveGenres(c, *req.Genre)
		if appErr != nil {
			return models.RespondAppError(c, appErr)
		}
		if err := s.titles.ReplaceGenres(ctx, title, genres); err != nil {
			return models.RespondAppError(c, err)
		}
	}

	updated, err := s.titles.GetByID(ctx, title.ID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(updated)
}

// DeleteTitle handles DELETE /api/v1/titles/:id (admin only). Reviews and
// their comments go with it.
func (s *Server) DeleteTitle(c *fiber.Ctx) error {
	if err := s.authorize(c, policy.Catalog, 0); err != nil {
		return models.RespondAppError(c, err)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondAppError(c, models.NewValidationError("Invalid title ID"))
	}

	ctx := c.UserContext()
	if _, err := s.titles.GetByID(ctx, uint(id)); err != nil {
		return models.RespondAppError(c, err)
	}
	if err := s.titles.Delete(ctx, uint(id)); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// resolveGenres maps genre slugs to stored genres, failing on unknown slugs.
func (s *Server) resolveGenres(c *fiber.Ctx, slugs []string) ([]models.Genre, error) {
	genres := make([]models.Genre, 0, len(slugs))
	for _, slug := range slugs {
		genre, err := s.genres.GetBySlug(c.UserContext(), slug)
		if err != nil {
			return nil, err
		}
		if genre == nil {
			return nil, models.NewFieldError("genre", "Unknown genre slug: "+slug)
		}
		genres = append(genres, *genre)
	}
	return genres, nil
}
