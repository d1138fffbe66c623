package server

import (
	"kritika/internal/middleware"
	"kritika/internal/models"
	"kritika/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// titleID parses and verifies the :title_id route parameter, returning the
// stored title's ID or a not-found error.
func (s *Server) titleID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("title_id")
	if err != nil {
		return 0, models.NewValidationError("Invalid title ID")
	}
	title, err := s.titles.GetByID(c.UserContext(), uint(id))
	if err != nil {
		return 0, err
	}
	return title.ID, nil
}

// ListReviews handles GET /api/v1/titles/:title_id/reviews (public)
func (s *Server) ListReviews(c *fiber.Ctx) error {
	titleID, err := s.titleID(c)
	if err != nil {
		return models.RespondAppError(c, err)
	}

	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	reviews, err := s.reviews.ListByTitle(c.UserContext(), titleID, limit, offset)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(reviews)
}

// GetReview handles GET /api/v1/titles/:title_id/reviews/:id (public)
func (s *Server) GetReview(c *fiber.Ctx) error {
	titleID, err := s.titleID(c)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondAppError(c, models.NewValidationError("Invalid review ID"))
	}

	review, err := s.reviews.GetByID(c.UserContext(), titleID, uint(id))
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(review)
}

// CreateReview handles POST /api/v1/titles/:title_id/reviews. One review per
// author per title.
func (s *Server) CreateReview(c *fiber.Ctx) error {
	titleID, err := s.titleID(c)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	// On create the actor authors the resource, so the ownership check runs
	// against their own ID. Anonymous actors carry ID 0 and are rejected.
	actor := middleware.Actor(c)
	var actorID uint
	if actor != nil {
		actorID = actor.ID
	}
	if err := s.authorize(c, policy.Contributions, actorID); err != nil {
		return models.RespondAppError(c, err)
	}

	var req struct {
		Text  string `json:"text"`
		Score int    `json:"score"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	if req.Text == "" {
		return models.RespondAppError(c, models.NewFieldError("text", "Text is required"))
	}
	if err := models.ValidateScore(req.Score); err != nil {
		return models.RespondAppError(c, err)
	}

	ctx := c.UserContext()

	exists, err := s.reviews.ExistsForAuthor(ctx, titleID, actor.ID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if exists {
		return models.RespondAppError(c,
			models.NewValidationError("You have already left a review for this title!"))
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     req.Text,
		Score:    req.Score,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return models.RespondAppError(c, err)
	}

	created, err := s.reviews.GetByID(ctx, titleID, review.ID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateReview handles PATCH /api/v1/titles/:title_id/reviews/:id. Authors
// edit their own reviews; moderators and admins edit anyone's.
func (s *Server) UpdateReview(c *fiber.Ctx) error {
	titleID, err := s.titleID(c)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondAppError(c, models.NewValidationError("Invalid review ID"))
	}

	ctx := c.UserContext()
	review, err := s.reviews.GetByID(ctx, titleID, uint(id))
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if err := s.authorize(c, policy.Contributions, review.AuthorID); err != nil {
		return models.RespondAppError(c, err)
	}

	var req struct {
		Text  *string `json:"text"`
		Score *int    `json:"score"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	if req.Text != nil {
		if *req.Text == "" {
			return models.RespondAppError(c, models.NewFieldError("text", "Text is required"))
		}
		review.Text = *req.Text
	}
	if req.Score != nil {
		if err := models.ValidateScore(*req.Score); err != nil {
			return models.RespondAppError(c, err)
		}
		review.Score = *req.Score
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(review)
}

// DeleteReview handles DELETE /api/v1/titles/:title_id/reviews/:id. Its
// comments go with it.
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	titleID, err := s.titleID(c)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondAppError(c, models.NewValidationError("Invalid review ID"))
	}

	ctx := c.UserContext()
	review, err := s.reviews.GetByID(ctx, titleID, uint(id))
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if err := s.authorize(c, policy.Contributions, review.AuthorID); err != nil {
		return models.RespondAppError(c, err)
	}

	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
