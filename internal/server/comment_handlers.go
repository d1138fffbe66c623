package server

import (
	"kritika/internal/middleware"
	"kritika/internal/models"
	"kritika/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// reviewID verifies that :review_id names a review under :title_id and
// returns its ID.
func (s *Server) reviewID(c *fiber.Ctx) (uint, error) {
	titleID, err := s.titleID(c)
	if err != nil {
		return 0, err
	}
	id, err := c.ParamsInt("review_id")
	if err != nil {
		return 0, models.NewValidationError("Invalid review ID")
	}
	review, err := s.reviews.GetByID(c.UserContext(), titleID, uint(id))
	if err != nil {
		return 0, err
	}
	return review.ID, nil
}

// ListComments handles GET /api/v1/titles/:title_id/reviews/:review_id/comments (public)
func (s *Server) ListComments(c *fiber.Ctx) error {
	reviewID, err := s.reviewID(c)
	if err != nil {
		return models.RespondAppError(c, err)
	}

	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	comments, err := s.comments.ListByReview(c.UserContext(), reviewID, limit, offset)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(comments)
}

// GetComment handles GET /api/v1/titles/:title_id/reviews/:review_id/comments/:id (public)
func (s *Server) GetComment(c *fiber.Ctx) error {
	reviewID, err := s.reviewID(c)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondAppError(c, models.NewValidationError("Invalid comment ID"))
	}

	comment, err := s.comments.GetByID(c.UserContext(), reviewID, uint(id))
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(comment)
}

// CreateComment handles POST /api/v1/titles/:title_id/reviews/:review_id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	reviewID, err := s.reviewID(c)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	actor := middleware.Actor(c)
	var actorID uint
	if actor != nil {
		actorID = actor.ID
	}
	if err := s.authorize(c, policy.Contributions, actorID); err != nil {
		return models.RespondAppError(c, err)
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	if req.Text == "" {
		return models.RespondAppError(c, models.NewFieldError("text", "Text is required"))
	}

	ctx := c.UserContext()
	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Text:     req.Text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return models.RespondAppError(c, err)
	}

	created, err := s.comments.GetByID(ctx, reviewID, comment.ID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateComment handles PATCH /api/v1/titles/:title_id/reviews/:review_id/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	reviewID, err := s.reviewID(c)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondAppError(c, models.NewValidationError("Invalid comment ID"))
	}

	ctx := c.UserContext()
	comment, err := s.comments.GetByID(ctx, reviewID, uint(id))
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if err := s.authorize(c, policy.Contributions, comment.AuthorID); err != nil {
		return models.RespondAppError(c, err)
	}

	var req struct {
		Text *string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	if req.Text != nil {
		if *req.Text == "" {
			return models.RespondAppError(c, models.NewFieldError("text", "Text is required"))
		}
		comment.Text = *req.Text
	}

	if err := s.comments.Update(ctx, comment); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/v1/titles/:title_id/reviews/:review_id/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	reviewID, err := s.reviewID(c)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondAppError(c, models.NewValidationError("Invalid comment ID"))
	}

	ctx := c.UserContext()
	comment, err := s.comments.GetByID(ctx, reviewID, uint(id))
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if err := s.authorize(c, policy.Contributions, comment.AuthorID); err != nil {
		return models.RespondAppError(c, err)
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
