package server

import (
	"github.com/gofiber/fiber/v2"

	"driftchat/internal/models"
	"driftchat/internal/service"
)

type castVoteRequest struct {
	PostID    string `json:"post_id"`
	Direction string `json:"direction"`
}

// CastVote records, flips, or retracts the caller's vote on a post.
func (s *Server) CastVote(c *fiber.Ctx) error {
	var req castVoteRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.reputationService.CastVote(c.UserContext(), service.CastVoteInput{
		VoterAlienID: alienIDFromCtx(c),
		PostID:       req.PostID,
		Direction:    req.Direction,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// GetMyReputation derives the caller's standing from the live vote log.
func (s *Server) GetMyReputation(c *fiber.Ctx) error {
	rep, err := s.reputationService.Reputation(c.UserContext(), alienIDFromCtx(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(rep)
}
