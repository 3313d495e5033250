package server

import (
	"github.com/gofiber/fiber/v2"

	"driftchat/internal/models"
	"driftchat/internal/service"
)

type joinRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type createPostRequest struct {
	Hash string `json:"hash"`
	Body string `json:"body"`
}

// JoinRoom places the caller into the room for their coordinates and the
// current time slot.
func (s *Server) JoinRoom(c *fiber.Ctx) error {
	var req joinRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.roomService.Join(c.UserContext(), service.JoinInput{
		AlienID: alienIDFromCtx(c),
		Lat:     req.Lat,
		Lon:     req.Lon,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// Heartbeat refreshes the caller's presence, rolling them into the current
// slot's room when the previous one has expired.
func (s *Server) Heartbeat(c *fiber.Ctx) error {
	result, err := s.roomService.Heartbeat(c.UserContext(), alienIDFromCtx(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// LeaveRoom drops the caller's session.
func (s *Server) LeaveRoom(c *fiber.Ctx) error {
	if err := s.roomService.Leave(c.UserContext(), alienIDFromCtx(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreatePost writes a message into the caller's current room.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AlienID: alienIDFromCtx(c),
		Hash:    req.Hash,
		Body:    req.Body,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetRoomHistory returns the room's recent posts oldest-first, with vote
// tallies from the caller's point of view.
func (s *Server) GetRoomHistory(c *fiber.Ctx) error {
	result, err := s.postService.History(c.UserContext(), c.Params("hash"), alienIDFromCtx(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// GetNeighbors lists the alive rooms adjacent to the given room's tile.
func (s *Server) GetNeighbors(c *fiber.Ctx) error {
	rooms, err := s.roomService.AliveNeighbors(c.UserContext(), c.Params("hash"))
	if err != nil {
		return respondServiceError(c, err)
	}
	if rooms == nil {
		rooms = []*models.Room{}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"rooms": rooms})
}

// TriggerPrune runs the expiry sweep immediately.
func (s *Server) TriggerPrune(c *fiber.Ctx) error {
	result, err := s.roomService.Prune(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
