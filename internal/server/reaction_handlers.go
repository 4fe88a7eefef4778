package server

import (
	"bridgefeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RecordReaction appends a reaction and answers with the rescored target.
func (s *Server) RecordReaction(c *fiber.Ctx) error {
	var req struct {
		UserID       uint   `json:"user_id"`
		TargetType   string `json:"target_type"`
		TargetID     uint   `json:"target_id"`
		ReactionType string `json:"reaction_type"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.svc.RecordReaction(c.UserContext(), service.RecordReactionInput{
		UserID:       req.UserID,
		TargetType:   req.TargetType,
		TargetID:     req.TargetID,
		ReactionType: req.ReactionType,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// GetStats returns the aggregate counters.
func (s *Server) GetStats(c *fiber.Ctx) error {
	stats, err := s.svc.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
