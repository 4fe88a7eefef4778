package server

import (
	"bridgefeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GenerateDemo replaces the store with a simulated population. The body is
// optional.
func (s *Server) GenerateDemo(c *fiber.Ctx) error {
	var req struct {
		ExtraUsers int `json:"extra_users"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}

	stats, err := s.svc.GenerateDemo(c.UserContext(), service.GenerateDemoInput{ExtraUsers: req.ExtraUsers})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"stats":  stats,
	})
}

// ResetDemo clears the store.
func (s *Server) ResetDemo(c *fiber.Ctx) error {
	if err := s.svc.Reset(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "success"})
}

// ArchiveSnapshot writes the current store to the archive database.
func (s *Server) ArchiveSnapshot(c *fiber.Ctx) error {
	run, err := s.svc.ArchiveSnapshot(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(run)
}

// GetFeatureFlags returns the effective flag values.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"flags": s.featureFlags.Raw()})
}
