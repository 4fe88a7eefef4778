package server

import (
	"bridgefeed/internal/models"
	"bridgefeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateUser registers a user. The profile is optional and sampled when absent.
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req struct {
		Name    string          `json:"name"`
		Profile *models.Profile `json:"profile"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.svc.CreateUser(c.UserContext(), service.CreateUserInput{
		Name:    req.Name,
		Profile: req.Profile,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// ListUsers returns every user.
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.svc.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUser returns one user by id.
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.svc.GetUser(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
