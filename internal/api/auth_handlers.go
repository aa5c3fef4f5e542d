package api

import (
	"github.com/colmena-labs/stellardonate/internal/api/middleware"
	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req services.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request format")
	}

	user, err := s.users.Register(req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request format")
	}

	token, session, err := s.sessions.Login(req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"token":   token,
		"session": session,
	})
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	if err := s.sessions.Logout(middleware.BearerToken(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "logged out"})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)
	if user == nil {
		return apperrors.Unauthorized("Not authenticated")
	}
	return c.JSON(fiber.Map{
		"user":     user,
		"complete": user.Complete(),
	})
}

func (s *Server) handleUpdateMe(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)
	if user == nil {
		return apperrors.Unauthorized("Not authenticated")
	}

	var req services.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request format")
	}

	updated, err := s.users.UpdateProfile(user.ID, req)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}
