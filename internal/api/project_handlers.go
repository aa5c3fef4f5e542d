package api

import (
	"strconv"

	"github.com/colmena-labs/stellardonate/internal/api/middleware"
	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/models"
	"github.com/colmena-labs/stellardonate/internal/services"
	"github.com/gofiber/fiber/v2"
)

// parseID parses a numeric route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("Invalid " + name)
	}
	return uint(id), nil
}

// requireProjectOwner is the single ownership guard used by every mutating
// operation on a project or its sub-resources: authenticated identity,
// resource existence, then owner comparison, in that order.
func (s *Server) requireProjectOwner(c *fiber.Ctx, projectID uint) (*models.Project, error) {
	user := middleware.AuthenticatedUser(c)
	if user == nil {
		return nil, apperrors.Unauthorized("Not authenticated")
	}

	project, err := s.projects.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	if project.OwnerID != user.ID {
		return nil, apperrors.Forbidden("You do not own this project")
	}
	return project, nil
}

func (s *Server) handleCreateProject(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)
	if user == nil {
		return apperrors.Unauthorized("Not authenticated")
	}

	var req services.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request format")
	}

	project, err := s.projects.CreateProject(user.ID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (s *Server) handleGetProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	project, err := s.projects.GetProject(id)
	if err != nil {
		return err
	}
	return c.JSON(project)
}

func (s *Server) handleUpdateProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := s.requireProjectOwner(c, id); err != nil {
		return err
	}

	var req services.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request format")
	}

	project, err := s.projects.UpdateProject(id, req)
	if err != nil {
		return err
	}
	return c.JSON(project)
}

func (s *Server) handlePublishProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := s.requireProjectOwner(c, id); err != nil {
		return err
	}

	project, err := s.projects.PublishProject(id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"project":    project,
		"public_url": s.publicProjectURL(project.ID),
	})
}

func (s *Server) handleAddRoadmapItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := s.requireProjectOwner(c, id); err != nil {
		return err
	}

	var req services.RoadmapItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request format")
	}

	item, err := s.projects.AddRoadmapItem(id, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}
