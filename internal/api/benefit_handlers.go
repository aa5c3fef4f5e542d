package api

import (
	"strconv"

	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/models"
	"github.com/colmena-labs/stellardonate/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleCreateBenefit(c *fiber.Ctx) error {
	var req services.CreateBenefitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request format")
	}
	if req.ProjectID == 0 {
		return apperrors.ValidationFields(map[string]string{"project_id": "Project ID is required"})
	}
	if _, err := s.requireProjectOwner(c, req.ProjectID); err != nil {
		return err
	}

	benefit, err := s.benefits.CreateBenefit(req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(benefit)
}

// handleListBenefits lists a project's benefits with the derived
// availability fields the storefront renders.
func (s *Server) handleListBenefits(c *fiber.Ctx) error {
	raw := c.Query("projectId")
	projectID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || projectID == 0 {
		return apperrors.Validation("Invalid projectId")
	}

	benefits, err := s.benefits.ListByProject(uint(projectID))
	if err != nil {
		return err
	}

	out := make([]fiber.Map, 0, len(benefits))
	for i := range benefits {
		out = append(out, benefitView(&benefits[i]))
	}
	return c.JSON(out)
}

func (s *Server) handleToggleBenefit(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	benefit, err := s.benefits.GetBenefit(id)
	if err != nil {
		return err
	}
	if _, err := s.requireProjectOwner(c, benefit.ProjectID); err != nil {
		return err
	}

	updated, err := s.benefits.ToggleActive(id)
	if err != nil {
		return err
	}
	return c.JSON(benefitView(updated))
}

func (s *Server) handleGenerateBenefitImage(c *fiber.Ctx) error {
	var req services.GenerateImageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request format")
	}

	// Every request is tied to a benefit or a project the caller owns so a
	// session alone cannot spend generator quota on arbitrary prompts.
	if req.BenefitID != nil {
		benefit, err := s.benefits.GetBenefit(*req.BenefitID)
		if err != nil {
			return err
		}
		if _, err := s.requireProjectOwner(c, benefit.ProjectID); err != nil {
			return err
		}
	} else {
		if req.ProjectID == 0 {
			return apperrors.ValidationFields(map[string]string{
				"project_id": "A project or benefit reference is required",
			})
		}
		if _, err := s.requireProjectOwner(c, req.ProjectID); err != nil {
			return err
		}
	}

	job, err := s.benefits.GenerateImage(c.Context(), req)
	if err != nil {
		// Only attempts that reached the generator created a job row;
		// validation and lookup failures stay out of the counter.
		if s.metrics != nil && apperrors.IsKind(err, apperrors.KindExternalService) {
			s.metrics.ImageJob("failed")
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.ImageJob("completed")
	}
	return c.JSON(fiber.Map{
		"job": job,
		"url": job.ResultURL,
	})
}

func (s *Server) handleListHoldings(c *fiber.Ctx) error {
	holdings, err := s.benefits.HoldingsByWallet(c.Params("address"))
	if err != nil {
		return err
	}
	return c.JSON(holdings)
}

// benefitView decorates a benefit with its derived availability.
func benefitView(b *models.Benefit) fiber.Map {
	return fiber.Map{
		"id":                b.ID,
		"project_id":        b.ProjectID,
		"title":             b.Title,
		"description":       b.Description,
		"type":              b.Type,
		"asset_code":        b.AssetCode,
		"total_supply":      b.TotalSupply,
		"issued_supply":     b.IssuedSupply,
		"available":         b.Available(),
		"sold_out":          b.SoldOut(),
		"min_donation":      b.MinDonation,
		"donation_currency": b.DonationCurrency,
		"image_url":         b.ImageURL,
		"is_active":         b.IsActive,
		"created_at":        b.CreatedAt,
	}
}
