package api

import (
	"strconv"

	"github.com/colmena-labs/stellardonate/internal/api/middleware"
	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/services"
	"github.com/gofiber/fiber/v2"
)

// handleCreateDonation records a donation receipt. The donor's wallet has
// already submitted the payment to the network; this endpoint only
// validates and stores the receipt.
func (s *Server) handleCreateDonation(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)
	if user == nil {
		return apperrors.Unauthorized("Not authenticated")
	}
	if !user.Complete() {
		return apperrors.Forbidden("Complete your profile before donating")
	}

	var req services.RecordDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request format")
	}

	donation, err := s.donations.Record(req)
	if err != nil {
		if s.metrics != nil && apperrors.IsKind(err, apperrors.KindValidation) {
			s.metrics.DonationRejected("validation")
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.DonationRecorded(string(donation.Network), donation.Asset)
	}
	return c.Status(fiber.StatusCreated).JSON(donation)
}

func (s *Server) handleListProjectDonations(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val <= 0 {
			return apperrors.Validation("Invalid limit")
		}
		limit = val
	}

	donations, err := s.donations.ListByProject(id, limit)
	if err != nil {
		return err
	}

	// Donation lists drive live progress displays; never serve them stale.
	c.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	c.Set("Pragma", "no-cache")
	return c.JSON(donations)
}
