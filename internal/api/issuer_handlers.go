package api

import (
	"github.com/gofiber/fiber/v2"
)

// handleCreateIssuer creates the project's issuer account keypair. The
// operation is idempotent: repeating it returns the existing account with a
// 200 instead of a 201.
func (s *Server) handleCreateIssuer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := s.requireProjectOwner(c, id); err != nil {
		return err
	}

	issuer, created, err := s.issuers.CreateIssuer(id)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(issuer)
}

func (s *Server) handleFundIssuer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := s.requireProjectOwner(c, id); err != nil {
		return err
	}

	issuer, txHash, err := s.issuers.FundIssuer(c.Context(), id)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IssuerFunding("failure")
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.IssuerFunding("success")
	}
	return c.JSON(fiber.Map{
		"issuer":  issuer,
		"tx_hash": txHash,
	})
}

func (s *Server) handleGetIssuer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	issuer, err := s.issuers.GetIssuer(id)
	if err != nil {
		return err
	}
	return c.JSON(issuer)
}
