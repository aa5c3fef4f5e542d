package server

import (
	"github.com/colmena-labs/stellardonate/internal/imagegen"
	"github.com/colmena-labs/stellardonate/internal/services"
	"github.com/colmena-labs/stellardonate/internal/stellar"
	"gorm.io/gorm"
)

// Services bundles everything the HTTP layer depends on.
type Services struct {
	Users     services.UserService
	Sessions  services.SessionService
	Projects  services.ProjectService
	Donations services.DonationService
	Issuers   services.IssuerService
	Benefits  services.BenefitService
}

func InitializeServices(db *gorm.DB, stellarClient stellar.Client, imageClient imagegen.Client, jwtSecret string) Services {
	users := services.NewUserService(db)

	return Services{
		Users:     users,
		Sessions:  services.NewSessionService(db, users, jwtSecret),
		Projects:  services.NewProjectService(db),
		Donations: services.NewDonationService(db),
		Issuers:   services.NewIssuerService(db, stellarClient),
		Benefits:  services.NewBenefitService(db, imageClient),
	}
}
