package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/database"
	"github.com/colmena-labs/stellardonate/internal/models"
	"github.com/colmena-labs/stellardonate/internal/services"
	"github.com/stretchr/testify/suite"
)

type BenefitServiceTestSuite struct {
	suite.Suite
	db       *database.Database
	images   *fakeImageClient
	benefits services.BenefitService
	project  *models.Project
}

func (suite *BenefitServiceTestSuite) SetupTest() {
	db, err := newTestDB()
	suite.Require().NoError(err)
	suite.db = db

	suite.images = &fakeImageClient{}
	suite.benefits = services.NewBenefitService(db.DB, suite.images)

	owner, err := createTestUser(db.DB, "owner@example.com")
	suite.Require().NoError(err)
	project, err := createTestProject(db.DB, owner.ID)
	suite.Require().NoError(err)
	suite.project = project
}

func (suite *BenefitServiceTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *BenefitServiceTestSuite) validRequest() services.CreateBenefitRequest {
	return services.CreateBenefitRequest{
		ProjectID:        suite.project.ID,
		Title:            "Founding Supporter",
		Description:      "Early backer token",
		Type:             models.BenefitTypeCollectible,
		AssetCode:        "FOUND",
		TotalSupply:      100,
		MinDonation:      "25",
		DonationCurrency: "XLM",
	}
}

func (suite *BenefitServiceTestSuite) TestCreateBenefit() {
	benefit, err := suite.benefits.CreateBenefit(suite.validRequest())
	suite.Require().NoError(err)
	suite.Greater(benefit.ID, uint(0))
	suite.Equal(int64(0), benefit.IssuedSupply)
	suite.True(benefit.IsActive)
	suite.Equal(int64(100), benefit.Available())
	suite.False(benefit.SoldOut())
}

func (suite *BenefitServiceTestSuite) TestCreateBenefitValidation() {
	suite.Run("missing title", func() {
		req := suite.validRequest()
		req.Title = ""
		_, err := suite.benefits.CreateBenefit(req)
		suite.Contains(apperrors.From(err).Fields, "title")
	})

	suite.Run("bad type", func() {
		req := suite.validRequest()
		req.Type = "golden"
		_, err := suite.benefits.CreateBenefit(req)
		suite.Contains(apperrors.From(err).Fields, "type")
	})

	suite.Run("bad asset code", func() {
		req := suite.validRequest()
		req.AssetCode = "THIRTEENCHARS"
		_, err := suite.benefits.CreateBenefit(req)
		suite.Contains(apperrors.From(err).Fields, "asset_code")
	})

	suite.Run("zero supply", func() {
		req := suite.validRequest()
		req.TotalSupply = 0
		_, err := suite.benefits.CreateBenefit(req)
		suite.Contains(apperrors.From(err).Fields, "total_supply")
	})

	suite.Run("negative min donation", func() {
		req := suite.validRequest()
		req.MinDonation = "-1"
		_, err := suite.benefits.CreateBenefit(req)
		suite.Contains(apperrors.From(err).Fields, "min_donation")
	})
}

func (suite *BenefitServiceTestSuite) TestListByProjectInCreationOrder() {
	for _, title := range []string{"First", "Second", "Third"} {
		req := suite.validRequest()
		req.Title = title
		_, err := suite.benefits.CreateBenefit(req)
		suite.Require().NoError(err)
	}

	benefits, err := suite.benefits.ListByProject(suite.project.ID)
	suite.Require().NoError(err)
	suite.Require().Len(benefits, 3)
	suite.Equal("First", benefits[0].Title)
	suite.Equal("Third", benefits[2].Title)
}

func (suite *BenefitServiceTestSuite) TestToggleActiveTwiceRestoresOriginal() {
	benefit, err := suite.benefits.CreateBenefit(suite.validRequest())
	suite.Require().NoError(err)
	suite.True(benefit.IsActive)

	toggled, err := suite.benefits.ToggleActive(benefit.ID)
	suite.Require().NoError(err)
	suite.False(toggled.IsActive)

	restored, err := suite.benefits.ToggleActive(benefit.ID)
	suite.Require().NoError(err)
	suite.True(restored.IsActive)
}

func (suite *BenefitServiceTestSuite) TestIssuedSupplyNeverExceedsTotalInReads() {
	benefit, err := suite.benefits.CreateBenefit(suite.validRequest())
	suite.Require().NoError(err)

	// Simulate a drifted counter written by the minting flow
	suite.db.DB.Model(&models.Benefit{}).Where("id = ?", benefit.ID).Update("issued_supply", 150)

	stored, err := suite.benefits.GetBenefit(benefit.ID)
	suite.Require().NoError(err)
	suite.LessOrEqual(stored.IssuedSupply, stored.TotalSupply)
	suite.True(stored.SoldOut())
	suite.Equal(int64(0), stored.Available())
}

func (suite *BenefitServiceTestSuite) TestGenerateImageForBenefit() {
	benefit, err := suite.benefits.CreateBenefit(suite.validRequest())
	suite.Require().NoError(err)

	suite.images.url = "https://images.example.com/founding.png"
	job, err := suite.benefits.GenerateImage(context.Background(), services.GenerateImageRequest{
		BenefitID: &benefit.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(models.ImageJobStatusCompleted, job.Status)
	suite.Equal("https://images.example.com/founding.png", job.ResultURL)

	stored, err := suite.benefits.GetBenefit(benefit.ID)
	suite.Require().NoError(err)
	suite.Equal("https://images.example.com/founding.png", stored.ImageURL)
}

func (suite *BenefitServiceTestSuite) TestGenerateImageFailureMarksJobFailed() {
	benefit, err := suite.benefits.CreateBenefit(suite.validRequest())
	suite.Require().NoError(err)

	suite.images.err = errors.New("model overloaded")
	_, err = suite.benefits.GenerateImage(context.Background(), services.GenerateImageRequest{
		BenefitID: &benefit.ID,
	})
	suite.Require().Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindExternalService))

	var jobs []models.ImageJob
	suite.db.DB.Find(&jobs)
	suite.Require().Len(jobs, 1)
	suite.Equal(models.ImageJobStatusFailed, jobs[0].Status)
	suite.Equal("model overloaded", jobs[0].Error)

	// Benefit untouched
	stored, err := suite.benefits.GetBenefit(benefit.ID)
	suite.Require().NoError(err)
	suite.Empty(stored.ImageURL)
}

func (suite *BenefitServiceTestSuite) TestListAbandonedImageJobs() {
	benefit, err := suite.benefits.CreateBenefit(suite.validRequest())
	suite.Require().NoError(err)

	stale := &models.ImageJob{
		ID:        "stale-job",
		BenefitID: &benefit.ID,
		Prompt:    "p",
		Status:    models.ImageJobStatusPending,
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	suite.Require().NoError(suite.db.DB.Create(stale).Error)

	fresh := &models.ImageJob{
		ID:     "fresh-job",
		Prompt: "p",
		Status: models.ImageJobStatusPending,
	}
	suite.Require().NoError(suite.db.DB.Create(fresh).Error)

	jobs, err := suite.benefits.ListAbandonedImageJobs(time.Hour)
	suite.Require().NoError(err)
	suite.Require().Len(jobs, 1)
	suite.Equal("stale-job", jobs[0].ID)
}

func (suite *BenefitServiceTestSuite) TestHoldingsByWallet() {
	benefit, err := suite.benefits.CreateBenefit(suite.validRequest())
	suite.Require().NoError(err)

	wallet := newTestWallet()
	holding := &models.BenefitHolding{
		BenefitID:    benefit.ID,
		HolderWallet: wallet,
		ReceivedAt:   time.Now(),
	}
	suite.Require().NoError(suite.db.DB.Create(holding).Error)

	holdings, err := suite.benefits.HoldingsByWallet(wallet)
	suite.Require().NoError(err)
	suite.Require().Len(holdings, 1)
	suite.Equal(benefit.ID, holdings[0].BenefitID)
	suite.Equal(benefit.Title, holdings[0].Benefit.Title)

	_, err = suite.benefits.HoldingsByWallet("not-a-wallet")
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func TestBenefitServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BenefitServiceTestSuite))
}
