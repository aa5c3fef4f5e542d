package services_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/database"
	"github.com/colmena-labs/stellardonate/internal/models"
	"github.com/colmena-labs/stellardonate/internal/services"
	"github.com/stretchr/testify/suite"
)

type DonationServiceTestSuite struct {
	suite.Suite
	db        *database.Database
	donations services.DonationService
	project   *models.Project
}

func (suite *DonationServiceTestSuite) SetupSuite() {
	db, err := newTestDB()
	suite.Require().NoError(err)
	suite.db = db

	suite.donations = services.NewDonationService(db.DB)

	owner, err := createTestUser(db.DB, "owner@example.com")
	suite.Require().NoError(err)
	project, err := createTestProject(db.DB, owner.ID)
	suite.Require().NoError(err)
	suite.project = project
}

func (suite *DonationServiceTestSuite) TearDownSuite() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *DonationServiceTestSuite) SetupTest() {
	suite.db.DB.Where("1 = 1").Delete(&models.Donation{})
	suite.db.DB.Model(&models.Project{}).Where("id = ?", suite.project.ID).Update("current_amount", "0")
}

func (suite *DonationServiceTestSuite) validRequest() services.RecordDonationRequest {
	return services.RecordDonationRequest{
		ProjectID:   suite.project.ID,
		DonorWallet: newTestWallet(),
		Amount:      "10",
		Asset:       "XLM",
		TxHash:      "abc123def456",
		Network:     models.StellarNetworkTestnet,
	}
}

func (suite *DonationServiceTestSuite) requireFieldError(err error, field string) {
	suite.Require().Error(err)
	appErr := apperrors.From(err)
	suite.Equal(apperrors.KindValidation, appErr.Kind)
	suite.Contains(appErr.Fields, field)
}

func (suite *DonationServiceTestSuite) TestRecordValidDonation() {
	donation, err := suite.donations.Record(suite.validRequest())
	suite.Require().NoError(err)
	suite.Greater(donation.ID, uint(0))
	suite.Equal("10", donation.Amount)
	suite.Equal("XLM", donation.Asset)

	// Running total moves with the receipt
	var project models.Project
	suite.Require().NoError(suite.db.DB.First(&project, suite.project.ID).Error)
	suite.Equal("10", project.CurrentAmount)
}

func (suite *DonationServiceTestSuite) TestRecordRejectsNonPositiveAmounts() {
	for _, amount := range []string{"-5", "0", "abc", ""} {
		suite.Run("amount "+amount, func() {
			req := suite.validRequest()
			req.Amount = amount
			_, err := suite.donations.Record(req)
			suite.requireFieldError(err, "amount")

			appErr := apperrors.From(err)
			if amount == "" {
				suite.Equal("Amount is required", appErr.Fields["amount"])
			} else {
				suite.Equal("Amount must be positive", appErr.Fields["amount"])
			}
		})
	}

	// Nothing was persisted
	var count int64
	suite.db.DB.Model(&models.Donation{}).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *DonationServiceTestSuite) TestRecordRejectsMissingFields() {
	suite.Run("missing project", func() {
		req := suite.validRequest()
		req.ProjectID = 0
		_, err := suite.donations.Record(req)
		suite.requireFieldError(err, "project_id")
	})

	suite.Run("missing wallet", func() {
		req := suite.validRequest()
		req.DonorWallet = ""
		_, err := suite.donations.Record(req)
		suite.requireFieldError(err, "donor_wallet")
	})

	suite.Run("missing asset", func() {
		req := suite.validRequest()
		req.Asset = ""
		_, err := suite.donations.Record(req)
		suite.requireFieldError(err, "asset")
	})

	suite.Run("missing tx hash", func() {
		req := suite.validRequest()
		req.TxHash = ""
		_, err := suite.donations.Record(req)
		suite.requireFieldError(err, "tx_hash")
	})

	suite.Run("missing network", func() {
		req := suite.validRequest()
		req.Network = ""
		_, err := suite.donations.Record(req)
		suite.requireFieldError(err, "network")
	})
}

func (suite *DonationServiceTestSuite) TestRecordRejectsMalformedWallet() {
	for _, wallet := range []string{
		"ABC",
		"S" + newTestWallet()[1:],  // wrong marker character
		newTestWallet() + "A",      // too long
		newTestWallet()[:55] + "!", // bad checksum
	} {
		req := suite.validRequest()
		req.DonorWallet = wallet
		_, err := suite.donations.Record(req)
		suite.requireFieldError(err, "donor_wallet")
	}
}

func (suite *DonationServiceTestSuite) TestRecordRejectsUnknownNetworkAndAsset() {
	req := suite.validRequest()
	req.Network = "devnet"
	req.Asset = "DOGE"
	_, err := suite.donations.Record(req)
	suite.requireFieldError(err, "network")
	suite.requireFieldError(err, "asset")
}

func (suite *DonationServiceTestSuite) TestRecordUnknownProject() {
	req := suite.validRequest()
	req.ProjectID = 99999
	_, err := suite.donations.Record(req)
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

func (suite *DonationServiceTestSuite) TestRecordDuplicateTxHash() {
	req := suite.validRequest()
	_, err := suite.donations.Record(req)
	suite.Require().NoError(err)

	req.DonorWallet = newTestWallet()
	_, err = suite.donations.Record(req)
	suite.requireFieldError(err, "tx_hash")

	var count int64
	suite.db.DB.Model(&models.Donation{}).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *DonationServiceTestSuite) TestRecordConcurrentKeepsTotalConsistent() {
	// A single pooled connection keeps the in-memory database shared across
	// goroutines.
	sqlDB, err := suite.db.DB.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	const donors = 8
	var wg sync.WaitGroup
	errs := make([]error, donors)
	for i := 0; i < donors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := suite.validRequest()
			req.TxHash = fmt.Sprintf("concurrent-tx-%d", i)
			_, errs[i] = suite.donations.Record(req)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		suite.Require().NoError(err)
	}

	// Every receipt is reflected in the running total; none of the
	// increments were lost to a stale read.
	var project models.Project
	suite.Require().NoError(suite.db.DB.First(&project, suite.project.ID).Error)
	suite.Equal("80", project.CurrentAmount)

	var count int64
	suite.db.DB.Model(&models.Donation{}).Count(&count)
	suite.Equal(int64(donors), count)
}

func (suite *DonationServiceTestSuite) TestListByProjectNewestFirst() {
	for i := 0; i < 5; i++ {
		req := suite.validRequest()
		req.TxHash = fmt.Sprintf("tx-%d", i)
		_, err := suite.donations.Record(req)
		suite.Require().NoError(err)
	}

	donations, err := suite.donations.ListByProject(suite.project.ID, 3)
	suite.Require().NoError(err)
	suite.Len(donations, 3)
	suite.Equal("tx-4", donations[0].TxHash)
	suite.Equal("tx-2", donations[2].TxHash)
}

func TestDonationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DonationServiceTestSuite))
}
