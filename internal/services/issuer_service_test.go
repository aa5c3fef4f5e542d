package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/database"
	"github.com/colmena-labs/stellardonate/internal/models"
	"github.com/colmena-labs/stellardonate/internal/services"
	"github.com/stretchr/testify/suite"
)

type IssuerServiceTestSuite struct {
	suite.Suite
	db      *database.Database
	stellar *fakeStellarClient
	issuers services.IssuerService
	project *models.Project
}

func (suite *IssuerServiceTestSuite) SetupTest() {
	db, err := newTestDB()
	suite.Require().NoError(err)
	suite.db = db

	suite.stellar = &fakeStellarClient{}
	suite.issuers = services.NewIssuerService(db.DB, suite.stellar)

	owner, err := createTestUser(db.DB, "owner@example.com")
	suite.Require().NoError(err)
	project, err := createTestProject(db.DB, owner.ID)
	suite.Require().NoError(err)
	suite.project = project
}

func (suite *IssuerServiceTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *IssuerServiceTestSuite) TestCreateIssuer() {
	issuer, created, err := suite.issuers.CreateIssuer(suite.project.ID)
	suite.Require().NoError(err)
	suite.True(created)
	suite.Len(issuer.PublicKey, 56)
	suite.Equal(byte('G'), issuer.PublicKey[0])
	suite.False(issuer.Funded)
	suite.True(issuer.IsActive)
}

func (suite *IssuerServiceTestSuite) TestCreateIssuerIdempotent() {
	first, created, err := suite.issuers.CreateIssuer(suite.project.ID)
	suite.Require().NoError(err)
	suite.True(created)

	second, created, err := suite.issuers.CreateIssuer(suite.project.ID)
	suite.Require().NoError(err)
	suite.False(created)
	suite.Equal(first.PublicKey, second.PublicKey)
	suite.Equal(first.ID, second.ID)

	var count int64
	suite.db.DB.Model(&models.IssuerAccount{}).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *IssuerServiceTestSuite) TestCreateIssuerUnknownProject() {
	_, _, err := suite.issuers.CreateIssuer(99999)
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

func (suite *IssuerServiceTestSuite) TestGetIssuerBeforeCreate() {
	// Querying must not auto-create
	_, err := suite.issuers.GetIssuer(suite.project.ID)
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))

	var count int64
	suite.db.DB.Model(&models.IssuerAccount{}).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *IssuerServiceTestSuite) TestFundIssuer() {
	_, _, err := suite.issuers.CreateIssuer(suite.project.ID)
	suite.Require().NoError(err)

	suite.stellar.fundHash = "deadbeef"
	issuer, txHash, err := suite.issuers.FundIssuer(context.Background(), suite.project.ID)
	suite.Require().NoError(err)
	suite.Equal("deadbeef", txHash)
	suite.True(issuer.Funded)

	// Persisted, not just in-memory
	stored, err := suite.issuers.GetIssuer(suite.project.ID)
	suite.Require().NoError(err)
	suite.True(stored.Funded)
}

func (suite *IssuerServiceTestSuite) TestFundIssuerFailureLeavesUnfunded() {
	_, _, err := suite.issuers.CreateIssuer(suite.project.ID)
	suite.Require().NoError(err)

	suite.stellar.fundErr = errors.New("op_underfunded")
	_, _, err = suite.issuers.FundIssuer(context.Background(), suite.project.ID)
	suite.Require().Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindExternalService))
	// Underlying message surfaced verbatim
	suite.Equal("op_underfunded", apperrors.From(err).Message)

	stored, err := suite.issuers.GetIssuer(suite.project.ID)
	suite.Require().NoError(err)
	suite.False(stored.Funded)
}

func (suite *IssuerServiceTestSuite) TestFundIssuerBeforeCreate() {
	_, _, err := suite.issuers.FundIssuer(context.Background(), suite.project.ID)
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))
	suite.Equal(0, suite.stellar.fundCalls)
}

func (suite *IssuerServiceTestSuite) TestFundIssuerAlreadyFunded() {
	_, _, err := suite.issuers.CreateIssuer(suite.project.ID)
	suite.Require().NoError(err)

	_, _, err = suite.issuers.FundIssuer(context.Background(), suite.project.ID)
	suite.Require().NoError(err)

	_, _, err = suite.issuers.FundIssuer(context.Background(), suite.project.ID)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
	suite.Equal(1, suite.stellar.fundCalls)
}

func TestIssuerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(IssuerServiceTestSuite))
}
