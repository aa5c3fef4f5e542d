package services

import (
	"context"
	"errors"

	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/models"
	"github.com/colmena-labs/stellardonate/internal/stellar"
	"gorm.io/gorm"
)

// IssuerService manages the two-phase lifecycle of a project's issuer
// account: create the keypair locally, then fund it on the network.
type IssuerService interface {
	// CreateIssuer is idempotent: a second call for the same project returns
	// the existing account. The returned bool is true when a new account was
	// created.
	CreateIssuer(projectID uint) (*models.IssuerAccount, bool, error)
	FundIssuer(ctx context.Context, projectID uint) (*models.IssuerAccount, string, error)
	GetIssuer(projectID uint) (*models.IssuerAccount, error)
}

type issuerService struct {
	db      *gorm.DB
	stellar stellar.Client
}

// NewIssuerService creates a new IssuerService
func NewIssuerService(db *gorm.DB, stellarClient stellar.Client) IssuerService {
	return &issuerService{db: db, stellar: stellarClient}
}

func (s *issuerService) CreateIssuer(projectID uint) (*models.IssuerAccount, bool, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, apperrors.NotFound("Project not found")
		}
		return nil, false, apperrors.Internal(err)
	}

	if existing, err := s.GetIssuer(projectID); err == nil {
		return existing, false, nil
	} else if !apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, false, err
	}

	publicKey, err := s.stellar.NewIssuerKeypair()
	if err != nil {
		return nil, false, apperrors.ExternalService(err.Error(), err)
	}

	issuer := &models.IssuerAccount{
		ProjectID: projectID,
		PublicKey: publicKey,
		Funded:    false,
		IsActive:  true,
	}
	if err := s.db.Create(issuer).Error; err != nil {
		// A concurrent create won the race; the unique index on the project
		// reference guarantees one issuer per project, so return the winner.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, getErr := s.GetIssuer(projectID)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, apperrors.Internal(err)
	}

	return issuer, true, nil
}

// FundIssuer submits a funding transaction from the platform source account
// to the issuer's public key. Success flips the funded flag and returns the
// funding transaction hash; failure leaves the flag untouched and surfaces
// the underlying error message verbatim.
func (s *issuerService) FundIssuer(ctx context.Context, projectID uint) (*models.IssuerAccount, string, error) {
	issuer, err := s.GetIssuer(projectID)
	if err != nil {
		return nil, "", err
	}
	if issuer.Funded {
		return nil, "", apperrors.Validation("Issuer account is already funded")
	}

	txHash, err := s.stellar.FundAccount(ctx, issuer.PublicKey)
	if err != nil {
		return nil, "", apperrors.ExternalService(err.Error(), err)
	}

	issuer.Funded = true
	if err := s.db.Model(issuer).Update("funded", true).Error; err != nil {
		return nil, "", apperrors.Internal(err)
	}

	return issuer, txHash, nil
}

func (s *issuerService) GetIssuer(projectID uint) (*models.IssuerAccount, error) {
	var issuer models.IssuerAccount
	if err := s.db.Where("project_id = ?", projectID).First(&issuer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Issuer account not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &issuer, nil
}
