package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/imagegen"
	"github.com/colmena-labs/stellardonate/internal/models"
	"github.com/colmena-labs/stellardonate/internal/stellar"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stellar asset codes are 1-12 alphanumeric characters.
var assetCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,12}$`)

// BenefitService manages the benefit-token catalog for projects.
type BenefitService interface {
	CreateBenefit(req CreateBenefitRequest) (*models.Benefit, error)
	GetBenefit(id uint) (*models.Benefit, error)
	ListByProject(projectID uint) ([]models.Benefit, error)
	ToggleActive(id uint) (*models.Benefit, error)
	GenerateImage(ctx context.Context, req GenerateImageRequest) (*models.ImageJob, error)
	ListAbandonedImageJobs(olderThan time.Duration) ([]models.ImageJob, error)
	HoldingsByWallet(wallet string) ([]models.BenefitHolding, error)
}

type benefitService struct {
	db     *gorm.DB
	images imagegen.Client
}

type CreateBenefitRequest struct {
	ProjectID        uint               `json:"project_id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Type             models.BenefitType `json:"type"`
	AssetCode        string             `json:"asset_code"`
	TotalSupply      int64              `json:"total_supply"`
	MinDonation      string             `json:"min_donation"`
	DonationCurrency string             `json:"donation_currency"`
	ImageURL         string             `json:"image_url"`
}

// GenerateImageRequest describes the prompt inputs for a benefit image.
// When BenefitID is set the benefit's image URL is updated on success;
// otherwise ProjectID names the project the image is drafted for.
type GenerateImageRequest struct {
	BenefitID   *uint              `json:"benefit_id,omitempty"`
	ProjectID   uint               `json:"project_id,omitempty"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Type        models.BenefitType `json:"type"`
	MinDonation string             `json:"min_donation"`
	TotalSupply int64              `json:"total_supply"`
}

// NewBenefitService creates a new BenefitService
func NewBenefitService(db *gorm.DB, images imagegen.Client) BenefitService {
	return &benefitService{db: db, images: images}
}

func (s *benefitService) CreateBenefit(req CreateBenefitRequest) (*models.Benefit, error) {
	fields := map[string]string{}
	if req.ProjectID == 0 {
		fields["project_id"] = "Project ID is required"
	}
	if req.Title == "" {
		fields["title"] = "Title is required"
	}
	if !models.ValidBenefitType(req.Type) {
		fields["type"] = "Type must be one of collectible, membership, access, discount"
	}
	if !assetCodePattern.MatchString(req.AssetCode) {
		fields["asset_code"] = "Asset code must be 1-12 alphanumeric characters"
	}
	if req.TotalSupply <= 0 {
		fields["total_supply"] = "Total supply must be positive"
	}
	minDonation := "0"
	if req.MinDonation != "" {
		min, err := decimal.NewFromString(req.MinDonation)
		if err != nil || min.IsNegative() {
			fields["min_donation"] = "Minimum donation must be zero or positive"
		} else {
			minDonation = min.String()
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.ValidationFields(fields)
	}

	var project models.Project
	if err := s.db.First(&project, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Project not found")
		}
		return nil, apperrors.Internal(err)
	}

	benefit := &models.Benefit{
		ProjectID:        req.ProjectID,
		Title:            req.Title,
		Description:      req.Description,
		Type:             req.Type,
		AssetCode:        req.AssetCode,
		TotalSupply:      req.TotalSupply,
		IssuedSupply:     0,
		MinDonation:      minDonation,
		DonationCurrency: req.DonationCurrency,
		ImageURL:         req.ImageURL,
		IsActive:         true,
	}
	if err := s.db.Create(benefit).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return benefit, nil
}

func (s *benefitService) GetBenefit(id uint) (*models.Benefit, error) {
	var benefit models.Benefit
	if err := s.db.First(&benefit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Benefit not found")
		}
		return nil, apperrors.Internal(err)
	}
	clampSupply(&benefit)
	return &benefit, nil
}

func (s *benefitService) ListByProject(projectID uint) ([]models.Benefit, error) {
	var benefits []models.Benefit
	err := s.db.Where("project_id = ?", projectID).Order("created_at ASC, id ASC").Find(&benefits).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	for i := range benefits {
		clampSupply(&benefits[i])
	}
	return benefits, nil
}

// ToggleActive flips the active flag and returns the updated record.
func (s *benefitService) ToggleActive(id uint) (*models.Benefit, error) {
	benefit, err := s.GetBenefit(id)
	if err != nil {
		return nil, err
	}

	benefit.IsActive = !benefit.IsActive
	if err := s.db.Model(benefit).Update("is_active", benefit.IsActive).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return benefit, nil
}

// GenerateImage writes a pending job row before calling the external
// generator so a failure between generation and the benefit update leaves a
// record to reconcile instead of an unreferenced image. A single attempt is
// made.
func (s *benefitService) GenerateImage(ctx context.Context, req GenerateImageRequest) (*models.ImageJob, error) {
	if req.BenefitID != nil {
		benefit, err := s.GetBenefit(*req.BenefitID)
		if err != nil {
			return nil, err
		}
		req.Title = benefit.Title
		req.Description = benefit.Description
		req.Type = benefit.Type
		req.MinDonation = benefit.MinDonation
		req.TotalSupply = benefit.TotalSupply
	}
	if req.Title == "" {
		return nil, apperrors.ValidationFields(map[string]string{"title": "Title is required"})
	}

	job := &models.ImageJob{
		ID:        uuid.New().String(),
		BenefitID: req.BenefitID,
		Prompt:    buildImagePrompt(req),
		Status:    models.ImageJobStatusPending,
	}
	if err := s.db.Create(job).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	url, err := s.images.Generate(ctx, job.Prompt)
	if err != nil {
		job.Status = models.ImageJobStatusFailed
		job.Error = err.Error()
		s.db.Model(job).Updates(map[string]interface{}{
			"status": models.ImageJobStatusFailed,
			"error":  err.Error(),
		})
		return nil, apperrors.ExternalService(err.Error(), err)
	}

	job.Status = models.ImageJobStatusCompleted
	job.ResultURL = url
	if err := s.db.Model(job).Updates(map[string]interface{}{
		"status":     models.ImageJobStatusCompleted,
		"result_url": url,
	}).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	if req.BenefitID != nil {
		if err := s.db.Model(&models.Benefit{}).Where("id = ?", *req.BenefitID).Update("image_url", url).Error; err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	return job, nil
}

// ListAbandonedImageJobs returns pending jobs older than the cutoff, the
// input for the reconciliation sweep.
func (s *benefitService) ListAbandonedImageJobs(olderThan time.Duration) ([]models.ImageJob, error) {
	cutoff := time.Now().Add(-olderThan)
	var jobs []models.ImageJob
	err := s.db.Where("status = ? AND created_at < ?", models.ImageJobStatusPending, cutoff).
		Order("created_at ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return jobs, nil
}

func (s *benefitService) HoldingsByWallet(wallet string) ([]models.BenefitHolding, error) {
	if !stellar.IsValidAccountAddress(wallet) {
		return nil, apperrors.ValidationFields(map[string]string{
			"wallet": "Invalid Stellar wallet address",
		})
	}

	var holdings []models.BenefitHolding
	err := s.db.Where("holder_wallet = ?", wallet).
		Preload("Benefit").
		Order("received_at DESC").
		Find(&holdings).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	for i := range holdings {
		clampSupply(&holdings[i].Benefit)
	}
	return holdings, nil
}

// clampSupply keeps the issued counter within the total in anything
// returned to clients, even if the minting flow has drifted.
func clampSupply(b *models.Benefit) {
	if b.IssuedSupply > b.TotalSupply {
		b.IssuedSupply = b.TotalSupply
	}
}

func buildImagePrompt(req GenerateImageRequest) string {
	return fmt.Sprintf(
		"Digital reward token artwork for %q (%s). %s Minimum donation %s, limited to %d tokens.",
		req.Title, req.Type, req.Description, req.MinDonation, req.TotalSupply,
	)
}
