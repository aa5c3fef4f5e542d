package services

import (
	"errors"

	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/models"
	"github.com/colmena-labs/stellardonate/internal/stellar"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProjectService handles fundraising project lifecycle
type ProjectService interface {
	CreateProject(ownerID uint, req CreateProjectRequest) (*models.Project, error)
	GetProject(id uint) (*models.Project, error)
	UpdateProject(id uint, req UpdateProjectRequest) (*models.Project, error)
	PublishProject(id uint) (*models.Project, error)
	AddRoadmapItem(projectID uint, req RoadmapItemRequest) (*models.RoadmapItem, error)
	ListRoadmap(projectID uint) ([]models.RoadmapItem, error)
}

type projectService struct {
	db        *gorm.DB
	validator *validator.Validate
}

type CreateProjectRequest struct {
	Title            string `json:"title" validate:"required"`
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	GoalAmount       string `json:"goal_amount"`
	WalletAddress    string `json:"wallet_address"`
	CoverImageURL    string `json:"cover_image_url"`
}

// UpdateProjectRequest is a tagged union of the two update variants:
// a status-only update (published <-> paused) and a field update. Which
// variant applies is dispatched on the fields present in the payload.
type UpdateProjectRequest struct {
	Status           *models.ProjectStatus `json:"status,omitempty"`
	Title            *string               `json:"title,omitempty"`
	ShortDescription *string               `json:"short_description,omitempty"`
	Description      *string               `json:"description,omitempty"`
	Category         *string               `json:"category,omitempty"`
	GoalAmount       *string               `json:"goal_amount,omitempty"`
	WalletAddress    *string               `json:"wallet_address,omitempty"`
	CoverImageURL    *string               `json:"cover_image_url,omitempty"`
}

func (r *UpdateProjectRequest) statusOnly() bool {
	return r.Status != nil &&
		r.Title == nil && r.ShortDescription == nil && r.Description == nil &&
		r.Category == nil && r.GoalAmount == nil && r.WalletAddress == nil &&
		r.CoverImageURL == nil
}

type RoadmapItemRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

// NewProjectService creates a new ProjectService
func NewProjectService(db *gorm.DB) ProjectService {
	return &projectService{db: db, validator: validator.New()}
}

func (s *projectService) CreateProject(ownerID uint, req CreateProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.ValidationFields(map[string]string{"title": "Title is required"})
	}
	if fields := validateProjectFields(req.GoalAmount, req.WalletAddress); len(fields) > 0 {
		return nil, apperrors.ValidationFields(fields)
	}

	project := &models.Project{
		OwnerID:          ownerID,
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		Category:         req.Category,
		GoalAmount:       req.GoalAmount,
		CurrentAmount:    "0",
		WalletAddress:    req.WalletAddress,
		Status:           models.ProjectStatusDraft,
		CoverImageURL:    req.CoverImageURL,
	}
	if err := s.db.Create(project).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return project, nil
}

func (s *projectService) GetProject(id uint) (*models.Project, error) {
	var project models.Project
	err := s.db.Preload("Roadmap", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Project not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &project, nil
}

func (s *projectService) UpdateProject(id uint, req UpdateProjectRequest) (*models.Project, error) {
	project, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}

	if req.statusOnly() {
		return s.updateStatus(project, *req.Status)
	}
	if req.Status != nil {
		return nil, apperrors.Validation("Status updates cannot be combined with field updates")
	}

	fields := map[string]string{}
	if req.Title != nil && *req.Title == "" {
		fields["title"] = "Title cannot be empty"
	}
	if req.GoalAmount != nil {
		for k, v := range validateProjectFields(*req.GoalAmount, "") {
			fields[k] = v
		}
	}
	if req.WalletAddress != nil {
		if *req.WalletAddress == "" {
			// The publish gate required a wallet; once the project has left
			// draft it cannot be silently removed.
			if project.Status != models.ProjectStatusDraft {
				fields["wallet_address"] = "Wallet address cannot be removed after publishing"
			}
		} else {
			for k, v := range validateProjectFields("", *req.WalletAddress) {
				fields[k] = v
			}
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.ValidationFields(fields)
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.ShortDescription != nil {
		project.ShortDescription = *req.ShortDescription
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Category != nil {
		project.Category = *req.Category
	}
	if req.GoalAmount != nil {
		project.GoalAmount = *req.GoalAmount
	}
	if req.WalletAddress != nil {
		project.WalletAddress = *req.WalletAddress
	}
	if req.CoverImageURL != nil {
		project.CoverImageURL = *req.CoverImageURL
	}

	if err := s.db.Save(project).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return project, nil
}

// updateStatus handles the status-only variant. Publishing a draft goes
// through PublishProject so the pre-publish checks cannot be skipped.
func (s *projectService) updateStatus(project *models.Project, status models.ProjectStatus) (*models.Project, error) {
	switch status {
	case models.ProjectStatusPaused:
		if project.Status != models.ProjectStatusPublished {
			return nil, apperrors.Validation("Only a published project can be paused")
		}
	case models.ProjectStatusPublished:
		if project.Status != models.ProjectStatusPaused {
			return nil, apperrors.Validation("Use publish to take a draft project live")
		}
	default:
		return nil, apperrors.Validation("Status must be published or paused")
	}

	project.Status = status
	if err := s.db.Model(project).Update("status", status).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return project, nil
}

func (s *projectService) PublishProject(id uint) (*models.Project, error) {
	project, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}

	if project.Status == models.ProjectStatusPublished {
		return nil, apperrors.Validation("Project is already published")
	}
	fields := map[string]string{}
	if project.WalletAddress == "" {
		fields["wallet_address"] = "A wallet address is required before publishing"
	}
	if len(project.Roadmap) == 0 {
		fields["roadmap"] = "At least one roadmap item is required before publishing"
	}
	if len(fields) > 0 {
		return nil, apperrors.ValidationFields(fields)
	}

	project.Status = models.ProjectStatusPublished
	if err := s.db.Model(project).Update("status", models.ProjectStatusPublished).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return project, nil
}

func (s *projectService) AddRoadmapItem(projectID uint, req RoadmapItemRequest) (*models.RoadmapItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.ValidationFields(map[string]string{"title": "Title is required"})
	}
	if _, err := s.GetProject(projectID); err != nil {
		return nil, err
	}

	item := &models.RoadmapItem{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Position:    req.Position,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return item, nil
}

func (s *projectService) ListRoadmap(projectID uint) ([]models.RoadmapItem, error) {
	if _, err := s.GetProject(projectID); err != nil {
		return nil, err
	}
	var items []models.RoadmapItem
	err := s.db.Where("project_id = ?", projectID).Order("position ASC, id ASC").Find(&items).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}

func validateProjectFields(goalAmount, walletAddress string) map[string]string {
	fields := map[string]string{}
	if goalAmount != "" {
		goal, err := decimal.NewFromString(goalAmount)
		if err != nil || goal.IsNegative() {
			fields["goal_amount"] = "Goal amount must be a non-negative number"
		}
	}
	if walletAddress != "" && !stellar.IsValidAccountAddress(walletAddress) {
		fields["wallet_address"] = "Invalid Stellar wallet address"
	}
	return fields
}
