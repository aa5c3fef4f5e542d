package models

import "time"

type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusPublished ProjectStatus = "published"
	ProjectStatusPaused    ProjectStatus = "paused"
)

// Project represents a fundraising campaign owned by a single user.
type Project struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	OwnerID          uint          `gorm:"not null;index" json:"owner_id"`
	Title            string        `gorm:"not null" json:"title"`
	ShortDescription string        `json:"short_description"`
	Description      string        `json:"description"`
	Category         string        `json:"category"`
	GoalAmount       string        `json:"goal_amount"`    // decimal string
	CurrentAmount    string        `gorm:"default:0" json:"current_amount"` // decimal string
	WalletAddress    string        `gorm:"size:56" json:"wallet_address"`
	Status           ProjectStatus `gorm:"default:draft" json:"status"` // draft, published, paused
	CoverImageURL    string        `json:"cover_image_url"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`

	Owner   UserProfile   `gorm:"foreignKey:OwnerID" json:"-"`
	Roadmap []RoadmapItem `gorm:"foreignKey:ProjectID" json:"roadmap,omitempty"`
	Issuer  *IssuerAccount `gorm:"foreignKey:ProjectID" json:"issuer,omitempty"`
}

// RoadmapItem is a milestone on a project's roadmap. At least one is
// required before the project can be published.
type RoadmapItem struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ProjectID   uint       `gorm:"not null;index" json:"project_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	Position    int        `gorm:"default:0" json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
