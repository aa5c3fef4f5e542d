package models

import "time"

type ImageJobStatus string

const (
	ImageJobStatusPending   ImageJobStatus = "pending"
	ImageJobStatusCompleted ImageJobStatus = "completed"
	ImageJobStatusFailed    ImageJobStatus = "failed"
)

// ImageJob tracks one call to the external image generator. The row is
// written before the external call so a crash between generation and the
// benefit update leaves a pending record to reconcile instead of an
// unreferenced image.
type ImageJob struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	BenefitID *uint          `gorm:"index" json:"benefit_id,omitempty"`
	Prompt    string         `gorm:"not null" json:"prompt"`
	Status    ImageJobStatus `gorm:"default:pending" json:"status"` // pending, completed, failed
	ResultURL string         `json:"result_url"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
