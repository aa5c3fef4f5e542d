package models

import "time"

// IssuerAccount is the Stellar account that mints a project's benefit
// tokens. Exactly one exists per project; the unique index on the project
// reference is what makes concurrent duplicate creates safe. Rows are never
// deleted.
type IssuerAccount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex;not null" json:"project_id"`
	PublicKey string    `gorm:"size:56;not null" json:"public_key"`
	Funded    bool      `gorm:"default:false" json:"funded"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
