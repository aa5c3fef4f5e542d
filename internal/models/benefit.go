package models

import "time"

type BenefitType string

const (
	BenefitTypeCollectible BenefitType = "collectible"
	BenefitTypeMembership  BenefitType = "membership"
	BenefitTypeAccess      BenefitType = "access"
	BenefitTypeDiscount    BenefitType = "discount"
)

// Benefit is a digital reward token a project owner issues to donors that
// meet the minimum-donation threshold. IssuedSupply is incremented by the
// token-minting flow; this layer only reads it for availability.
type Benefit struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	ProjectID        uint        `gorm:"not null;index" json:"project_id"`
	Title            string      `gorm:"not null" json:"title"`
	Description      string      `json:"description"`
	Type             BenefitType `gorm:"not null" json:"type"` // collectible, membership, access, discount
	AssetCode        string      `gorm:"not null" json:"asset_code"`
	TotalSupply      int64       `gorm:"not null" json:"total_supply"`
	IssuedSupply     int64       `gorm:"default:0" json:"issued_supply"`
	MinDonation      string      `gorm:"default:0" json:"min_donation"` // decimal string
	DonationCurrency string      `json:"donation_currency"`
	ImageURL         string      `json:"image_url"`
	IsActive         bool        `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`

	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}

// Available returns how many tokens can still be issued.
func (b *Benefit) Available() int64 {
	available := b.TotalSupply - b.IssuedSupply
	if available < 0 {
		return 0
	}
	return available
}

// SoldOut reports whether the full supply has been issued.
func (b *Benefit) SoldOut() bool {
	return b.Available() <= 0
}

// ValidBenefitType reports whether the given type is a recognized value.
func ValidBenefitType(t BenefitType) bool {
	switch t {
	case BenefitTypeCollectible, BenefitTypeMembership, BenefitTypeAccess, BenefitTypeDiscount:
		return true
	}
	return false
}

// BenefitHolding associates a donor wallet with a benefit it has received.
// Written by the token-minting flow; read-only from this layer.
type BenefitHolding struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BenefitID    uint      `gorm:"not null;index" json:"benefit_id"`
	HolderWallet string    `gorm:"size:56;not null;index" json:"holder_wallet"`
	TxHash       string    `json:"tx_hash"`
	ReceivedAt   time.Time `json:"received_at"`

	Benefit Benefit `gorm:"foreignKey:BenefitID" json:"benefit,omitempty"`
}
