package models

import "time"

type StellarNetwork string

const (
	StellarNetworkTestnet StellarNetwork = "testnet"
	StellarNetworkMainnet StellarNetwork = "mainnet"
)

// Donation is the receipt for a payment the donor already submitted to the
// Stellar network. Rows are immutable; the unique index on the transaction
// hash is what prevents the same on-chain payment from being recorded twice.
type Donation struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   uint           `gorm:"not null;index" json:"project_id"`
	DonorWallet string         `gorm:"size:56;not null" json:"donor_wallet"`
	Amount      string         `gorm:"not null" json:"amount"` // decimal string
	Asset       string         `gorm:"not null" json:"asset"`
	TxHash      string         `gorm:"uniqueIndex;not null" json:"tx_hash"`
	Network     StellarNetwork `gorm:"not null" json:"network"` // testnet, mainnet
	CreatedAt   time.Time      `json:"created_at"`

	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}

// ValidNetwork reports whether the given network is one of the two
// recognized values.
func ValidNetwork(network StellarNetwork) bool {
	return network == StellarNetworkTestnet || network == StellarNetworkMainnet
}
