package services

import (
	"errors"

	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/models"
	"github.com/colmena-labs/stellardonate/internal/stellar"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// recognizedAssets are the asset codes donors can record payments in.
var recognizedAssets = map[string]bool{
	"XLM":  true,
	"USDC": true,
	"EURC": true,
}

// recordRetries bounds how often a record is retried after losing the
// running-total swap to a concurrent record.
const recordRetries = 10

// errStaleTotal signals that the running total changed between reading it
// and swapping in the new value.
var errStaleTotal = errors.New("project total changed while recording donation")

// DonationService records receipts for payments that were already submitted
// to the Stellar network by the donor's wallet. It does not verify the
// transaction on-chain; the unique index on the transaction hash is what
// prevents the same payment from being recorded twice.
type DonationService interface {
	Record(req RecordDonationRequest) (*models.Donation, error)
	ListByProject(projectID uint, limit int) ([]models.Donation, error)
}

type donationService struct {
	db *gorm.DB
}

type RecordDonationRequest struct {
	ProjectID   uint                  `json:"project_id"`
	DonorWallet string                `json:"donor_wallet"`
	Amount      string                `json:"amount"`
	Asset       string                `json:"asset"`
	TxHash      string                `json:"tx_hash"`
	Network     models.StellarNetwork `json:"network"`
}

// NewDonationService creates a new DonationService
func NewDonationService(db *gorm.DB) DonationService {
	return &donationService{db: db}
}

func (s *donationService) Record(req RecordDonationRequest) (*models.Donation, error) {
	if fields := validateDonation(req); len(fields) > 0 {
		return nil, apperrors.ValidationFields(fields)
	}

	if err := s.db.First(&models.Project{}, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Project not found")
		}
		return nil, apperrors.Internal(err)
	}

	amount, _ := decimal.NewFromString(req.Amount)

	// Receipt and running total move together or not at all. The total is
	// advanced with a compare-and-swap on the value read inside the same
	// transaction: a concurrent record that replaced it in the meantime
	// makes the swap miss, the whole transaction rolls back, and the write
	// is retried against the fresh value. The unique index on the
	// transaction hash rejects duplicates on any attempt.
	for attempt := 0; attempt < recordRetries; attempt++ {
		donation := &models.Donation{
			ProjectID:   req.ProjectID,
			DonorWallet: req.DonorWallet,
			Amount:      req.Amount,
			Asset:       req.Asset,
			TxHash:      req.TxHash,
			Network:     req.Network,
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(donation).Error; err != nil {
				return err
			}

			var project models.Project
			if err := tx.First(&project, req.ProjectID).Error; err != nil {
				return err
			}
			current, err := decimal.NewFromString(project.CurrentAmount)
			if err != nil {
				current = decimal.Zero
			}

			res := tx.Model(&models.Project{}).
				Where("id = ? AND current_amount = ?", project.ID, project.CurrentAmount).
				Update("current_amount", current.Add(amount).String())
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errStaleTotal
			}
			return nil
		})
		switch {
		case err == nil:
			return donation, nil
		case errors.Is(err, errStaleTotal):
			continue
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, apperrors.ValidationFields(map[string]string{
				"tx_hash": "This transaction has already been recorded",
			})
		default:
			return nil, apperrors.Internal(err)
		}
	}

	return nil, apperrors.Internal(errStaleTotal)
}

// ListByProject returns the most recent donations for a project, newest
// first.
func (s *donationService) ListByProject(projectID uint, limit int) ([]models.Donation, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	var donations []models.Donation
	err := s.db.Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&donations).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return donations, nil
}

// validateDonation checks every precondition and reports each failure under
// its own field so the client gets per-field detail in one response.
func validateDonation(req RecordDonationRequest) map[string]string {
	fields := map[string]string{}

	if req.ProjectID == 0 {
		fields["project_id"] = "Project ID is required"
	}

	if req.DonorWallet == "" {
		fields["donor_wallet"] = "Donor wallet is required"
	} else if !stellar.IsValidAccountAddress(req.DonorWallet) {
		fields["donor_wallet"] = "Invalid Stellar wallet address"
	}

	if req.Amount == "" {
		fields["amount"] = "Amount is required"
	} else {
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil || !amount.IsPositive() {
			fields["amount"] = "Amount must be positive"
		}
	}

	if req.Asset == "" {
		fields["asset"] = "Asset is required"
	} else if !recognizedAssets[req.Asset] {
		fields["asset"] = "Unrecognized asset code"
	}

	if req.TxHash == "" {
		fields["tx_hash"] = "Transaction hash is required"
	}

	if req.Network == "" {
		fields["network"] = "Network is required"
	} else if !models.ValidNetwork(req.Network) {
		fields["network"] = "Network must be testnet or mainnet"
	}

	return fields
}
