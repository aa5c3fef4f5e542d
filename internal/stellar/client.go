package stellar

import (
	"context"
	"fmt"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
)

// Client is the surface of the Stellar network this service depends on.
// Keypair generation is local; funding submits a transaction to Horizon.
type Client interface {
	NewIssuerKeypair() (publicKey string, err error)
	FundAccount(ctx context.Context, destination string) (txHash string, err error)
}

// IsValidAccountAddress reports whether addr is a well-formed Stellar
// account address: the strkey "G" prefix plus 55 base32 characters with a
// valid checksum.
func IsValidAccountAddress(addr string) bool {
	if len(addr) != 56 {
		return false
	}
	return strkey.IsValidEd25519PublicKey(addr)
}

type horizonStellarClient struct {
	horizon       horizonclient.ClientInterface
	source        *keypair.Full
	passphrase    string
	fundingAmount string
}

// NewClient builds a Client backed by Horizon. networkName selects the
// passphrase (testnet or mainnet); fundingSecret is the platform-controlled
// source account used to fund new issuer accounts.
func NewClient(horizonURL, networkName, fundingSecret, fundingAmount string) (Client, error) {
	passphrase := network.TestNetworkPassphrase
	if networkName == "mainnet" {
		passphrase = network.PublicNetworkPassphrase
	}

	var source *keypair.Full
	if fundingSecret != "" {
		kp, err := keypair.ParseFull(fundingSecret)
		if err != nil {
			return nil, fmt.Errorf("invalid platform funding secret: %w", err)
		}
		source = kp
	}

	return &horizonStellarClient{
		horizon:       &horizonclient.Client{HorizonURL: horizonURL},
		source:        source,
		passphrase:    passphrase,
		fundingAmount: fundingAmount,
	}, nil
}

func (c *horizonStellarClient) NewIssuerKeypair() (string, error) {
	kp, err := keypair.Random()
	if err != nil {
		return "", fmt.Errorf("failed to generate keypair: %w", err)
	}
	return kp.Address(), nil
}

// FundAccount sends the configured native amount from the platform source
// account to the destination with a CreateAccount operation. The Horizon
// SDK applies its own transaction validity window; no retry is attempted.
func (c *horizonStellarClient) FundAccount(ctx context.Context, destination string) (string, error) {
	if c.source == nil {
		return "", fmt.Errorf("platform funding account is not configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sourceAccount, err := c.horizon.AccountDetail(horizonclient.AccountRequest{
		AccountID: c.source.Address(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to load funding account: %w", err)
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &sourceAccount,
		IncrementSequenceNum: true,
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(300),
		},
		Operations: []txnbuild.Operation{
			&txnbuild.CreateAccount{
				Destination: destination,
				Amount:      c.fundingAmount,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to build funding transaction: %w", err)
	}

	tx, err = tx.Sign(c.passphrase, c.source)
	if err != nil {
		return "", fmt.Errorf("failed to sign funding transaction: %w", err)
	}

	resp, err := c.horizon.SubmitTransaction(tx)
	if err != nil {
		return "", fmt.Errorf("funding transaction failed: %w", err)
	}

	return resp.Hash, nil
}
