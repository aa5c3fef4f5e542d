package services_test

import (
	"context"
	"fmt"

	"github.com/colmena-labs/stellardonate/internal/database"
	"github.com/colmena-labs/stellardonate/internal/models"
	"github.com/stellar/go/keypair"
	"gorm.io/gorm"
)

// newTestDB opens a fresh in-memory database with migrations applied.
func newTestDB() (*database.Database, error) {
	return database.NewDatabase(":memory:")
}

// newTestWallet returns a freshly generated, well-formed Stellar address.
func newTestWallet() string {
	kp, err := keypair.Random()
	if err != nil {
		panic(err)
	}
	return kp.Address()
}

func createTestUser(db *gorm.DB, email string) (*models.UserProfile, error) {
	user := &models.UserProfile{
		Email:        email,
		PasswordHash: "x",
		Name:         "Test User",
		Role:         models.UserRolePerson,
	}
	err := db.Create(user).Error
	return user, err
}

func createTestProject(db *gorm.DB, ownerID uint) (*models.Project, error) {
	project := &models.Project{
		OwnerID:       ownerID,
		Title:         "Test Project",
		GoalAmount:    "1000",
		CurrentAmount: "0",
		WalletAddress: newTestWallet(),
		Status:        models.ProjectStatusDraft,
	}
	err := db.Create(project).Error
	return project, err
}

// fakeStellarClient is an offline stand-in for the Horizon-backed client.
type fakeStellarClient struct {
	fundHash  string
	fundErr   error
	fundCalls int
}

func (f *fakeStellarClient) NewIssuerKeypair() (string, error) {
	kp, err := keypair.Random()
	if err != nil {
		return "", err
	}
	return kp.Address(), nil
}

func (f *fakeStellarClient) FundAccount(ctx context.Context, destination string) (string, error) {
	f.fundCalls++
	if f.fundErr != nil {
		return "", f.fundErr
	}
	if f.fundHash != "" {
		return f.fundHash, nil
	}
	return fmt.Sprintf("fundtx-%d", f.fundCalls), nil
}

// fakeImageClient is an offline stand-in for the image-generation API.
type fakeImageClient struct {
	url   string
	err   error
	calls int
}

func (f *fakeImageClient) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.url != "" {
		return f.url, nil
	}
	return "https://images.example.com/generated.png", nil
}
