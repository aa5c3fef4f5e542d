package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration values from environment.
type Config struct {
	Port        int
	BaseURL     string
	DatabaseURL string

	// Stellar settings
	StellarNetwork      string // testnet, mainnet
	HorizonURL          string
	FundingSecret       string // platform-controlled source account
	IssuerFundingAmount string // native XLM amount sent when funding an issuer

	// Image generation settings
	ImageAPIURL string
	ImageAPIKey string

	JWTSecret string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	port := 8080
	if portEnv := os.Getenv("PORT"); portEnv != "" {
		val, err := strconv.Atoi(portEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value: %v", err)
		}
		port = val
	}

	network := os.Getenv("STELLAR_NETWORK")
	if network == "" {
		network = "testnet"
	}
	if network != "testnet" && network != "mainnet" {
		return nil, fmt.Errorf("invalid STELLAR_NETWORK value: %s", network)
	}

	horizonURL := os.Getenv("HORIZON_URL")
	if horizonURL == "" {
		if network == "mainnet" {
			horizonURL = "https://horizon.stellar.org"
		} else {
			horizonURL = "https://horizon-testnet.stellar.org"
		}
	}

	fundingAmount := os.Getenv("ISSUER_FUNDING_AMOUNT")
	if fundingAmount == "" {
		// Enough for the minimum balance plus trustline reserves and fees.
		fundingAmount = "5"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:                port,
		BaseURL:             os.Getenv("BASE_URL"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		StellarNetwork:      network,
		HorizonURL:          horizonURL,
		FundingSecret:       os.Getenv("PLATFORM_FUNDING_SECRET"),
		IssuerFundingAmount: fundingAmount,
		ImageAPIURL:         os.Getenv("IMAGE_API_URL"),
		ImageAPIKey:         os.Getenv("IMAGE_API_KEY"),
		JWTSecret:           jwtSecret,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}
