package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/colmena-labs/stellardonate/internal/api"
	"github.com/colmena-labs/stellardonate/internal/config"
	"github.com/colmena-labs/stellardonate/internal/database"
	"github.com/colmena-labs/stellardonate/internal/imagegen"
	"github.com/colmena-labs/stellardonate/internal/metrics"
	"github.com/colmena-labs/stellardonate/internal/server"
	"github.com/colmena-labs/stellardonate/internal/stellar"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments configure the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	stellarClient, err := stellar.NewClient(cfg.HorizonURL, cfg.StellarNetwork, cfg.FundingSecret, cfg.IssuerFundingAmount)
	if err != nil {
		log.Fatal("Failed to initialize Stellar client:", err)
	}

	imageClient := imagegen.NewClient(cfg.ImageAPIURL, cfg.ImageAPIKey)

	svcs := server.InitializeServices(db.DB, stellarClient, imageClient, cfg.JWTSecret)
	srv := api.NewServer(
		svcs.Users,
		svcs.Sessions,
		svcs.Projects,
		svcs.Donations,
		svcs.Issuers,
		svcs.Benefits,
		metrics.NewMetrics(),
		cfg.BaseURL,
	)

	go func() {
		log.Printf("StellarDonate listening on port %d (%s)", cfg.Port, cfg.StellarNetwork)
		if err := srv.Start(cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	if err := srv.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
