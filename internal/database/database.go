package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/colmena-labs/stellardonate/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the database selected by the URL scheme (postgres://
// for Postgres, anything else is treated as a SQLite path) and runs
// migrations.
func NewDatabase(databaseURL string) (*Database, error) {
	// Configure GORM logger - only log errors and slow queries
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      false,
			Colorful:                  false,
		},
	)

	dialector := openDialector(databaseURL)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		// Duplicate-key errors are part of the control flow (donation tx
		// hash, issuer per project), so translate them to gorm errors.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db}
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return database, nil
}

func openDialector(databaseURL string) gorm.Dialector {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return postgres.Open(databaseURL)
	}
	return sqlite.Open(databaseURL)
}

func (d *Database) migrate() error {
	return d.DB.AutoMigrate(
		&models.UserProfile{},
		&models.Session{},
		&models.Project{},
		&models.RoadmapItem{},
		&models.Donation{},
		&models.IssuerAccount{},
		&models.Benefit{},
		&models.BenefitHolding{},
		&models.ImageJob{},
	)
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
