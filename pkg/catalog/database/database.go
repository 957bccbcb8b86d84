package database

import (
	"fmt"

	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/models"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Migrate creates the catalog tables and their uniqueness constraints.
// The build identity index is load-bearing: it is what rejects a racing
// duplicate ingestion at write time.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Project{},
		&models.VersionFamily{},
		&models.Version{},
		&models.Build{},
		&models.Change{},
		&models.Artifact{},
		&models.Download{},
		&models.Latest{},
	)
}

func Connect(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}
