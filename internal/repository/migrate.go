package repository

import (
	"github.com/porter-dev/argocd-deployer/internal/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB, debug bool) error {
	instanceDB := db

	if debug {
		instanceDB = instanceDB.Debug()
	}

	return instanceDB.AutoMigrate(
		&models.DeploymentMetadata{},
	)
}
