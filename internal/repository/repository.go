package repository

import "gorm.io/gorm"

type Repository struct {
	DB *gorm.DB

	// Repositories as interfaces for easier testing

	DeploymentMetadata DeploymentMetadataRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:                 db,
		DeploymentMetadata: NewDeploymentMetadataRepository(db),
	}
}
