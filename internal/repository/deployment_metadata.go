//go:generate mockgen -source=deployment_metadata.go -destination=mocks/deployment_metadata.go
package repository

import (
	"github.com/porter-dev/argocd-deployer/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeploymentMetadataRepository wraps all actions related to stored deployment metadata
type DeploymentMetadataRepository interface {
	SetValue(key, value string) (*models.DeploymentMetadata, error)
	ReadValue(key string) (*models.DeploymentMetadata, error)
	ListValues(prefix string) ([]*models.DeploymentMetadata, error)
}

type deploymentMetadataRepository struct {
	db *gorm.DB
}

// NewDeploymentMetadataRepository returns the gorm backed repository
func NewDeploymentMetadataRepository(db *gorm.DB) DeploymentMetadataRepository {
	return deploymentMetadataRepository{db}
}

func (r deploymentMetadataRepository) SetValue(key, value string) (*models.DeploymentMetadata, error) {
	md := &models.DeploymentMetadata{
		Key:   key,
		Value: value,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(md).Error

	if err != nil {
		return nil, err
	}

	return md, nil
}

// ReadValue returns gorm.ErrRecordNotFound for keys that were never set
func (r deploymentMetadataRepository) ReadValue(key string) (*models.DeploymentMetadata, error) {
	md := &models.DeploymentMetadata{}

	if err := r.db.Where("key = ?", key).First(md).Error; err != nil {
		return nil, err
	}

	return md, nil
}

func (r deploymentMetadataRepository) ListValues(prefix string) ([]*models.DeploymentMetadata, error) {
	values := make([]*models.DeploymentMetadata, 0)

	if err := r.db.Where("key LIKE ?", prefix+"%").Order("key asc").Find(&values).Error; err != nil {
		return nil, err
	}

	return values, nil
}
