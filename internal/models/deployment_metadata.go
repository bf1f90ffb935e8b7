package models

import (
	"gorm.io/gorm"
)

// DeploymentMetadata is one key/value pair recorded for a deployment
type DeploymentMetadata struct {
	gorm.Model

	Key   string `gorm:"uniqueIndex"`
	Value string
}
