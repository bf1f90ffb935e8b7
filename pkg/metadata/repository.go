package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/porter-dev/argocd-deployer/internal/repository"
	"gorm.io/gorm"
)

// RepositoryStore keeps values in a SQL database shared between pipelines
type RepositoryStore struct {
	repo repository.DeploymentMetadataRepository
}

func NewRepositoryStore(repo repository.DeploymentMetadataRepository) *RepositoryStore {
	return &RepositoryStore{repo: repo}
}

func (s *RepositoryStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.repo.SetValue(key, value); err != nil {
		return fmt.Errorf("could not store %s: %w", key, err)
	}

	return nil
}

func (s *RepositoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	md, err := s.repo.ReadValue(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("could not read %s: %w", key, err)
	}

	return md.Value, true, nil
}
