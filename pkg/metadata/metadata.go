// Package metadata records deployment outcomes in a key/value store that later,
// independent pipeline steps can read back.
package metadata

import (
	"context"
	"fmt"
	"sync"
)

// Fields written for every application
const (
	FieldStatus          = "status"
	FieldResult          = "result"
	FieldCurrentVersion  = "current_version"
	FieldPreviousVersion = "previous_version"
	FieldRollbackFrom    = "rollback_from"
	FieldRollbackTo      = "rollback_to"
	FieldRunID           = "run_id"
)

// Key builds the key a field of an application is stored under:
// deployment:<controller>:<app>:<field>
func Key(controller, app, field string) string {
	return fmt.Sprintf("deployment:%s:%s:%s", controller, app, field)
}

// Store is a key/value store readable by later invocations
type Store interface {
	Set(ctx context.Context, key, value string) error

	// Get returns false when the key has never been set
	Get(ctx context.Context, key string) (string, bool, error)
}

// MemoryStore keeps values for the lifetime of the process only
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value

	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]

	return v, ok, nil
}

// Values returns a copy of everything stored
func (s *MemoryStore) Values() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make(map[string]string, len(s.values))

	for k, v := range s.values {
		res[k] = v
	}

	return res
}
