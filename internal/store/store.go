package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Backend when a key has no value.
var ErrNotFound = errors.New("state not found")

// Backend stores string values per learner and key.
type Backend interface {
	Get(learnerID, key string) (string, error)
	Set(learnerID, key, value string) error
	Delete(learnerID, key string) error
}

// LearnerStore scopes a Backend to one learner. It satisfies the quiz
// engine's key/value store, the way a browser's local storage is scoped to
// one visitor.
type LearnerStore struct {
	backend   Backend
	learnerID string
}

// ForLearner returns a store over backend for learnerID.
func ForLearner(backend Backend, learnerID string) *LearnerStore {
	return &LearnerStore{backend: backend, learnerID: learnerID}
}

// Get returns the value for key and whether it exists.
func (s *LearnerStore) Get(key string) (string, bool, error) {
	value, err := s.backend.Get(s.learnerID, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s for learner %s: %w", key, s.learnerID, err)
	}
	return value, true, nil
}

// Set overwrites the value for key.
func (s *LearnerStore) Set(key, value string) error {
	if err := s.backend.Set(s.learnerID, key, value); err != nil {
		return fmt.Errorf("failed to set %s for learner %s: %w", key, s.learnerID, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *LearnerStore) Delete(key string) error {
	err := s.backend.Delete(s.learnerID, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete %s for learner %s: %w", key, s.learnerID, err)
	}
	return nil
}
