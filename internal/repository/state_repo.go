package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eartraining/internal/database"
	"eartraining/internal/models"
	"eartraining/internal/store"
)

// StateRepository persists learner state in the learner_state table. It is
// the SQL store.Backend.
type StateRepository struct {
	db  database.DBTX
	now func() time.Time
}

// NewStateRepository creates a state repository over db or a transaction
func NewStateRepository(db database.DBTX) *StateRepository {
	return &StateRepository{db: db, now: time.Now}
}

// Get retrieves a value by learner and key
func (r *StateRepository) Get(learnerID, key string) (string, error) {
	var value string
	query := "SELECT value FROM learner_state WHERE learner_id = ? AND state_key = ?"
	err := r.db.QueryRow(query, learnerID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get learner state: %w", err)
	}
	return value, nil
}

// Set inserts or replaces a value
func (r *StateRepository) Set(learnerID, key, value string) error {
	return r.put(models.LearnerState{
		LearnerID: learnerID,
		Key:       key,
		Value:     value,
		UpdatedAt: r.now().UTC(),
	})
}

// Put writes a state row keeping its UpdatedAt, used when restoring backups.
func (r *StateRepository) Put(state models.LearnerState) error {
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = r.now()
	}
	state.UpdatedAt = state.UpdatedAt.UTC()
	return r.put(state)
}

func (r *StateRepository) put(state models.LearnerState) error {
	query := r.db.GetDialect().UpsertStateQuery()
	if _, err := r.db.Exec(query, state.LearnerID, state.Key, state.Value, state.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save learner state: %w", err)
	}
	return nil
}

// Delete removes a value
func (r *StateRepository) Delete(learnerID, key string) error {
	query := "DELETE FROM learner_state WHERE learner_id = ? AND state_key = ?"
	if _, err := r.db.Exec(query, learnerID, key); err != nil {
		return fmt.Errorf("failed to delete learner state: %w", err)
	}
	return nil
}

// List returns every stored value ordered by learner and key
func (r *StateRepository) List() ([]models.LearnerState, error) {
	query := "SELECT learner_id, state_key, value, updated_at FROM learner_state ORDER BY learner_id, state_key"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list learner state: %w", err)
	}
	defer rows.Close()

	var states []models.LearnerState
	for rows.Next() {
		var s models.LearnerState
		if err := rows.Scan(&s.LearnerID, &s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan learner state: %w", err)
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

// DeleteAll removes every stored value
func (r *StateRepository) DeleteAll() (int64, error) {
	result, err := r.db.Exec("DELETE FROM learner_state")
	if err != nil {
		return 0, fmt.Errorf("failed to clear learner state: %w", err)
	}
	return result.RowsAffected()
}

// DeleteStale removes values last written before the cutoff and returns how
// many rows went.
func (r *StateRepository) DeleteStale(before time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM learner_state WHERE updated_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale learner state: %w", err)
	}
	return result.RowsAffected()
}
