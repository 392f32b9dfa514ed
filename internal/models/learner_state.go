package models

import "time"

// LearnerState is one persisted value for a learner, keyed the way the quiz
// engine keys its saved state.
type LearnerState struct {
	LearnerID string    `json:"learner_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsStale reports whether the state has not been written within retention.
func (s *LearnerState) IsStale(retention time.Duration, now time.Time) bool {
	return now.Sub(s.UpdatedAt) > retention
}
