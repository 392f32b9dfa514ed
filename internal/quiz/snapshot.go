package quiz

import (
	"encoding/json"
	"fmt"
	"time"
)

// StorageKey is the single key the engine persists its state under.
const StorageKey = "ear-training-state"

// Snapshot is the persisted form of an engine.
type Snapshot struct {
	Settings       Settings   `json:"settings"`
	TestCollection []Trial    `json:"testCollection"`
	Statistics     Statistics `json:"statistics"`
	LastSaved      time.Time  `json:"lastSaved"`
}

// Statistics are the persisted running totals.
type Statistics struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// partialSnapshot mirrors Snapshot with optional fields so that a stored
// value missing some keys still restores the keys it has.
type partialSnapshot struct {
	Settings *struct {
		Instrument       *string `json:"instrument"`
		CapoPosition     *int    `json:"capoPosition"`
		UseReferenceNote *bool   `json:"useReferenceNote"`
		ShowInstructions *bool   `json:"showInstructions"`
	} `json:"settings"`
	TestCollection []Trial `json:"testCollection"`
	Statistics     *struct {
		Correct   *int `json:"correct"`
		Incorrect *int `json:"incorrect"`
	} `json:"statistics"`
}

// restored is what a stored value yields after merging with defaults.
type restored struct {
	settings  Settings
	trials    []Trial
	correct   int
	incorrect int
}

func encodeSnapshot(settings Settings, session Session, now time.Time) (string, error) {
	snap := Snapshot{
		Settings:       settings,
		TestCollection: session.Trials,
		Statistics: Statistics{
			Correct:   session.CorrectTotal,
			Incorrect: session.IncorrectTotal,
		},
		LastSaved: now.UTC(),
	}
	if snap.TestCollection == nil {
		snap.TestCollection = []Trial{}
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}
	return string(data), nil
}

// decodeSnapshot parses a stored value. Each setting that is missing or
// invalid keeps its value from current.
func decodeSnapshot(data string, current Settings) (restored, error) {
	var p partialSnapshot
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return restored{}, fmt.Errorf("failed to decode state: %w", err)
	}

	r := restored{settings: current}

	if s := p.Settings; s != nil {
		if s.Instrument != nil {
			if inst, err := ParseInstrument(*s.Instrument); err == nil {
				r.settings.Instrument = inst
			}
		}
		if s.CapoPosition != nil && ValidCapo(*s.CapoPosition) {
			r.settings.CapoPosition = *s.CapoPosition
		}
		if s.UseReferenceNote != nil {
			r.settings.UseReferenceNote = *s.UseReferenceNote
		}
		if s.ShowInstructions != nil {
			r.settings.ShowInstructions = *s.ShowInstructions
		}
	}

	for _, t := range p.TestCollection {
		if t.ButtonFeedback == nil {
			t.ButtonFeedback = make(map[string]Feedback)
		}
		if t.Status == "" {
			t.Status = StatusNotTried
		}
		r.trials = append(r.trials, t)
	}

	if st := p.Statistics; st != nil {
		if st.Correct != nil {
			r.correct = *st.Correct
		}
		if st.Incorrect != nil {
			r.incorrect = *st.Incorrect
		}
	}

	return r, nil
}
