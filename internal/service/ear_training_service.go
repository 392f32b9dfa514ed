package service

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"eartraining/internal/audio"
	"eartraining/internal/quiz"
	"eartraining/internal/store"
)

// ErrInvalidNote is returned for a guess that is not one of the learner's
// active notes.
var ErrInvalidNote = errors.New("note is not in the active collection")

// ErrTrialNotPlayed is returned for a guess on a trial whose target has not
// been played yet.
var ErrTrialNotPlayed = errors.New("trial has not been played")

// StaleStateCleaner is implemented by backends that can purge old state.
// The Redis backend expires keys itself and does not need it.
type StaleStateCleaner interface {
	DeleteStale(before time.Time) (int64, error)
}

// Result is what every operation returns: the learner's view after the
// operation and the notes the browser should play.
type Result struct {
	View             quiz.View   `json:"view"`
	Cues             []audio.Cue `json:"cues"`
	HasSavedProgress bool        `json:"hasSavedProgress"`
}

// SettingsUpdate carries the settings a learner changed. Nil fields are left
// alone.
type SettingsUpdate struct {
	Instrument       *string `json:"instrument,omitempty"`
	CapoPosition     *int    `json:"capoPosition,omitempty"`
	UseReferenceNote *bool   `json:"useReferenceNote,omitempty"`
	ShowInstructions *bool   `json:"showInstructions,omitempty"`
}

// EarTrainingService runs quiz engines for learners. Each call loads the
// learner's engine from the backend, applies one operation and lets the
// engine save. Calls for the same learner are serialized.
type EarTrainingService struct {
	backend        store.Backend
	library        *audio.Library
	cleaner        StaleStateCleaner
	retention      time.Duration
	referenceDelay time.Duration
	newRand        func() *rand.Rand
	now            func() time.Time

	locks learnerLocks
}

// NewEarTrainingService creates the service. library may be nil, in which
// case cues carry no URLs.
func NewEarTrainingService(backend store.Backend, library *audio.Library, referenceDelay time.Duration) *EarTrainingService {
	s := &EarTrainingService{
		backend:        backend,
		library:        library,
		referenceDelay: referenceDelay,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		now: time.Now,
	}
	if cleaner, ok := backend.(StaleStateCleaner); ok {
		s.cleaner = cleaner
	}
	return s
}

// SetRetention enables CleanupStaleStates for state idle longer than d.
func (s *EarTrainingService) SetRetention(d time.Duration) {
	s.retention = d
}

// Open starts the quiz for a learner with optional startup overrides, the
// equivalent of loading the page.
func (s *EarTrainingService) Open(learnerID string, overrides quiz.Overrides) (*Result, error) {
	return s.run(learnerID, overrides, nil)
}

// PlayTrial plays a trial's target, with the reference note first when that
// mode is on.
func (s *EarTrainingService) PlayTrial(learnerID string, index int) (*Result, error) {
	return s.run(learnerID, quiz.Overrides{}, func(e *quiz.Engine) error {
		return e.PlayTrialTarget(index)
	})
}

// Guess records a learner's answer for a trial. The note buttons of a trial
// only work once its target has been played.
func (s *EarTrainingService) Guess(learnerID string, index int, note string) (*Result, error) {
	return s.run(learnerID, quiz.Overrides{}, func(e *quiz.Engine) error {
		if !slices.Contains(e.ActiveNotes(), note) {
			return fmt.Errorf("%w: %q", ErrInvalidNote, note)
		}
		trials := e.Session().Trials
		if index >= 0 && index < len(trials) && !trials[index].ButtonsEnabled {
			return fmt.Errorf("%w: %d", ErrTrialNotPlayed, index)
		}
		return e.SelectNote(index, note)
	})
}

// UpdateSettings applies a settings change. The update is validated before
// anything is applied. A capo change starts a new session; sending the
// current capo again does not.
func (s *EarTrainingService) UpdateSettings(learnerID string, update SettingsUpdate) (*Result, error) {
	var instrument quiz.Instrument
	if update.Instrument != nil {
		parsed, err := quiz.ParseInstrument(*update.Instrument)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, *update.Instrument)
		}
		instrument = parsed
	}
	if update.CapoPosition != nil && !quiz.ValidCapo(*update.CapoPosition) {
		return nil, fmt.Errorf("%w: %d", quiz.ErrInvalidCapo, *update.CapoPosition)
	}

	return s.run(learnerID, quiz.Overrides{}, func(e *quiz.Engine) error {
		if update.Instrument != nil {
			if err := e.SetInstrument(instrument); err != nil {
				return err
			}
		}
		if update.CapoPosition != nil && *update.CapoPosition != e.Settings().CapoPosition {
			if err := e.SetCapo(*update.CapoPosition); err != nil {
				return err
			}
		}
		if update.UseReferenceNote != nil {
			e.SetReferenceNote(*update.UseReferenceNote)
		}
		if update.ShowInstructions != nil {
			e.SetInstructions(*update.ShowInstructions)
		}
		return nil
	})
}

// StartFresh discards the learner's saved state and deals a new session.
func (s *EarTrainingService) StartFresh(learnerID string) (*Result, error) {
	return s.run(learnerID, quiz.Overrides{}, func(e *quiz.Engine) error {
		return e.StartFresh()
	})
}

// CleanupStaleStates removes state not written within the retention period.
func (s *EarTrainingService) CleanupStaleStates() (int64, error) {
	if s.cleaner == nil || s.retention <= 0 {
		return 0, nil
	}
	deleted, err := s.cleaner.DeleteStale(s.now().Add(-s.retention))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up stale learner state: %w", err)
	}
	return deleted, nil
}

func (s *EarTrainingService) run(learnerID string, overrides quiz.Overrides, op func(*quiz.Engine) error) (*Result, error) {
	if learnerID == "" {
		return nil, errors.New("learner ID is required")
	}

	unlock := s.locks.lock(learnerID)
	defer unlock()

	cues := audio.NewCues(s.library)
	opts := append(cues.EngineOptions(),
		quiz.WithStore(store.ForLearner(s.backend, learnerID)),
		quiz.WithRand(s.newRand()),
		quiz.WithClock(s.now),
		quiz.WithReferenceDelay(s.referenceDelay),
	)
	engine := quiz.NewEngine(opts...)

	if err := engine.Start(overrides); err != nil {
		return nil, fmt.Errorf("failed to start quiz for learner %s: %w", learnerID, err)
	}

	if op != nil {
		if err := op(engine); err != nil {
			return nil, err
		}
	}

	return &Result{
		View:             engine.View(),
		Cues:             cues.List(),
		HasSavedProgress: engine.HasSavedProgress(),
	}, nil
}

// learnerLocks hands out one mutex per learner and forgets it when nobody
// holds or waits for it.
type learnerLocks struct {
	mu    sync.Mutex
	locks map[string]*learnerLock
}

type learnerLock struct {
	sync.Mutex
	refs int
}

func (l *learnerLocks) lock(learnerID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*learnerLock)
	}
	lk, ok := l.locks[learnerID]
	if !ok {
		lk = &learnerLock{}
		l.locks[learnerID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.Lock()
	return func() {
		lk.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, learnerID)
		}
		l.mu.Unlock()
	}
}
