package quiz

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"slices"
	"time"
)

// DefaultReferenceDelay separates the reference note from the target note.
const DefaultReferenceDelay = 1200 * time.Millisecond

// ErrUnknownTrial is returned for a trial index outside the session.
var ErrUnknownTrial = errors.New("unknown trial")

// Player voices a note. Calls are fire-and-forget.
type Player interface {
	Play(note, duration string)
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(note, duration string)

func (f PlayerFunc) Play(note, duration string) { f(note, duration) }

// Store is the key/value collaborator the engine persists to.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Renderer receives the current view whenever trial state changes.
type Renderer interface {
	Render(View)
}

// Scheduler runs f once after d. There is no cancellation.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// View is everything the presentation layer needs to draw the quiz.
type View struct {
	Settings      Settings `json:"settings"`
	ActiveNotes   []string `json:"activeNotes"`
	ReferenceNote string   `json:"referenceNote"`
	Trials        []Trial  `json:"trials"`
	Totals        Totals   `json:"totals"`
	Progress      Progress `json:"progress"`
}

// Engine owns one learner's quiz: settings, the active note collection and
// the current session. It is not safe for concurrent use.
type Engine struct {
	settings  Settings
	active    []string
	reference string
	session   Session

	players        map[Instrument]Player
	store          Store
	renderer       Renderer
	scheduler      Scheduler
	rng            *rand.Rand
	now            func() time.Time
	referenceDelay time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore persists state to s.
func WithStore(s Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithPlayer routes notes for instrument to p.
func WithPlayer(instrument Instrument, p Player) Option {
	return func(e *Engine) {
		e.players[instrument] = p
	}
}

// WithRenderer sends views to r after state changes.
func WithRenderer(r Renderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithScheduler replaces the timer used to delay the target note.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithRand sets the random source for trial generation.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithClock sets the clock used to stamp saved state.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithReferenceDelay sets the gap between reference and target notes.
func WithReferenceDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.referenceDelay = d
		}
	}
}

// NewEngine creates an engine with default settings and no session. Call
// Start to restore saved state or generate the first session.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		settings:       DefaultSettings(),
		players:        make(map[Instrument]Player),
		scheduler:      timerScheduler{},
		now:            time.Now,
		referenceDelay: DefaultReferenceDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.refreshCollection()
	return e
}

// Start restores saved state, applies startup overrides and generates a new
// session when nothing usable was stored. A capo override that differs from
// the restored capo also starts a new session, since the stored targets
// belong to the old collection.
func (e *Engine) Start(o Overrides) error {
	loaded := e.load()
	restoredCapo := e.settings.CapoPosition

	e.applyOverrides(o)
	e.refreshCollection()

	if !loaded || e.settings.CapoPosition != restoredCapo {
		return e.NewSession()
	}

	if !o.Empty() {
		e.Save()
	}
	e.render()
	return nil
}

func (e *Engine) applyOverrides(o Overrides) {
	if o.Instrument != nil {
		e.settings.Instrument = *o.Instrument
	}
	if o.CapoPosition != nil && ValidCapo(*o.CapoPosition) {
		e.settings.CapoPosition = *o.CapoPosition
	}
	if o.ShowInstructions != nil {
		e.settings.ShowInstructions = *o.ShowInstructions
	}
}

func (e *Engine) refreshCollection() {
	e.active = ActiveCollection(e.settings.CapoPosition)
	e.reference = ReferenceNote(e.settings.CapoPosition)
}

// NewSession replaces the session with freshly generated trials and zeroed
// totals.
func (e *Engine) NewSession() error {
	session, err := GenerateSession(e.active, e.rng)
	if err != nil {
		return fmt.Errorf("failed to generate session: %w", err)
	}
	e.session = session

	e.Save()
	e.render()
	return nil
}

// StartFresh discards saved state and begins a new session.
func (e *Engine) StartFresh() error {
	e.Clear()
	return e.NewSession()
}

// SetInstrument switches the voice used for playback.
func (e *Engine) SetInstrument(instrument Instrument) error {
	if _, err := ParseInstrument(string(instrument)); err != nil {
		return err
	}
	e.settings.Instrument = instrument
	e.Save()
	return nil
}

// SetCapo transposes the collection and starts a new session over it.
func (e *Engine) SetCapo(capo int) error {
	if !ValidCapo(capo) {
		return ErrInvalidCapo
	}
	e.settings.CapoPosition = capo
	e.refreshCollection()
	return e.NewSession()
}

// SetReferenceNote turns the reference note before each target on or off.
func (e *Engine) SetReferenceNote(enabled bool) {
	e.settings.UseReferenceNote = enabled
	e.render()
	e.Save()
}

// SetInstructions records whether the instructions panel is shown.
func (e *Engine) SetInstructions(show bool) {
	e.settings.ShowInstructions = show
	e.Save()
}

// PlayTrialTarget plays the target note of a trial, preceded by the
// reference note when that mode is on. The first call for a trial enables
// its guess buttons.
func (e *Engine) PlayTrialTarget(index int) error {
	trial, err := e.trial(index)
	if err != nil {
		return err
	}

	if !trial.ButtonsEnabled {
		trial.ButtonsEnabled = true
		e.render()
		e.Save()
	}

	if !e.settings.UseReferenceNote {
		e.play(trial.TargetNote)
		return nil
	}

	e.play(e.reference)

	// The callback may run on another goroutine, so it captures what it
	// needs instead of reading engine state when it fires.
	player, duration := e.currentPlayer()
	target := trial.TargetNote
	e.scheduler.AfterFunc(e.referenceDelay, func() {
		if player != nil {
			player.Play(target, duration)
		}
	})
	return nil
}

// SelectNote records a guess for a trial. Once a trial has been answered
// correctly further guesses only play the note.
func (e *Engine) SelectNote(index int, note string) error {
	trial, err := e.trial(index)
	if err != nil {
		return err
	}

	if trial.GuessedCorrectly {
		e.play(note)
		return nil
	}

	trial.GuessCount++
	e.play(note)

	if trial.ButtonFeedback == nil {
		trial.ButtonFeedback = make(map[string]Feedback)
	}

	if note == trial.TargetNote {
		trial.Status = StatusCorrect
		trial.GuessedCorrectly = true
		e.session.CorrectTotal++
		trial.ButtonFeedback[note] = FeedbackCorrect
	} else {
		trial.Status = StatusIncorrect
		e.session.IncorrectTotal++
		trial.ButtonFeedback[note] = FeedbackIncorrect
	}

	e.render()
	e.Save()
	return nil
}

// Save writes the current state to the store. Failures are logged.
func (e *Engine) Save() {
	if e.store == nil {
		return
	}

	data, err := encodeSnapshot(e.settings, e.session, e.now())
	if err != nil {
		log.Printf("Warning: %v", err)
		return
	}

	if err := e.store.Set(StorageKey, data); err != nil {
		log.Printf("Warning: failed to save ear training state: %v", err)
	}
}

// Clear removes saved state from the store. Failures are logged.
func (e *Engine) Clear() {
	if e.store == nil {
		return
	}
	if err := e.store.Delete(StorageKey); err != nil {
		log.Printf("Warning: failed to clear ear training state: %v", err)
	}
}

// HasSavedProgress reports whether the store holds a session with trials.
func (e *Engine) HasSavedProgress() bool {
	if e.store == nil {
		return false
	}
	data, ok, err := e.store.Get(StorageKey)
	if err != nil || !ok {
		return false
	}
	r, err := decodeSnapshot(data, e.settings)
	if err != nil {
		return false
	}
	return len(r.trials) > 0
}

// load restores settings and, when complete, the session. A session with
// the wrong number of trials or a target outside the active collection is
// dropped. It reports whether a usable session was restored.
func (e *Engine) load() bool {
	if e.store == nil {
		return false
	}

	data, ok, err := e.store.Get(StorageKey)
	if err != nil {
		log.Printf("Warning: failed to read ear training state: %v", err)
		return false
	}
	if !ok || data == "" {
		return false
	}

	r, err := decodeSnapshot(data, e.settings)
	if err != nil {
		log.Printf("Warning: error loading ear training state: %v", err)
		return false
	}

	e.settings = r.settings
	e.refreshCollection()

	if len(r.trials) != SessionLength {
		return false
	}
	for _, t := range r.trials {
		if !slices.Contains(e.active, t.TargetNote) {
			log.Printf("Warning: saved trial %d targets %s, which is not an active note; starting a new session", t.ID, t.TargetNote)
			return false
		}
	}

	e.session = Session{
		Trials:         r.trials,
		CorrectTotal:   r.correct,
		IncorrectTotal: r.incorrect,
	}
	return true
}

func (e *Engine) trial(index int) (*Trial, error) {
	if index < 0 || index >= len(e.session.Trials) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTrial, index)
	}
	return &e.session.Trials[index], nil
}

func (e *Engine) currentPlayer() (Player, string) {
	return e.players[e.settings.Instrument], e.settings.Instrument.DurationToken()
}

func (e *Engine) play(note string) {
	player, duration := e.currentPlayer()
	if player == nil {
		return
	}
	player.Play(note, duration)
}

func (e *Engine) render() {
	if e.renderer == nil {
		return
	}
	e.renderer.Render(e.View())
}

// Settings returns the current settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Session returns a copy of the current session.
func (e *Engine) Session() Session {
	return e.session.clone()
}

// ActiveNotes returns the transposed note collection.
func (e *Engine) ActiveNotes() []string {
	return append([]string(nil), e.active...)
}

// Reference returns the current reference note.
func (e *Engine) Reference() string {
	return e.reference
}

// View returns a copy of the state for presentation.
func (e *Engine) View() View {
	session := e.session.clone()
	return View{
		Settings:      e.settings,
		ActiveNotes:   e.ActiveNotes(),
		ReferenceNote: e.reference,
		Trials:        session.Trials,
		Totals:        session.Totals(),
		Progress:      session.Progress(),
	}
}
