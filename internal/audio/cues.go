package audio

import (
	"sync"
	"time"

	"eartraining/internal/quiz"
)

// Cue is one note the browser should play, OffsetMs after the request's
// first cue.
type Cue struct {
	Instrument quiz.Instrument `json:"instrument"`
	Note       string          `json:"note"`
	Duration   string          `json:"duration"`
	URL        string          `json:"url"`
	OffsetMs   int64           `json:"offsetMs"`
}

// Cues records what an engine plays during one request so the browser can
// voice it. It is both the engine's Player for every instrument and its
// Scheduler: delayed callbacks run immediately with the timeline shifted by
// their delay.
type Cues struct {
	mu      sync.Mutex
	library *Library
	offset  time.Duration
	cues    []Cue
}

// NewCues creates an empty recorder. library may be nil, leaving URLs empty.
func NewCues(library *Library) *Cues {
	return &Cues{library: library}
}

// Player returns a quiz.Player that records notes for instrument.
func (c *Cues) Player(instrument quiz.Instrument) quiz.Player {
	return quiz.PlayerFunc(func(note, duration string) {
		c.record(instrument, note, duration)
	})
}

// EngineOptions wires the recorder into an engine as player and scheduler.
func (c *Cues) EngineOptions() []quiz.Option {
	return []quiz.Option{
		quiz.WithPlayer(quiz.InstrumentSynth, c.Player(quiz.InstrumentSynth)),
		quiz.WithPlayer(quiz.InstrumentBanjo, c.Player(quiz.InstrumentBanjo)),
		quiz.WithScheduler(c),
	}
}

func (c *Cues) record(instrument quiz.Instrument, note, duration string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cue := Cue{
		Instrument: instrument,
		Note:       note,
		Duration:   duration,
		OffsetMs:   c.offset.Milliseconds(),
	}
	if c.library != nil {
		cue.URL = c.library.URL(instrument, note)
	}
	c.cues = append(c.cues, cue)
}

// AfterFunc runs f now, recording anything it plays d later on the timeline.
func (c *Cues) AfterFunc(d time.Duration, f func()) {
	c.mu.Lock()
	prev := c.offset
	c.offset += d
	c.mu.Unlock()

	f()

	c.mu.Lock()
	c.offset = prev
	c.mu.Unlock()
}

// List returns the recorded cues in play order.
func (c *Cues) List() []Cue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Cue{}, c.cues...)
}
