package quiz

import (
	"errors"
	"net/url"
	"strconv"
)

var (
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrInvalidCapo       = errors.New("capo position out of range")
)

// Instrument selects which player voices the notes.
type Instrument string

const (
	InstrumentSynth Instrument = "synth"
	InstrumentBanjo Instrument = "banjo"
)

// Instruments lists every accepted instrument.
var Instruments = []Instrument{InstrumentSynth, InstrumentBanjo}

// ParseInstrument accepts "synth" or "banjo".
func ParseInstrument(s string) (Instrument, error) {
	switch Instrument(s) {
	case InstrumentSynth, InstrumentBanjo:
		return Instrument(s), nil
	}
	return "", ErrUnknownInstrument
}

// DurationToken is the note length passed to the player for this instrument.
func (i Instrument) DurationToken() string {
	if i == InstrumentBanjo {
		return "2n."
	}
	return "1n"
}

// ValidCapo reports whether capo is an accepted capo position.
func ValidCapo(capo int) bool {
	return capo >= 0 && capo <= MaxCapo
}

// Settings are the learner's preferences.
type Settings struct {
	Instrument       Instrument `json:"instrument"`
	CapoPosition     int        `json:"capoPosition"`
	UseReferenceNote bool       `json:"useReferenceNote"`
	ShowInstructions bool       `json:"showInstructions"`
}

// DefaultSettings returns the settings of a first visit.
func DefaultSettings() Settings {
	return Settings{
		Instrument:       InstrumentSynth,
		CapoPosition:     0,
		UseReferenceNote: true,
		ShowInstructions: true,
	}
}

// Overrides are settings supplied at startup, typically from the page URL.
// A nil field leaves the stored or default value alone.
type Overrides struct {
	Instrument       *Instrument
	CapoPosition     *int
	ShowInstructions *bool
}

// ParseOverrides reads the instrument, capo and instructions query
// parameters. Invalid values are ignored.
func ParseOverrides(q url.Values) Overrides {
	var o Overrides

	if inst, err := ParseInstrument(q.Get("instrument")); err == nil {
		o.Instrument = &inst
	}

	if raw := q.Get("capo"); raw != "" {
		if capo, err := strconv.Atoi(raw); err == nil && ValidCapo(capo) {
			o.CapoPosition = &capo
		}
	}

	if q.Has("instructions") {
		show := q.Get("instructions") != "false"
		o.ShowInstructions = &show
	}

	return o
}

// Empty reports whether no override is set.
func (o Overrides) Empty() bool {
	return o.Instrument == nil && o.CapoPosition == nil && o.ShowInstructions == nil
}
