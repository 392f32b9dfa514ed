package quiz

import (
	"math"
	"regexp"
	"strconv"
)

// ChromaticScale lists the twelve pitch classes using sharp spellings.
var ChromaticScale = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var flatToSharp = map[string]string{
	"Db": "C#",
	"Eb": "D#",
	"Gb": "F#",
	"Ab": "G#",
	"Bb": "A#",
}

var noteRegexp = regexp.MustCompile(`^([A-G][#b]?)([0-9]+)$`)

// Pitch is a parsed note: a chromatic scale index plus an octave number.
type Pitch struct {
	Index  int
	Octave int
}

// ParseNote splits a note such as "A#3" or "Bb3" into its pitch class index
// and octave. Flats resolve to their sharp equivalent.
func ParseNote(note string) (Pitch, bool) {
	match := noteRegexp.FindStringSubmatch(note)
	if match == nil {
		return Pitch{}, false
	}

	name := match[1]
	if sharp, ok := flatToSharp[name]; ok {
		name = sharp
	}

	index := scaleIndex(name)
	if index < 0 {
		return Pitch{}, false
	}

	octave, err := strconv.Atoi(match[2])
	if err != nil {
		return Pitch{}, false
	}

	return Pitch{Index: index, Octave: octave}, true
}

// String renders the pitch with a sharp spelling, e.g. "C#4".
func (p Pitch) String() string {
	return ChromaticScale[p.Index] + strconv.Itoa(p.Octave)
}

// MIDI returns the MIDI note number (C4 = 60).
func (p Pitch) MIDI() int {
	return (p.Octave+1)*12 + p.Index
}

// Frequency returns the equal-tempered frequency in Hz with A4 = 440 Hz.
func (p Pitch) Frequency() float64 {
	return 440 * math.Pow(2, float64(p.MIDI()-69)/12)
}

// Transpose shifts a note up by offset semitones. The octave advances once
// for every wrap past B. Notes that cannot be parsed are returned unchanged,
// as is any note when offset is zero.
func Transpose(note string, offset int) string {
	if offset == 0 {
		return note
	}

	pitch, ok := ParseNote(note)
	if !ok {
		return note
	}

	unwrapped := pitch.Index + offset
	return Pitch{
		Index:  mod(unwrapped, 12),
		Octave: pitch.Octave + floorDiv(unwrapped, 12),
	}.String()
}

// NoteRange returns every chromatic note from low to high inclusive, using
// sharp spellings. It returns nil if either bound does not parse or the
// range is inverted.
func NoteRange(low, high string) []string {
	from, ok := ParseNote(low)
	if !ok {
		return nil
	}
	to, ok := ParseNote(high)
	if !ok {
		return nil
	}

	var notes []string
	for midi := from.MIDI(); midi <= to.MIDI(); midi++ {
		notes = append(notes, Pitch{Index: mod(midi, 12), Octave: floorDiv(midi, 12) - 1}.String())
	}
	return notes
}

func scaleIndex(name string) int {
	for i, n := range ChromaticScale {
		if n == name {
			return i
		}
	}
	return -1
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
