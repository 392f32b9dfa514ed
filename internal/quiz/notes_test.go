package quiz

import (
	"math"
	"testing"
)

func TestTranspose(t *testing.T) {
	tests := []struct {
		name     string
		note     string
		offset   int
		expected string
	}{
		{name: "no capo", note: "G3", offset: 0, expected: "G3"},
		{name: "up two semitones", note: "G3", offset: 2, expected: "A3"},
		{name: "cross octave boundary", note: "B3", offset: 1, expected: "C4"},
		{name: "full octave up", note: "D3", offset: 12, expected: "D4"},
		{name: "mid range", note: "E3", offset: 5, expected: "A3"},
		{name: "sharp input", note: "A#3", offset: 1, expected: "B3"},
		{name: "flat normalised", note: "Bb3", offset: 1, expected: "B3"},
		{name: "flat across octave", note: "Db4", offset: 11, expected: "C5"},
		{name: "flat with zero offset unchanged", note: "Eb3", offset: 0, expected: "Eb3"},
		{name: "two octaves", note: "C3", offset: 24, expected: "C5"},
		{name: "wrap lands on next octave", note: "A3", offset: 14, expected: "B4"},
		{name: "negative offset", note: "C4", offset: -1, expected: "B3"},
		{name: "unparseable returned unchanged", note: "H3", offset: 3, expected: "H3"},
		{name: "unknown flat returned unchanged", note: "Cb3", offset: 3, expected: "Cb3"},
		{name: "missing octave returned unchanged", note: "G", offset: 3, expected: "G"},
		{name: "empty returned unchanged", note: "", offset: 3, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Transpose(tt.note, tt.offset)
			if result != tt.expected {
				t.Errorf("Transpose(%q, %d) = %q, want %q", tt.note, tt.offset, result, tt.expected)
			}
		})
	}
}

func TestTransposeOctaveAdvancesByOne(t *testing.T) {
	for _, note := range FullRange() {
		p, _ := ParseNote(note)
		up, ok := ParseNote(Transpose(note, 12))
		if !ok {
			t.Fatalf("Transpose(%q, 12) did not parse", note)
		}
		if up.Index != p.Index || up.Octave != p.Octave+1 {
			t.Errorf("Transpose(%q, 12) = %s, want same pitch class one octave up", note, up)
		}
	}
}

func TestParseNote(t *testing.T) {
	tests := []struct {
		note   string
		want   Pitch
		wantOK bool
	}{
		{note: "C4", want: Pitch{Index: 0, Octave: 4}, wantOK: true},
		{note: "F#3", want: Pitch{Index: 6, Octave: 3}, wantOK: true},
		{note: "Gb3", want: Pitch{Index: 6, Octave: 3}, wantOK: true},
		{note: "B10", want: Pitch{Index: 11, Octave: 10}, wantOK: true},
		{note: "c4", wantOK: false},
		{note: "G#", wantOK: false},
		{note: "xG3", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.note, func(t *testing.T) {
			got, ok := ParseNote(tt.note)
			if ok != tt.wantOK {
				t.Fatalf("ParseNote(%q) ok = %v, want %v", tt.note, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseNote(%q) = %+v, want %+v", tt.note, got, tt.want)
			}
		})
	}
}

func TestPitchFrequency(t *testing.T) {
	tests := []struct {
		note string
		midi int
		hz   float64
	}{
		{note: "A4", midi: 69, hz: 440},
		{note: "C4", midi: 60, hz: 261.63},
		{note: "G3", midi: 55, hz: 196},
		{note: "D3", midi: 50, hz: 146.83},
	}

	for _, tt := range tests {
		t.Run(tt.note, func(t *testing.T) {
			p, ok := ParseNote(tt.note)
			if !ok {
				t.Fatalf("ParseNote(%q) failed", tt.note)
			}
			if p.MIDI() != tt.midi {
				t.Errorf("MIDI() = %d, want %d", p.MIDI(), tt.midi)
			}
			if math.Abs(p.Frequency()-tt.hz) > 0.01 {
				t.Errorf("Frequency() = %.2f, want %.2f", p.Frequency(), tt.hz)
			}
		})
	}
}

func TestNoteRange(t *testing.T) {
	notes := FullRange()
	if len(notes) != 35 {
		t.Fatalf("FullRange() has %d notes, want 35", len(notes))
	}
	if notes[0] != "D3" || notes[len(notes)-1] != "C6" {
		t.Errorf("FullRange() = %s..%s, want D3..C6", notes[0], notes[len(notes)-1])
	}
	if notes[8] != "A#3" || notes[10] != "C4" {
		t.Errorf("unexpected spelling in range: %v", notes[8:11])
	}

	if got := NoteRange("C4", "B3"); got != nil {
		t.Errorf("inverted range = %v, want nil", got)
	}
	if got := NoteRange("nope", "C4"); got != nil {
		t.Errorf("unparseable range = %v, want nil", got)
	}
}

func TestActiveCollection(t *testing.T) {
	t.Run("capo 0 is the base collection", func(t *testing.T) {
		got := ActiveCollection(0)
		for i, note := range BaseCollection {
			if got[i] != note {
				t.Errorf("position %d: got %s, want %s", i, got[i], note)
			}
		}
	})

	t.Run("capo 2 raises every note a whole tone", func(t *testing.T) {
		expected := []string{"E3", "F#3", "A3", "B3", "C#4", "D4", "E4", "F#4"}
		got := ActiveCollection(2)
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("position %d: got %s, want %s", i, got[i], expected[i])
			}
		}
	})

	t.Run("every capo stays inside the playable range", func(t *testing.T) {
		playable := make(map[string]bool)
		for _, note := range FullRange() {
			playable[note] = true
		}
		for capo := 0; capo <= MaxCapo; capo++ {
			for _, note := range append(ActiveCollection(capo), ReferenceNote(capo)) {
				if !playable[note] {
					t.Errorf("capo %d: %s outside playable range", capo, note)
				}
			}
		}
	})

	t.Run("does not modify the base collection", func(t *testing.T) {
		ActiveCollection(5)
		if BaseCollection[0] != "D3" {
			t.Errorf("BaseCollection mutated: %v", BaseCollection)
		}
	})
}

func TestReferenceNote(t *testing.T) {
	if got := ReferenceNote(0); got != "G3" {
		t.Errorf("ReferenceNote(0) = %s, want G3", got)
	}
	if got := ReferenceNote(5); got != "C4" {
		t.Errorf("ReferenceNote(5) = %s, want C4", got)
	}
}
