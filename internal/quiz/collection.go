package quiz

// BaseCollection is the G major pentatonic box used for trial targets and
// guess buttons before any capo is applied.
var BaseCollection = []string{"D3", "E3", "G3", "A3", "B3", "C4", "D4", "E4"}

// BaseReferenceNote is the tonic of BaseCollection.
const BaseReferenceNote = "G3"

// Lowest and highest notes the instruments are expected to play. Every
// capo position up to MaxCapo keeps the collection inside this range.
const (
	LowestNote  = "D3"
	HighestNote = "C6"
)

// MaxCapo is the highest accepted capo position.
const MaxCapo = 11

// FullRange returns every chromatic note between LowestNote and HighestNote.
func FullRange() []string {
	return NoteRange(LowestNote, HighestNote)
}

// ActiveCollection transposes BaseCollection by the capo offset.
func ActiveCollection(capo int) []string {
	notes := make([]string, len(BaseCollection))
	for i, note := range BaseCollection {
		notes[i] = Transpose(note, capo)
	}
	return notes
}

// ReferenceNote returns the tonic for the given capo offset.
func ReferenceNote(capo int) string {
	return Transpose(BaseReferenceNote, capo)
}
