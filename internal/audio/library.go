package audio

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"eartraining/internal/quiz"
)

// Library is the on-disk set of rendered note samples, one WAV per
// instrument and note of the full playable range.
type Library struct {
	dir       string
	urlPrefix string
	voices    map[quiz.Instrument]Voice
	bpm       float64
}

// NewLibrary creates a library rooted at dir whose files are served under
// urlPrefix.
func NewLibrary(dir, urlPrefix string) *Library {
	return &Library{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		voices: map[quiz.Instrument]Voice{
			quiz.InstrumentSynth: NewSynth(),
			quiz.InstrumentBanjo: NewBanjo(),
		},
		bpm: DefaultBPM,
	}
}

// FileName returns the sample file name for a note. Sharps are written as
// "s" so names stay URL-safe.
func FileName(note string) string {
	return strings.ReplaceAll(note, "#", "s") + ".wav"
}

// URL returns the URL a browser fetches to play note on instrument.
func (l *Library) URL(instrument quiz.Instrument, note string) string {
	return path.Join(l.urlPrefix, string(instrument), FileName(note))
}

func (l *Library) filePath(instrument quiz.Instrument, note string) string {
	return filepath.Join(l.dir, string(instrument), FileName(note))
}

// Prepare renders every sample that does not exist yet and returns how many
// files were written.
func (l *Library) Prepare() (int, error) {
	rendered := 0
	for _, instrument := range l.instruments() {
		if err := os.MkdirAll(filepath.Join(l.dir, string(instrument)), 0o755); err != nil {
			return rendered, fmt.Errorf("failed to create audio directory: %w", err)
		}

		hold, err := ParseDuration(instrument.DurationToken(), l.bpm)
		if err != nil {
			return rendered, err
		}

		for _, note := range quiz.FullRange() {
			file := l.filePath(instrument, note)
			if _, err := os.Stat(file); err == nil {
				continue
			}
			if err := l.renderTo(file, instrument, note, hold); err != nil {
				return rendered, fmt.Errorf("failed to render %s %s: %w", instrument, note, err)
			}
			rendered++
		}
	}
	return rendered, nil
}

func (l *Library) renderTo(file string, instrument quiz.Instrument, note string, hold time.Duration) error {
	pitch, ok := quiz.ParseNote(note)
	if !ok {
		return fmt.Errorf("invalid note %q", note)
	}

	samples := l.voices[instrument].Render(pitch.Frequency(), hold)

	var buf bytes.Buffer
	if err := WriteWAV(&buf, samples, SampleRate); err != nil {
		return err
	}

	// write then rename so a half-written file is never served
	tmp := file + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, file)
}

// Files returns every sample file as "<instrument>/<file>", sorted.
func (l *Library) Files() ([]string, error) {
	var files []string
	for _, instrument := range l.instruments() {
		entries, err := os.ReadDir(filepath.Join(l.dir, string(instrument)))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read audio directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && filepath.Ext(entry.Name()) == ".wav" {
				files = append(files, string(instrument)+"/"+entry.Name())
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// Cleanup removes sample files that no longer belong to the playable range
// and returns how many were removed.
func (l *Library) Cleanup() (int, error) {
	files, err := l.Files()
	if err != nil {
		return 0, err
	}

	expected := make(map[string]bool)
	for _, instrument := range l.instruments() {
		for _, note := range quiz.FullRange() {
			expected[string(instrument)+"/"+FileName(note)] = true
		}
	}

	removed := 0
	for _, f := range files {
		if expected[f] {
			continue
		}
		if err := os.Remove(filepath.Join(l.dir, filepath.FromSlash(f))); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove %s: %w", f, err)
		}
		removed++
	}
	return removed, nil
}

func (l *Library) instruments() []quiz.Instrument {
	instruments := make([]quiz.Instrument, 0, len(l.voices))
	for instrument := range l.voices {
		instruments = append(instruments, instrument)
	}
	sort.Slice(instruments, func(i, j int) bool { return instruments[i] < instruments[j] })
	return instruments
}
