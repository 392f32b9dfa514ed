package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"eartraining/internal/quiz"
)

func TestFileNameAndURL(t *testing.T) {
	lib := NewLibrary(t.TempDir(), "/static/audio/")

	if got := FileName("C#4"); got != "Cs4.wav" {
		t.Errorf("FileName(C#4) = %s", got)
	}
	if got := lib.URL(quiz.InstrumentBanjo, "F#3"); got != "/static/audio/banjo/Fs3.wav" {
		t.Errorf("URL() = %s", got)
	}
}

func TestLibraryPrepareAndCleanup(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping sample rendering in short mode")
	}

	dir := t.TempDir()
	lib := NewLibrary(dir, "/static/audio")

	rendered, err := lib.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	want := 2 * len(quiz.FullRange())
	if rendered != want {
		t.Errorf("Prepare() rendered %d files, want %d", rendered, want)
	}

	// every note a capo can reach has a sample
	for capo := 0; capo <= quiz.MaxCapo; capo++ {
		for _, note := range append(quiz.ActiveCollection(capo), quiz.ReferenceNote(capo)) {
			if _, err := os.Stat(filepath.Join(dir, "synth", FileName(note))); err != nil {
				t.Errorf("capo %d: missing sample for %s", capo, note)
			}
		}
	}

	rendered, err = lib.Prepare()
	if err != nil || rendered != 0 {
		t.Errorf("second Prepare() = %d, %v; want nothing rendered", rendered, err)
	}

	orphan := filepath.Join(dir, "banjo", "C1.wav")
	os.WriteFile(orphan, []byte("x"), 0o644)

	removed, err := lib.Cleanup()
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Cleanup() removed %d, want 1", removed)
	}
	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Error("orphan sample still present")
	}

	files, err := lib.Files()
	if err != nil || len(files) != want {
		t.Errorf("Files() = %d entries, %v; want %d", len(files), err, want)
	}
}

func TestCuesTimeline(t *testing.T) {
	cues := NewCues(NewLibrary(t.TempDir(), "/static/audio"))
	player := cues.Player(quiz.InstrumentSynth)

	player.Play("G3", "1n")
	cues.AfterFunc(1200*time.Millisecond, func() {
		player.Play("A3", "1n")
	})
	player.Play("B3", "1n")

	got := cues.List()
	if len(got) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(got))
	}
	wantOffsets := []int64{0, 1200, 0}
	for i, cue := range got {
		if cue.OffsetMs != wantOffsets[i] {
			t.Errorf("cue %d offset = %d, want %d", i, cue.OffsetMs, wantOffsets[i])
		}
	}
	if got[1].URL != "/static/audio/synth/A3.wav" {
		t.Errorf("cue URL = %s", got[1].URL)
	}
}

func TestCuesDriveEngine(t *testing.T) {
	cues := NewCues(nil)
	opts := append(cues.EngineOptions(), quiz.WithReferenceDelay(quiz.DefaultReferenceDelay))
	engine := quiz.NewEngine(opts...)
	if err := engine.Start(quiz.Overrides{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := engine.PlayTrialTarget(0); err != nil {
		t.Fatalf("PlayTrialTarget() error = %v", err)
	}

	got := cues.List()
	if len(got) != 2 {
		t.Fatalf("got %d cues, want reference and target", len(got))
	}
	if got[0].Note != engine.Reference() || got[0].OffsetMs != 0 {
		t.Errorf("first cue = %+v, want reference at 0", got[0])
	}
	target := engine.Session().Trials[0].TargetNote
	if got[1].Note != target || got[1].OffsetMs != 1200 || got[1].Duration != "1n" {
		t.Errorf("second cue = %+v, want %s at 1200ms", got[1], target)
	}
}
