package quiz

import (
	"errors"
	"math/rand"
	"testing"
)

func TestGenerateSession(t *testing.T) {
	tests := []struct {
		name       string
		collection []string
	}{
		{name: "base collection", collection: BaseCollection},
		{name: "two notes", collection: []string{"G3", "A3"}},
		{name: "duplicates present", collection: []string{"G3", "G3", "G3", "A3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(0); seed < 200; seed++ {
				session, err := GenerateSession(tt.collection, rand.New(rand.NewSource(seed)))
				if err != nil {
					t.Fatalf("GenerateSession() error = %v", err)
				}
				if len(session.Trials) != SessionLength {
					t.Fatalf("got %d trials, want %d", len(session.Trials), SessionLength)
				}
				for i, trial := range session.Trials {
					if trial.ID != i {
						t.Errorf("trial %d has ID %d", i, trial.ID)
					}
					if trial.Status != StatusNotTried || trial.GuessCount != 0 || trial.ButtonsEnabled || trial.GuessedCorrectly {
						t.Errorf("trial %d not in initial state: %+v", i, trial)
					}
					if trial.ButtonFeedback == nil {
						t.Errorf("trial %d has nil feedback map", i)
					}
					if i > 0 && trial.TargetNote == session.Trials[i-1].TargetNote {
						t.Fatalf("seed %d: trials %d and %d share target %s", seed, i-1, i, trial.TargetNote)
					}
				}
			}
		})
	}
}

func TestGenerateSessionSingleNote(t *testing.T) {
	session, err := GenerateSession([]string{"G3"}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("GenerateSession() error = %v", err)
	}
	if len(session.Trials) != SessionLength {
		t.Fatalf("got %d trials, want %d", len(session.Trials), SessionLength)
	}
	for _, trial := range session.Trials {
		if trial.TargetNote != "G3" {
			t.Errorf("target = %s, want G3", trial.TargetNote)
		}
	}
}

func TestGenerateSessionEmpty(t *testing.T) {
	_, err := GenerateSession(nil, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrEmptyCollection) {
		t.Fatalf("error = %v, want ErrEmptyCollection", err)
	}
}

func TestGenerateSessionUsesWholeCollection(t *testing.T) {
	seen := make(map[string]bool)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		session, _ := GenerateSession(BaseCollection, rng)
		for _, trial := range session.Trials {
			seen[trial.TargetNote] = true
		}
	}
	for _, note := range BaseCollection {
		if !seen[note] {
			t.Errorf("note %s never drawn", note)
		}
	}
}

func TestSessionTotals(t *testing.T) {
	tests := []struct {
		name      string
		correct   int
		incorrect int
		accuracy  int
	}{
		{name: "no guesses", correct: 0, incorrect: 0, accuracy: 0},
		{name: "all correct", correct: 4, incorrect: 0, accuracy: 100},
		{name: "rounds half up", correct: 1, incorrect: 7, accuracy: 13},
		{name: "two thirds", correct: 2, incorrect: 1, accuracy: 67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Session{CorrectTotal: tt.correct, IncorrectTotal: tt.incorrect}
			got := s.Totals()
			if got.Accuracy != tt.accuracy {
				t.Errorf("Accuracy = %d, want %d", got.Accuracy, tt.accuracy)
			}
			if got.Correct != tt.correct || got.Incorrect != tt.incorrect {
				t.Errorf("Totals() = %+v", got)
			}
		})
	}
}

func TestSessionProgress(t *testing.T) {
	fresh, _ := GenerateSession(BaseCollection, rand.New(rand.NewSource(3)))

	if p := fresh.Progress(); p.State != ProgressFresh || p.Total != SessionLength {
		t.Errorf("fresh progress = %+v", p)
	}

	partial := fresh.clone()
	partial.Trials[0].Status = StatusIncorrect
	partial.Trials[1].Status = StatusCorrect
	partial.Trials[1].GuessedCorrectly = true
	p := partial.Progress()
	if p.State != ProgressInProgress || p.Completed != 1 || p.InProgress != 1 {
		t.Errorf("partial progress = %+v", p)
	}

	done := fresh.clone()
	for i := range done.Trials {
		done.Trials[i].Status = StatusCorrect
		done.Trials[i].GuessedCorrectly = true
	}
	if p := done.Progress(); p.State != ProgressComplete || p.Completed != SessionLength {
		t.Errorf("complete progress = %+v", p)
	}

	if p := (Session{}).Progress(); p.State != ProgressFresh {
		t.Errorf("empty session progress = %+v", p)
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusNotTried, "Not Tried"},
		{StatusCorrect, "Correct!"},
		{StatusIncorrect, "Incorrect"},
		{Status("bogus"), "Not Tried"},
	}
	for _, tt := range tests {
		if got := tt.status.Text(); got != tt.want {
			t.Errorf("%q.Text() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
