package quiz

import (
	"errors"
	"math"
	"math/rand"
)

// SessionLength is the number of trials in a session.
const SessionLength = 12

// ErrEmptyCollection is returned when trials are requested from no notes.
var ErrEmptyCollection = errors.New("note collection is empty")

// Session is an ordered set of trials plus running totals.
type Session struct {
	Trials         []Trial
	CorrectTotal   int
	IncorrectTotal int
}

// GenerateSession draws SessionLength trials uniformly from collection.
// A trial never repeats the previous target unless no other note exists in
// the collection.
func GenerateSession(collection []string, rng *rand.Rand) (Session, error) {
	if len(collection) == 0 {
		return Session{}, ErrEmptyCollection
	}

	trials := make([]Trial, 0, SessionLength)
	previous := ""
	for i := 0; i < SessionLength; i++ {
		candidates := collection
		if i > 0 {
			candidates = excluding(collection, previous)
			if len(candidates) == 0 {
				candidates = collection
			}
		}

		target := candidates[rng.Intn(len(candidates))]
		trials = append(trials, newTrial(i, target))
		previous = target
	}

	return Session{Trials: trials}, nil
}

// excluding returns the entries of notes that differ from note. Drawing
// uniformly from the result is equivalent to redrawing from notes until the
// pick differs, without the unbounded loop.
func excluding(notes []string, note string) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		if n != note {
			out = append(out, n)
		}
	}
	return out
}

// Totals summarises the running score.
type Totals struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Accuracy  int `json:"accuracy"`
}

// Totals returns the counters and the rounded accuracy percentage.
func (s Session) Totals() Totals {
	t := Totals{Correct: s.CorrectTotal, Incorrect: s.IncorrectTotal}
	if guesses := s.CorrectTotal + s.IncorrectTotal; guesses > 0 {
		t.Accuracy = int(math.Round(float64(s.CorrectTotal) / float64(guesses) * 100))
	}
	return t
}

// Progress state labels.
const (
	ProgressFresh      = "fresh"
	ProgressInProgress = "in-progress"
	ProgressComplete   = "complete"
)

// Progress describes how far through the session the learner is.
type Progress struct {
	Completed  int    `json:"completed"`
	InProgress int    `json:"inProgress"`
	Total      int    `json:"total"`
	State      string `json:"state"`
}

// Progress counts solved and attempted trials.
func (s Session) Progress() Progress {
	p := Progress{Total: len(s.Trials)}
	for _, t := range s.Trials {
		if t.GuessedCorrectly {
			p.Completed++
		} else if t.InProgress() {
			p.InProgress++
		}
	}

	switch {
	case p.Total > 0 && p.Completed == p.Total:
		p.State = ProgressComplete
	case p.Completed > 0 || p.InProgress > 0:
		p.State = ProgressInProgress
	default:
		p.State = ProgressFresh
	}
	return p
}

func (s Session) clone() Session {
	c := s
	c.Trials = make([]Trial, len(s.Trials))
	for i, t := range s.Trials {
		c.Trials[i] = t.clone()
	}
	return c
}
