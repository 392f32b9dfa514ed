package quiz

// Status is the outcome of a trial's most recent guess.
type Status string

const (
	StatusNotTried  Status = "not-tried"
	StatusCorrect   Status = "correct"
	StatusIncorrect Status = "incorrect"
)

// Text returns the label shown next to a trial.
func (s Status) Text() string {
	switch s {
	case StatusCorrect:
		return "Correct!"
	case StatusIncorrect:
		return "Incorrect"
	default:
		return "Not Tried"
	}
}

// Feedback marks a guess button after it has been pressed.
type Feedback string

const (
	FeedbackCorrect   Feedback = "correct"
	FeedbackIncorrect Feedback = "incorrect"
)

// Trial is one question of a quiz session.
type Trial struct {
	ID               int                 `json:"id"`
	TargetNote       string              `json:"targetNote"`
	GuessCount       int                 `json:"guessCount"`
	Status           Status              `json:"status"`
	GuessedCorrectly bool                `json:"guessedCorrectly"`
	ButtonFeedback   map[string]Feedback `json:"buttonFeedback"`
	ButtonsEnabled   bool                `json:"buttonsEnabled"`
}

func newTrial(id int, target string) Trial {
	return Trial{
		ID:             id,
		TargetNote:     target,
		Status:         StatusNotTried,
		ButtonFeedback: make(map[string]Feedback),
	}
}

// InProgress reports whether the trial has been guessed at but not solved.
func (t Trial) InProgress() bool {
	return t.Status != StatusNotTried && !t.GuessedCorrectly
}

func (t Trial) clone() Trial {
	c := t
	c.ButtonFeedback = make(map[string]Feedback, len(t.ButtonFeedback))
	for note, fb := range t.ButtonFeedback {
		c.ButtonFeedback[note] = fb
	}
	return c
}
