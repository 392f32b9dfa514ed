package handlers

import (
	"eartraining/internal/quiz"
	"eartraining/internal/service"
)

type EarTrainingViewData struct {
	Title            string
	CSRFToken        string
	Settings         quiz.Settings
	ReferenceNote    string
	Instruments      []quiz.Instrument
	CapoPositions    []int
	Trials           []TrialView
	Totals           quiz.Totals
	Progress         quiz.Progress
	HasSavedProgress bool
}

type TrialView struct {
	Index      int
	Number     int
	Status     quiz.Status
	StatusText string
	GuessCount int
	Solved     bool
	Buttons    []NoteButtonView
}

type NoteButtonView struct {
	Note     string
	Feedback quiz.Feedback
	Enabled  bool
}

func newEarTrainingViewData(result *service.Result, csrfToken string) EarTrainingViewData {
	view := result.View

	capos := make([]int, quiz.MaxCapo+1)
	for i := range capos {
		capos[i] = i
	}

	data := EarTrainingViewData{
		Title:            "Ear Training",
		CSRFToken:        csrfToken,
		Settings:         view.Settings,
		ReferenceNote:    view.ReferenceNote,
		Instruments:      quiz.Instruments,
		CapoPositions:    capos,
		Totals:           view.Totals,
		Progress:         view.Progress,
		HasSavedProgress: result.HasSavedProgress,
	}

	for i, trial := range view.Trials {
		tv := TrialView{
			Index:      i,
			Number:     i + 1,
			Status:     trial.Status,
			StatusText: trial.Status.Text(),
			GuessCount: trial.GuessCount,
			Solved:     trial.GuessedCorrectly,
		}
		for _, note := range view.ActiveNotes {
			tv.Buttons = append(tv.Buttons, NoteButtonView{
				Note:     note,
				Feedback: trial.ButtonFeedback[note],
				Enabled:  trial.ButtonsEnabled,
			})
		}
		data.Trials = append(data.Trials, tv)
	}
	return data
}
