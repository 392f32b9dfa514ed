package handlers

import (
	"encoding/json"
	"html/template"
	"log"
	"mime"
	"net/http"
	"strconv"

	"eartraining/internal/quiz"
	"eartraining/internal/service"
)

// EarTrainingHandler serves the quiz page and its JSON API
type EarTrainingHandler struct {
	service    *service.EarTrainingService
	middleware *Middleware
	templates  *template.Template
}

// NewEarTrainingHandler creates a new ear training handler
func NewEarTrainingHandler(svc *service.EarTrainingService, middleware *Middleware, templates *template.Template) *EarTrainingHandler {
	return &EarTrainingHandler{
		service:    svc,
		middleware: middleware,
		templates:  templates,
	}
}

// Routes registers the handler's routes on mux
func (h *EarTrainingHandler) Routes(mux *http.ServeMux) {
	m := h.middleware

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /ear-training", m.Learner(h.ShowQuiz))
	mux.HandleFunc("GET /ear-training/trials", m.Learner(h.ShowTrials))

	mux.HandleFunc("GET /api/ear-training/state", m.Learner(h.GetState))
	mux.HandleFunc("POST /api/ear-training/trials/{index}/play", m.RateLimit(m.Learner(m.CSRFProtect(h.PlayTrial))))
	mux.HandleFunc("POST /api/ear-training/trials/{index}/guess", m.RateLimit(m.Learner(m.CSRFProtect(h.Guess))))
	mux.HandleFunc("POST /api/ear-training/settings", m.RateLimit(m.Learner(m.CSRFProtect(h.UpdateSettings))))
	mux.HandleFunc("POST /api/ear-training/fresh", m.RateLimit(m.Learner(m.CSRFProtect(h.StartFresh))))
}

// Home redirects to the quiz
func (h *EarTrainingHandler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/ear-training", http.StatusSeeOther)
}

// ShowQuiz renders the quiz page. The instrument, capo and instructions
// query parameters override saved settings.
func (h *EarTrainingHandler) ShowQuiz(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Open(GetLearnerFromContext(r.Context()), quiz.ParseOverrides(r.URL.Query()))
	if err != nil {
		respondWithServiceError(w, "Error opening ear training", err)
		return
	}

	data := newEarTrainingViewData(result, h.middleware.CSRFToken(r))
	if err := h.templates.ExecuteTemplate(w, "ear_training.tmpl", data); err != nil {
		log.Printf("Error rendering ear training template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// ShowTrials renders only the trial list, for refreshing part of the page
func (h *EarTrainingHandler) ShowTrials(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Open(GetLearnerFromContext(r.Context()), quiz.Overrides{})
	if err != nil {
		respondWithServiceError(w, "Error loading trials", err)
		return
	}

	data := newEarTrainingViewData(result, h.middleware.CSRFToken(r))
	if err := h.templates.ExecuteTemplate(w, "ear_training_trials", data); err != nil {
		log.Printf("Error rendering trials template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// GetState returns the learner's view as JSON
func (h *EarTrainingHandler) GetState(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Open(GetLearnerFromContext(r.Context()), quiz.Overrides{})
	if err != nil {
		respondWithServiceError(w, "Error loading ear training state", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// PlayTrial plays a trial's target note
func (h *EarTrainingHandler) PlayTrial(w http.ResponseWriter, r *http.Request) {
	index, ok := trialIndex(w, r)
	if !ok {
		return
	}

	result, err := h.service.PlayTrial(GetLearnerFromContext(r.Context()), index)
	if err != nil {
		respondWithServiceError(w, "Error playing trial", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

type guessRequest struct {
	Note string `json:"note"`
}

// Guess records a guess. The note comes from a JSON body or a form field.
func (h *EarTrainingHandler) Guess(w http.ResponseWriter, r *http.Request) {
	index, ok := trialIndex(w, r)
	if !ok {
		return
	}

	var req guessRequest
	if isJSON(r) {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", nil)
			return
		}
	} else {
		req.Note = r.FormValue("note")
	}
	if req.Note == "" {
		respondWithError(w, http.StatusBadRequest, ErrInvalidNote, "", nil)
		return
	}

	result, err := h.service.Guess(GetLearnerFromContext(r.Context()), index, req.Note)
	if err != nil {
		respondWithServiceError(w, "Error recording guess", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// UpdateSettings changes instrument, capo, reference note or instructions
func (h *EarTrainingHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var update service.SettingsUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&update); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", nil)
		return
	}

	result, err := h.service.UpdateSettings(GetLearnerFromContext(r.Context()), update)
	if err != nil {
		respondWithServiceError(w, "Error updating settings", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// StartFresh discards progress and deals a new session
func (h *EarTrainingHandler) StartFresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.StartFresh(GetLearnerFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, "Error starting fresh session", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func trialIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidTrial, "", nil)
		return 0, false
	}
	return index, true
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
