package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"eartraining/internal/quiz"
	"eartraining/internal/service"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	http.Error(w, userMsg, status)
}

// respondWithServiceError maps quiz and service errors to HTTP statuses.
// Client mistakes are not logged.
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errors.Is(err, quiz.ErrUnknownTrial):
		respondWithError(w, http.StatusNotFound, ErrUnknownTrial, "", nil)
	case errors.Is(err, quiz.ErrUnknownInstrument), errors.Is(err, quiz.ErrInvalidCapo):
		respondWithError(w, http.StatusBadRequest, ErrInvalidSettings, "", nil)
	case errors.Is(err, service.ErrInvalidNote):
		respondWithError(w, http.StatusBadRequest, ErrInvalidNote, "", nil)
	case errors.Is(err, service.ErrTrialNotPlayed):
		respondWithError(w, http.StatusConflict, ErrTrialNotPlayed, "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
