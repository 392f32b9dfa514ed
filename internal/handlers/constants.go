package handlers

const (
	ErrInvalidFormData     = "Invalid form data"
	ErrInvalidTrial        = "Invalid trial"
	ErrUnknownTrial        = "Trial not found"
	ErrInvalidSettings     = "Invalid settings"
	ErrInvalidNote         = "Invalid note"
	ErrTrialNotPlayed      = "Play the trial before guessing"
	ErrInvalidCSRFToken    = "Invalid CSRF token"
	ErrTooManyRequests     = "Too many requests, slow down"
	ErrInternalServerError = "Internal server error"

	maxRequestBodyBytes = 1 << 16
)
