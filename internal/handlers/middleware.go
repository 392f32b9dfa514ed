package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"eartraining/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const LearnerContextKey ContextKey = "learner"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens  *security.LearnerTokens
	csrf    *security.CSRFGenerator
	limiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance. limiter may be nil.
func NewMiddleware(tokens *security.LearnerTokens, csrf *security.CSRFGenerator, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		tokens:  tokens,
		csrf:    csrf,
		limiter: limiter,
	}
}

// Learner identifies the visitor from the signed learner cookie, issuing a
// new identity when the cookie is missing or cannot be verified.
func (m *Middleware) Learner(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var learnerID string
		if cookie, err := r.Cookie(security.LearnerCookieName); err == nil {
			id, err := m.tokens.Verify(cookie.Value)
			if err == nil {
				learnerID = id
			} else {
				log.Printf("Discarding learner cookie: %v", err)
			}
		}

		if learnerID == "" {
			learnerID = security.NewLearnerID()
			token, expires, err := m.tokens.Issue(learnerID)
			if err != nil {
				respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error issuing learner token", err)
				return
			}
			http.SetCookie(w, security.CreateLearnerCookie(r, token, expires))
		}

		ctx := context.WithValue(r.Context(), LearnerContextKey, learnerID)
		next(w, r.WithContext(ctx))
	}
}

// CSRFProtect rejects state-changing requests without the learner's CSRF
// token in the X-CSRF-Token header or the csrf_token form field.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(security.CSRFHeader)
		if token == "" {
			token = r.FormValue("csrf_token")
		}
		if !m.csrf.ValidateToken(GetLearnerFromContext(r.Context()), token) {
			respondWithError(w, http.StatusForbidden, ErrInvalidCSRFToken, "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit limits requests per client IP.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil && !m.limiter.Allow(security.GetClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// CSRFToken returns the token pages embed for the current learner.
func (m *Middleware) CSRFToken(r *http.Request) string {
	token, err := m.csrf.GenerateToken(GetLearnerFromContext(r.Context()))
	if err != nil {
		return ""
	}
	return token
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetLearnerFromContext retrieves the learner ID from the request context
func GetLearnerFromContext(ctx context.Context) string {
	learnerID, _ := ctx.Value(LearnerContextKey).(string)
	return learnerID
}
