package security

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LearnerCookieName holds the signed learner token.
const LearnerCookieName = "learner"

const learnerTokenIssuer = "eartraining"

// ErrInvalidLearnerToken is returned when a learner cookie cannot be trusted.
var ErrInvalidLearnerToken = errors.New("invalid learner token")

// NewLearnerID creates a new random learner identity
func NewLearnerID() string {
	return uuid.New().String()
}

// LearnerTokens issues and verifies HS256 tokens naming a learner.
type LearnerTokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewLearnerTokens creates a token issuer signing with key.
func NewLearnerTokens(key []byte, ttl time.Duration) *LearnerTokens {
	return &LearnerTokens{key: key, ttl: ttl, now: time.Now}
}

// Issue signs a token for learnerID and returns it with its expiry.
func (t *LearnerTokens) Issue(learnerID string) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    learnerTokenIssuer,
		Subject:   learnerID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign learner token: %w", err)
	}
	return token, expires, nil
}

// Verify checks a token's signature and expiry and returns the learner ID.
func (t *LearnerTokens) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(learnerTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)

	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.key, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLearnerToken, err)
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: bad subject", ErrInvalidLearnerToken)
	}
	return claims.Subject, nil
}

// IsSecureRequest determines if the request is over HTTPS, directly or
// behind a reverse proxy
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// CreateLearnerCookie creates the learner cookie with proper security flags
func CreateLearnerCookie(r *http.Request, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     LearnerCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}
