package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"

	"golang.org/x/crypto/hkdf"
)

const keySize = 32

// Keys are the secrets derived from SESSION_SECRET, one per purpose.
type Keys struct {
	LearnerToken []byte
	CSRF         []byte
}

// DeriveKeys expands secret into independent keys with HKDF-SHA256. An empty
// secret gets a random one, so learner cookies do not survive a restart.
func DeriveKeys(secret string) (Keys, error) {
	if secret == "" {
		random := make([]byte, keySize)
		if _, err := rand.Read(random); err != nil {
			return Keys{}, fmt.Errorf("failed to generate session secret: %w", err)
		}
		secret = hex.EncodeToString(random)
		log.Printf("Warning: SESSION_SECRET not set, learners will lose their progress on restart")
	}

	learner, err := expand(secret, "eartraining learner token")
	if err != nil {
		return Keys{}, err
	}
	csrf, err := expand(secret, "eartraining csrf")
	if err != nil {
		return Keys{}, err
	}
	return Keys{LearnerToken: learner, CSRF: csrf}, nil
}

func expand(secret, info string) ([]byte, error) {
	key := make([]byte, keySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive %s key: %w", info, err)
	}
	return key, nil
}
