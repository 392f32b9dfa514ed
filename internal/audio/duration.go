package audio

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultBPM is the tempo note-value tokens are measured against.
const DefaultBPM = 120

// ParseDuration converts a note-value token into a duration at bpm. Tokens
// are a subdivision of a whole note followed by "n" ("1n", "4n", "16n") with
// an optional "." for a dotted value, or followed by "t" for a triplet
// ("8t"). Plain seconds ("1.5") are also accepted.
func ParseDuration(token string, bpm float64) (time.Duration, error) {
	if bpm <= 0 {
		return 0, fmt.Errorf("bpm must be > 0: %v", bpm)
	}

	t := strings.TrimSpace(token)
	if secs, err := strconv.ParseFloat(t, 64); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("duration must be > 0: %q", token)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}

	factor := 1.0
	var division string
	var ok bool
	switch {
	case strings.HasSuffix(t, "."):
		factor = 1.5
		division, ok = strings.CutSuffix(strings.TrimSuffix(t, "."), "n")
	case strings.HasSuffix(t, "t"):
		// triplets are written "4t"
		factor = 2.0 / 3.0
		division, ok = strings.TrimSuffix(t, "t"), true
	default:
		division, ok = strings.CutSuffix(t, "n")
	}
	if !ok {
		return 0, fmt.Errorf("unknown duration token %q", token)
	}
	n, err := strconv.Atoi(division)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unknown duration token %q", token)
	}

	quarter := 60.0 / bpm
	seconds := quarter * 4 / float64(n) * factor
	return time.Duration(seconds * float64(time.Second)), nil
}
