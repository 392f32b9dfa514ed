package audio

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		token   string
		want    time.Duration
		wantErr bool
	}{
		{"1n", 2 * time.Second, false},
		{"2n", time.Second, false},
		{"2n.", 1500 * time.Millisecond, false},
		{"4n", 500 * time.Millisecond, false},
		{"8n", 250 * time.Millisecond, false},
		{"4t", 333333333 * time.Nanosecond, false},
		{"8t", 166666666 * time.Nanosecond, false},
		{"t", 0, true},
		{"4nt", 0, true},
		{"0.75", 750 * time.Millisecond, false},
		{"", 0, true},
		{"0n", 0, true},
		{"xn", 0, true},
		{"4m", 0, true},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseDuration(tt.token, DefaultBPM)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuration(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
			}
			if diff := got - tt.want; diff > time.Microsecond || diff < -time.Microsecond {
				t.Errorf("ParseDuration(%q) = %s, want %s", tt.token, got, tt.want)
			}
		})
	}
}

func TestParseDurationTempo(t *testing.T) {
	got, err := ParseDuration("4n", 60)
	if err != nil {
		t.Fatalf("ParseDuration() error = %v", err)
	}
	if got != time.Second {
		t.Errorf("quarter note at 60 BPM = %s, want 1s", got)
	}
	if _, err := ParseDuration("4n", 0); err == nil {
		t.Error("ParseDuration() with zero bpm should fail")
	}
}
