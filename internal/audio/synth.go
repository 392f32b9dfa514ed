package audio

import (
	"math"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/signal"
	"github.com/cwbudde/algo-dsp/dsp/window"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// SampleRate of every rendered note.
const SampleRate = 44100

// Voice renders one note at a frequency for a held duration. The returned
// buffer may be longer than the duration to include the release.
type Voice interface {
	Render(freqHz float64, hold time.Duration) []float64
}

// Envelope is an attack/decay/sustain/release amplitude shape in seconds,
// with Sustain as a level in [0, 1].
type Envelope struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// Coefficients returns the per-sample gain for a note held for holdSamples
// followed by the release.
func (e Envelope) Coefficients(holdSamples, sampleRate int) []float64 {
	attack := int(e.Attack * float64(sampleRate))
	decay := int(e.Decay * float64(sampleRate))
	release := int(e.Release * float64(sampleRate))

	coeffs := make([]float64, holdSamples+release)
	level := 0.0
	for i := 0; i < holdSamples; i++ {
		switch {
		case i < attack:
			level = float64(i) / float64(attack)
		case i < attack+decay:
			level = 1 - (1-e.Sustain)*float64(i-attack)/float64(decay)
		default:
			level = e.Sustain
		}
		coeffs[i] = level
	}
	// release from wherever the hold phase ended
	for i := 0; i < release; i++ {
		coeffs[holdSamples+i] = level * (1 - float64(i)/float64(release))
	}
	return coeffs
}

// Synth is a triangle oscillator shaped by an envelope.
type Synth struct {
	Envelope  Envelope
	Amplitude float64
}

// NewSynth returns the default synth voice.
func NewSynth() *Synth {
	return &Synth{
		Envelope:  Envelope{Attack: 0.02, Decay: 0.3, Sustain: 0.3, Release: 0.8},
		Amplitude: 0.6,
	}
}

func (s *Synth) Render(freqHz float64, hold time.Duration) []float64 {
	holdSamples := int(hold.Seconds() * SampleRate)
	env := s.Envelope.Coefficients(holdSamples, SampleRate)

	out := make([]float64, len(env))
	phaseStep := freqHz / SampleRate
	phase := 0.0
	for i := range out {
		out[i] = s.Amplitude * (4*math.Abs(phase-0.5) - 1)
		phase += phaseStep
		if phase >= 1 {
			phase -= 1
		}
	}

	vecmath.MulBlockInPlace(out, env)
	return out
}

// Banjo is a plucked string using Karplus-Strong synthesis.
type Banjo struct {
	// Damping is the per-period energy loss in (0, 1].
	Damping   float64
	Amplitude float64
	Seed      int64
}

// NewBanjo returns the default banjo voice.
func NewBanjo() *Banjo {
	return &Banjo{Damping: 0.996, Amplitude: 0.8, Seed: 1}
}

const banjoFadeSeconds = 0.05

func (b *Banjo) Render(freqHz float64, hold time.Duration) []float64 {
	n := int(hold.Seconds() * SampleRate)
	if n <= 0 || freqHz <= 0 {
		return nil
	}

	period := int(math.Round(SampleRate / freqHz))
	if period < 2 {
		period = 2
	}

	gen := signal.NewGeneratorWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(SampleRate)},
		signal.WithSeed(b.Seed),
	)
	ring, err := gen.WhiteNoise(1, period)
	if err != nil {
		return nil
	}

	out := make([]float64, n)
	for i := range out {
		j := i % period
		next := ring[(j+1)%period]
		out[i] = b.Amplitude * ring[j]
		ring[j] = b.Damping * 0.5 * (ring[j] + next)
	}

	// falling half of a Hann window over the last 50ms
	fadeLen := min(int(banjoFadeSeconds*SampleRate), n)
	fade := window.Generate(window.TypeHann, 2*fadeLen)
	if err := window.ApplyCoefficientsInPlace(out[n-fadeLen:], fade[fadeLen:]); err != nil {
		return nil
	}
	return out
}
