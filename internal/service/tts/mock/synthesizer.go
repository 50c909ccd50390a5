// Package mock provides a mock synthesizer for development without a
// synthesis server. It renders a sine tone whose length tracks the text
// length, packaged as a real PCM-16 WAV so downstream transcoding works.
package mock

import (
	"context"
	"math"

	"speakup-api/internal/audio"
)

// sampleRate matches the XTTS native output rate.
const sampleRate = 24000

// DefaultVoices mirrors a few stock XTTS speaker names so the voice
// resolution path behaves like production.
var DefaultVoices = []string{"Gracie Wise", "Ana Florence", "Baldur Sanjin"}

// Synthesizer implements tts.Synthesizer with generated tones.
type Synthesizer struct{}

// New creates a mock synthesizer.
func New() *Synthesizer { return &Synthesizer{} }

// Name returns the provider name.
func (s *Synthesizer) Name() string { return "mock" }

// Synthesize renders a 440 Hz tone, 60ms per character bounded to [0.2s, 3s].
func (s *Synthesizer) Synthesize(ctx context.Context, text, voice, language string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seconds := float64(len([]rune(text))) * 0.06
	if seconds < 0.2 {
		seconds = 0.2
	}
	if seconds > 3 {
		seconds = 3
	}

	n := int(seconds * sampleRate)
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / sampleRate
		samples[i] = int16(8000 * math.Sin(2*math.Pi*440*t))
	}

	wav, err := audio.EncodeWAV(samples, sampleRate)
	if err != nil {
		return nil, err
	}
	return wav, nil
}

// Voices lists the canned speaker names.
func (s *Synthesizer) Voices(ctx context.Context) ([]string, error) {
	return append([]string{}, DefaultVoices...), nil
}
