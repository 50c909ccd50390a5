// Package tts renders assistant replies as audio. A Synthesizer produces a
// PCM-16 WAV waveform; the engine resolves the voice against what the backend
// actually offers and transcodes into the delivery format.
package tts

import "context"

// Synthesizer is a speech synthesis backend.
type Synthesizer interface {
	// Name returns the provider name for logging and metrics.
	Name() string
	// Synthesize renders text as a PCM-16 WAV waveform in the given voice
	// and language.
	Synthesize(ctx context.Context, text, voice, language string) ([]byte, error)
	// Voices lists the voices the backend currently offers.
	Voices(ctx context.Context) ([]string, error)
}

// ResolveVoice picks the voice to synthesize with. A requested voice that the
// backend offers is used as-is; one it does not offer falls back to the first
// available voice, reported via the substituted flag. An empty voice list
// leaves the request untouched since there is nothing to validate against.
func ResolveVoice(available []string, requested string) (voice string, substituted bool) {
	if requested == "" || len(available) == 0 {
		return requested, false
	}
	for _, v := range available {
		if v == requested {
			return requested, false
		}
	}
	return available[0], true
}
