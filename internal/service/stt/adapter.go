// Package stt defines the interface for Speech-to-Text adapters.
package stt

import (
	"context"

	"speakup-api/internal/audio"
	"speakup-api/internal/models"
)

// Recognizer defines the interface for transcription providers
// (whisper-server, Google, mock). Implementations receive the canonical
// waveform produced by the audio normalizer and return the transcript
// together with the ordered recognition event list. Engines that expose no
// per-segment score must leave Confidence nil on every event; the metrics
// engine treats that as neutral.
type Recognizer interface {
	// Name returns the provider name for logging and metrics.
	Name() string

	// Recognize transcribes the clip in the given language.
	Recognize(ctx context.Context, clip audio.Clip, language string) (models.Recognition, error)
}
