// Package audio normalizes uploaded recordings into the canonical waveform
// required by the recognition engine: mono PCM-16 at a fixed sample rate.
package audio

import (
	"context"
	"strconv"

	"speakup-api/internal/apperr"
)

// CanonicalSampleRate is the rate the recognition engine expects.
const CanonicalSampleRate = 16000

// Clip is a canonical waveform: a mono PCM-16 WAV container at SampleRate,
// plus its measured duration in seconds.
type Clip struct {
	WAV        []byte
	SampleRate int
	Duration   float64
}

// Limits are the two admission caps enforced by the normalizer.
type Limits struct {
	MaxBytes   int64   // raw upload ceiling, checked before any decoding
	MaxSeconds float64 // decoded duration ceiling, checked before recognition
}

// Normalizer decodes arbitrary uploaded audio into a Clip.
type Normalizer struct {
	limits Limits
	rate   int
	runner Runner
}

// NewNormalizer creates a normalizer with the given admission limits.
// A nil runner defaults to ffmpeg from PATH.
func NewNormalizer(limits Limits, runner Runner) *Normalizer {
	if runner == nil {
		runner = &FFmpegRunner{}
	}
	return &Normalizer{
		limits: limits,
		rate:   CanonicalSampleRate,
		runner: runner,
	}
}

// Normalize decodes raw bytes into the canonical waveform. formatHint is a
// codec tag from FormatFromContentType; empty means auto-detect.
//
// Caps are checked in a fixed order: the byte ceiling before any decoding,
// the duration ceiling after decode but before the recognition call.
func (n *Normalizer) Normalize(ctx context.Context, raw []byte, formatHint string) (Clip, error) {
	if len(raw) == 0 {
		return Clip{}, apperr.New(apperr.ReasonBadRequest, "empty audio upload")
	}
	if n.limits.MaxBytes > 0 && int64(len(raw)) > n.limits.MaxBytes {
		return Clip{}, apperr.Newf(apperr.ReasonPayloadTooLarge,
			"audio too large: %d bytes (max %d)", len(raw), n.limits.MaxBytes)
	}

	args := []string{"-hide_banner", "-loglevel", "error"}
	if formatHint != "" {
		args = append(args, "-f", formatHint)
	}
	args = append(args,
		"-i", "pipe:0",
		"-ac", "1",
		"-ar", strconv.Itoa(n.rate),
		"-acodec", "pcm_s16le",
		"-f", "wav",
		"pipe:1",
	)

	wav, err := n.runner.Run(ctx, args, raw)
	if err != nil {
		return Clip{}, apperr.Wrap(err, apperr.ReasonDecode, "could not decode audio")
	}

	rate, channels, dataBytes, err := ParseWAV(wav)
	if err != nil {
		return Clip{}, apperr.Wrap(err, apperr.ReasonDecode, "could not decode audio")
	}

	duration := Duration(dataBytes, rate, channels)
	if n.limits.MaxSeconds > 0 && duration > n.limits.MaxSeconds {
		return Clip{}, apperr.Newf(apperr.ReasonAudioTooLong,
			"audio too long (%.1fs, max %.0fs)", duration, n.limits.MaxSeconds)
	}

	return Clip{WAV: wav, SampleRate: rate, Duration: duration}, nil
}

// Transcode converts a WAV clip into the requested delivery container.
// Supported formats are "wav" (returned unchanged) and "mp3".
func Transcode(ctx context.Context, runner Runner, wav []byte, format string, sampleRate int) ([]byte, error) {
	if format == "" || format == "wav" {
		return wav, nil
	}
	if runner == nil {
		runner = &FFmpegRunner{}
	}
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "wav",
		"-i", "pipe:0",
		"-ar", strconv.Itoa(sampleRate),
		"-codec:a", "libmp3lame",
		"-q:a", "3",
		"-f", "mp3",
		"pipe:1",
	}
	out, err := runner.Run(ctx, args, wav)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ReasonDecode, "could not transcode audio")
	}
	return out, nil
}
