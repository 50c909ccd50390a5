package tts

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"speakup-api/internal/apperr"
	"speakup-api/internal/audio"
	"speakup-api/internal/observability/logging"
	obsmetrics "speakup-api/internal/observability/metrics"
)

// Config holds engine defaults applied when a request leaves a field blank.
type Config struct {
	DefaultVoice    string
	DefaultLanguage string
	DefaultFormat   string // "wav" or "mp3"
}

// Request is one synthesis job.
type Request struct {
	Text     string
	Voice    string
	Language string
	Format   string
}

// Engine coordinates a synthesis backend with voice resolution and delivery
// transcoding.
type Engine struct {
	synth   Synthesizer
	runner  audio.Runner
	cfg     Config
	log     zerolog.Logger
	metrics *obsmetrics.Metrics
}

// NewEngine creates a synthesis engine. A nil runner defaults to ffmpeg from
// PATH; transcoding only happens for non-WAV delivery formats.
func NewEngine(synth Synthesizer, runner audio.Runner, cfg Config, m *obsmetrics.Metrics) *Engine {
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "wav"
	}
	return &Engine{
		synth:   synth,
		runner:  runner,
		cfg:     cfg,
		log:     logging.WithProvider("tts", synth.Name()),
		metrics: m,
	}
}

// Render synthesizes the request and returns the audio bytes with their media
// type. Voice substitution is silent toward the client: the fallback voice is
// used and only the logs and metrics record it.
func (e *Engine) Render(ctx context.Context, req Request) ([]byte, string, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, "", apperr.New(apperr.ReasonBadRequest, "text is required")
	}

	voice := req.Voice
	if voice == "" {
		voice = e.cfg.DefaultVoice
	}
	language := req.Language
	if language == "" {
		language = e.cfg.DefaultLanguage
	}
	format := req.Format
	if format == "" {
		format = e.cfg.DefaultFormat
	}

	voice = e.resolveVoice(ctx, voice)

	start := time.Now()
	wav, err := e.synth.Synthesize(ctx, text, voice, language)
	e.metrics.RecordSynthesis(err, time.Since(start).Seconds())
	if err != nil {
		e.log.Error().Err(err).Str("voice", voice).Msg("Synthesis failed")
		return nil, "", err
	}

	out, err := e.deliver(ctx, wav, format)
	if err != nil {
		return nil, "", err
	}

	e.log.Debug().
		Str("voice", voice).
		Str("format", format).
		Int("textLength", len(text)).
		Int("audioBytes", len(out)).
		Msg("Synthesis complete")

	return out, MediaType(format), nil
}

// Speakers lists the backend's voices together with the configured default.
func (e *Engine) Speakers(ctx context.Context) ([]string, string, error) {
	voices, err := e.synth.Voices(ctx)
	if err != nil {
		return nil, "", err
	}
	return voices, e.cfg.DefaultVoice, nil
}

// resolveVoice validates the voice against the backend's catalog. Listing
// failures are non-fatal: the backend gets the voice unresolved and decides
// itself.
func (e *Engine) resolveVoice(ctx context.Context, voice string) string {
	available, err := e.synth.Voices(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("Could not list voices, using requested voice unresolved")
		return voice
	}

	resolved, substituted := ResolveVoice(available, voice)
	if substituted {
		e.metrics.RecordVoiceSubstitution()
		e.log.Warn().
			Str("requested", voice).
			Str("resolved", resolved).
			Msg("Requested voice not available, substituted")
	}
	return resolved
}

// deliver transcodes the synthesized WAV into the delivery format. The WAV
// header tells us the backend's native sample rate, which is preserved.
func (e *Engine) deliver(ctx context.Context, wav []byte, format string) ([]byte, error) {
	if format == "wav" {
		return wav, nil
	}
	rate, _, _, err := audio.ParseWAV(wav)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ReasonUpstreamError, "synthesizer returned invalid audio")
	}
	return audio.Transcode(ctx, e.runner, wav, format, rate)
}

// MediaType maps a delivery format to its content type.
func MediaType(format string) string {
	if format == "mp3" {
		return "audio/mpeg"
	}
	return "audio/wav"
}
