package tts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"speakup-api/internal/apperr"
	"speakup-api/internal/audio"
	obsmetrics "speakup-api/internal/observability/metrics"
)

func TestResolveVoice(t *testing.T) {
	available := []string{"Gracie Wise", "Ana Florence", "Baldur Sanjin"}

	tests := []struct {
		name        string
		available   []string
		requested   string
		wantVoice   string
		substituted bool
	}{
		{"known voice", available, "Ana Florence", "Ana Florence", false},
		{"unknown voice falls back to first", available, "Nobody", "Gracie Wise", true},
		{"empty request passes through", available, "", "", false},
		{"empty catalog passes through", nil, "Gracie Wise", "Gracie Wise", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voice, substituted := ResolveVoice(tt.available, tt.requested)
			if voice != tt.wantVoice {
				t.Errorf("expected voice %q, got %q", tt.wantVoice, voice)
			}
			if substituted != tt.substituted {
				t.Errorf("expected substituted=%v, got %v", tt.substituted, substituted)
			}
		})
	}
}

// stubSynth records the synthesis call and returns a fixed waveform.
type stubSynth struct {
	voices    []string
	voicesErr error
	synthErr  error

	gotText     string
	gotVoice    string
	gotLanguage string
}

func (s *stubSynth) Name() string { return "stub" }

func (s *stubSynth) Synthesize(ctx context.Context, text, voice, language string) ([]byte, error) {
	s.gotText, s.gotVoice, s.gotLanguage = text, voice, language
	if s.synthErr != nil {
		return nil, s.synthErr
	}
	return audio.EncodeWAV(make([]int16, 2400), 24000)
}

func (s *stubSynth) Voices(ctx context.Context) ([]string, error) {
	return s.voices, s.voicesErr
}

// stubRunner returns canned output and records whether it ran.
type stubRunner struct {
	out    []byte
	called bool
}

func (r *stubRunner) Run(ctx context.Context, args []string, stdin []byte) ([]byte, error) {
	r.called = true
	return r.out, nil
}

func newTestEngine(synth Synthesizer, runner audio.Runner) *Engine {
	return NewEngine(synth, runner, Config{
		DefaultVoice:    "Gracie Wise",
		DefaultLanguage: "ru",
		DefaultFormat:   "wav",
	}, obsmetrics.DefaultMetrics)
}

func TestRender_WAV(t *testing.T) {
	synth := &stubSynth{voices: []string{"Gracie Wise"}}
	runner := &stubRunner{}
	engine := newTestEngine(synth, runner)

	out, mediaType, err := engine.Render(context.Background(), Request{Text: "привет"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mediaType != "audio/wav" {
		t.Errorf("expected audio/wav, got %s", mediaType)
	}
	if len(out) == 0 {
		t.Error("expected audio bytes")
	}
	if runner.called {
		t.Error("wav delivery must not transcode")
	}
	if synth.gotVoice != "Gracie Wise" {
		t.Errorf("expected default voice, got %q", synth.gotVoice)
	}
	if synth.gotLanguage != "ru" {
		t.Errorf("expected default language, got %q", synth.gotLanguage)
	}
}

func TestRender_MP3Transcodes(t *testing.T) {
	synth := &stubSynth{voices: []string{"Gracie Wise"}}
	runner := &stubRunner{out: []byte("ID3fakemp3")}
	engine := newTestEngine(synth, runner)

	out, mediaType, err := engine.Render(context.Background(), Request{Text: "привет", Format: "mp3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mediaType != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %s", mediaType)
	}
	if !runner.called {
		t.Error("expected transcode for mp3 delivery")
	}
	if string(out) != "ID3fakemp3" {
		t.Error("expected transcoder output to be returned")
	}
}

func TestRender_BlankText(t *testing.T) {
	engine := newTestEngine(&stubSynth{}, &stubRunner{})

	_, _, err := engine.Render(context.Background(), Request{Text: "   "})
	if err == nil {
		t.Fatal("expected error for blank text")
	}
	if !apperr.Is(err, apperr.ReasonBadRequest) {
		t.Errorf("expected bad_request, got %v", apperr.ReasonOf(err))
	}
}

func TestRender_VoiceSubstitution(t *testing.T) {
	synth := &stubSynth{voices: []string{"Ana Florence", "Baldur Sanjin"}}
	engine := newTestEngine(synth, &stubRunner{})

	_, _, err := engine.Render(context.Background(), Request{Text: "привет", Voice: "Nobody"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if synth.gotVoice != "Ana Florence" {
		t.Errorf("expected substitution to first available voice, got %q", synth.gotVoice)
	}
}

func TestRender_VoiceListingFailureIsNonFatal(t *testing.T) {
	synth := &stubSynth{voicesErr: errors.New("catalog down")}
	engine := newTestEngine(synth, &stubRunner{})

	_, _, err := engine.Render(context.Background(), Request{Text: "привет", Voice: "Someone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if synth.gotVoice != "Someone" {
		t.Errorf("expected unresolved voice to pass through, got %q", synth.gotVoice)
	}
}

func TestRender_SynthesisError(t *testing.T) {
	synth := &stubSynth{synthErr: apperr.New(apperr.ReasonUpstreamUnavailable, "down")}
	engine := newTestEngine(synth, &stubRunner{})

	_, _, err := engine.Render(context.Background(), Request{Text: "привет"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperr.Is(err, apperr.ReasonUpstreamUnavailable) {
		t.Errorf("expected upstream_unavailable, got %v", apperr.ReasonOf(err))
	}
}

func TestSpeakers(t *testing.T) {
	synth := &stubSynth{voices: []string{"Gracie Wise", "Ana Florence"}}
	engine := newTestEngine(synth, &stubRunner{})

	voices, def, err := engine.Speakers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(voices) != 2 {
		t.Errorf("expected 2 voices, got %d", len(voices))
	}
	if def != "Gracie Wise" {
		t.Errorf("expected default 'Gracie Wise', got %q", def)
	}
}

func TestMediaType(t *testing.T) {
	tests := []struct {
		format   string
		expected string
	}{
		{"wav", "audio/wav"},
		{"mp3", "audio/mpeg"},
		{"", "audio/wav"},
	}

	for _, tt := range tests {
		if got := MediaType(tt.format); got != tt.expected {
			t.Errorf("MediaType(%q) = %q, want %q", tt.format, got, tt.expected)
		}
	}
}

func TestRender_TrimsText(t *testing.T) {
	synth := &stubSynth{voices: []string{"Gracie Wise"}}
	engine := newTestEngine(synth, &stubRunner{})

	_, _, err := engine.Render(context.Background(), Request{Text: "  привет мир  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(synth.gotText) != synth.gotText {
		t.Errorf("expected trimmed text, got %q", synth.gotText)
	}
}
