package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"speakup-api/internal/audio"
	"speakup-api/internal/config"
	"speakup-api/internal/events"
	"speakup-api/internal/models"
	obsmetrics "speakup-api/internal/observability/metrics"
	"speakup-api/internal/service/chat"
	"speakup-api/internal/service/transcribe"
	"speakup-api/internal/service/tts"
)

// fakeRecognizer returns a fixed recognition and records whether it ran.
type fakeRecognizer struct {
	recognition models.Recognition
	err         error
	called      bool
	gotLanguage string
}

func (f *fakeRecognizer) Name() string { return "fake" }

func (f *fakeRecognizer) Recognize(_ context.Context, _ audio.Clip, language string) (models.Recognition, error) {
	f.called = true
	f.gotLanguage = language
	return f.recognition, f.err
}

// wavRunner stands in for ffmpeg: every invocation answers with a fixed WAV.
type wavRunner struct {
	wav    []byte
	called bool
}

func (r *wavRunner) Run(_ context.Context, _ []string, _ []byte) ([]byte, error) {
	r.called = true
	return r.wav, nil
}

// fakeSynth is a synthesizer with a fixed catalog and output.
type fakeSynth struct {
	voices []string
	out    []byte
}

func (f *fakeSynth) Name() string { return "fake" }

func (f *fakeSynth) Synthesize(_ context.Context, _, _, _ string) ([]byte, error) {
	return f.out, nil
}

func (f *fakeSynth) Voices(_ context.Context) ([]string, error) {
	return append([]string(nil), f.voices...), nil
}

func conf(v float64) *float64 { return &v }

func testConfig() *config.Configuration {
	return &config.Configuration{
		Service: config.ServiceConfig{Principal: "speakup-api", HTTPPort: "8000", DefaultLanguage: "ru"},
		Chat:    config.ChatConfig{DefaultModel: "qwen2.5:1b"},
		TTS:     config.TTSConfig{DefaultVoice: "Gracie Wise", DefaultLang: "ru", DefaultFormat: "wav"},
		Limits:  config.LimitsConfig{MaxAudioBytes: 15 << 20, MaxAudioSeconds: 25, MaxSpriteBytes: 1 << 20},
	}
}

func testWAV(t *testing.T, seconds int) []byte {
	t.Helper()
	wav, err := audio.EncodeWAV(make([]int16, seconds*audio.CanonicalSampleRate), audio.CanonicalSampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	return wav
}

// newTestRouter builds a router around deps, filling every unset dependency
// with a working in-memory fake.
func newTestRouter(t *testing.T, deps Dependencies) http.Handler {
	t.Helper()
	if deps.Cfg == nil {
		deps.Cfg = testConfig()
	}
	if deps.Metrics == nil {
		deps.Metrics = obsmetrics.DefaultMetrics
	}
	if deps.Publisher == nil {
		deps.Publisher = events.New(nil)
	}
	if deps.Transcribe == nil {
		normalizer := audio.NewNormalizer(audio.Limits{
			MaxBytes:   deps.Cfg.Limits.MaxAudioBytes,
			MaxSeconds: deps.Cfg.Limits.MaxAudioSeconds,
		}, &wavRunner{wav: testWAV(t, 2)})
		deps.Transcribe = transcribe.New(normalizer, &fakeRecognizer{}, deps.Publisher, deps.Metrics)
	}
	if deps.Relay == nil {
		deps.Relay = chat.New(chat.Config{BaseURL: "http://127.0.0.1:1", DefaultModel: deps.Cfg.Chat.DefaultModel})
	}
	if deps.TTS == nil {
		deps.TTS = tts.NewEngine(
			&fakeSynth{voices: []string{"Gracie Wise"}, out: testWAV(t, 1)},
			&wavRunner{wav: testWAV(t, 1)},
			tts.Config{
				DefaultVoice:    deps.Cfg.TTS.DefaultVoice,
				DefaultLanguage: deps.Cfg.TTS.DefaultLang,
				DefaultFormat:   deps.Cfg.TTS.DefaultFormat,
			},
			deps.Metrics,
		)
	}
	return NewRouter(deps)
}

// multipartUpload builds a multipart body with one file part carrying an
// explicit content type, plus optional extra form fields.
func multipartUpload(t *testing.T, field, filename, contentType string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(%s): %v", k, err)
		}
	}

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("writing part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody[map[string]bool](t, rec)
	if !body["ok"] {
		t.Errorf("body = %q, want ok=true", rec.Body.String())
	}
}

func TestLivenessEndpoints(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	for path, want := range map[string]string{"/healthz": "ok", "/readyz": "ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
		if rec.Body.String() != want {
			t.Errorf("%s body = %q, want %q", path, rec.Body.String(), want)
		}
	}
}
