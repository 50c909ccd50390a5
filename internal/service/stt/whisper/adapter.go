// Package whisper provides a Recognizer backed by a whisper-style HTTP
// transcription server. The server accepts a multipart upload and returns the
// transcript as JSON with per-chunk scores when the model emits them.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"speakup-api/internal/audio"
	"speakup-api/internal/models"
)

// Config holds whisper server connection settings.
type Config struct {
	// BaseURL of the transcription server, e.g. "http://localhost:9000".
	BaseURL string
	// Model identifier forwarded to the server.
	Model string
	// Device is the execution device hint ("cpu", "cuda").
	Device string
	// Timeout bounds one transcription call.
	Timeout time.Duration
}

// DefaultTimeout bounds a recognition call; tiny models transcribe a
// 25-second clip well inside this.
const DefaultTimeout = 60 * time.Second

// Adapter implements stt.Recognizer against a whisper HTTP server.
type Adapter struct {
	cfg    Config
	client *http.Client
}

// New creates a whisper adapter.
func New(cfg Config) *Adapter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Adapter{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Name returns the provider name.
func (a *Adapter) Name() string { return "whisper" }

// serverResponse mirrors the transcription server's JSON shape: the full
// text plus word-level chunks, each carrying a score only when the model
// produced one.
type serverResponse struct {
	Text   string        `json:"text"`
	Chunks []serverChunk `json:"chunks"`
}

type serverChunk struct {
	Text  string   `json:"text"`
	Score *float64 `json:"score,omitempty"`
}

// Recognize uploads the clip and maps the server's chunks into recognition
// events. Absent per-chunk scores yield events with nil confidence.
func (a *Adapter) Recognize(ctx context.Context, clip audio.Clip, language string) (models.Recognition, error) {
	body, contentType, err := a.buildRequestBody(clip, language)
	if err != nil {
		return models.Recognition{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/transcribe", body)
	if err != nil {
		return models.Recognition{}, fmt.Errorf("building transcription request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return models.Recognition{}, fmt.Errorf("transcription server unreachable: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Recognition{}, fmt.Errorf("reading transcription response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Recognition{}, fmt.Errorf("transcription server returned %d: %s",
			resp.StatusCode, bytes.TrimSpace(respBody))
	}

	var parsed serverResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return models.Recognition{}, fmt.Errorf("parsing transcription response: %w", err)
	}

	events := make([]models.RecognitionEvent, 0, len(parsed.Chunks))
	for _, chunk := range parsed.Chunks {
		events = append(events, models.RecognitionEvent{
			Text:       strings.TrimSpace(chunk.Text),
			Confidence: chunk.Score,
		})
	}

	return models.Recognition{
		Text:   strings.TrimSpace(parsed.Text),
		Events: events,
	}, nil
}

// buildRequestBody assembles the multipart upload: the canonical WAV plus
// the recognition parameters the server expects.
func (a *Adapter) buildRequestBody(clip audio.Clip, language string) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fileWriter, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := fileWriter.Write(clip.WAV); err != nil {
		return nil, "", fmt.Errorf("writing audio data: %w", err)
	}

	fields := map[string]string{
		"language":         language,
		"sample_rate":      fmt.Sprintf("%d", clip.SampleRate),
		"duration":         fmt.Sprintf("%.3f", clip.Duration),
		"response_format":  "json",
		"timestamp_format": "word",
	}
	if a.cfg.Model != "" {
		fields["model"] = a.cfg.Model
	}
	if a.cfg.Device != "" {
		fields["device"] = a.cfg.Device
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}
