// Package xtts provides a Synthesizer backed by an XTTS-style HTTP synthesis
// server: POST /tts renders a WAV waveform, GET /speakers lists voices.
package xtts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"speakup-api/internal/apperr"
)

// DefaultTimeout bounds one synthesis call. XTTS on CPU is slow for long
// replies, so the ceiling is generous.
const DefaultTimeout = 120 * time.Second

// voicesTimeout bounds the catalog listing, which is a cheap lookup.
const voicesTimeout = 10 * time.Second

// Config holds XTTS server connection settings.
type Config struct {
	// BaseURL of the synthesis server, e.g. "http://localhost:8020".
	BaseURL string
	// Timeout bounds one synthesis call.
	Timeout time.Duration
}

// Client implements tts.Synthesizer against an XTTS HTTP server.
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates an XTTS client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return "xtts" }

type synthesisRequest struct {
	Text     string `json:"text"`
	Speaker  string `json:"speaker,omitempty"`
	Language string `json:"language,omitempty"`
}

// Synthesize renders text on the server and returns the WAV bytes.
func (c *Client) Synthesize(ctx context.Context, text, voice, language string) ([]byte, error) {
	body, err := json.Marshal(synthesisRequest{Text: text, Speaker: voice, Language: language})
	if err != nil {
		return nil, fmt.Errorf("marshal synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/tts", bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ReasonUpstreamUnavailable, "building synthesis request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ReasonUpstreamUnavailable, "synthesis server unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.Newf(apperr.ReasonUpstreamError,
			"synthesis server returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	wav, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ReasonUpstreamError, "reading synthesized audio")
	}
	return wav, nil
}

// Voices lists the speaker names the server offers.
func (c *Client) Voices(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, voicesTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/speakers", nil)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ReasonUpstreamUnavailable, "building speakers request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ReasonUpstreamUnavailable, "synthesis server unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.Newf(apperr.ReasonUpstreamError,
			"synthesis server returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	var speakers []string
	if err := json.NewDecoder(resp.Body).Decode(&speakers); err != nil {
		return nil, apperr.Wrap(err, apperr.ReasonUpstreamError, "decoding speakers response")
	}
	return speakers, nil
}
