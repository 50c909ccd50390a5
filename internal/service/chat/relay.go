// Package chat relays conversations to the completion backend (an
// Ollama-style HTTP API). The relay owns timeout and error translation
// policy; it performs no retries in either mode, since a child-facing
// conversational turn has no safe automatic-retry semantics once a partial
// reply may have been produced.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"speakup-api/internal/apperr"
	"speakup-api/internal/models"
	"speakup-api/internal/service/compose"
)

// DefaultSyncTimeout bounds a buffered-mode completion call.
const DefaultSyncTimeout = 120 * time.Second

// Config holds relay configuration.
type Config struct {
	BaseURL      string
	DefaultModel string
	SyncTimeout  time.Duration
}

// Relay forwards prepared conversations to the completion backend.
type Relay struct {
	cfg Config

	// streamClient has no timeout ceiling: total response time is
	// model-dependent and the caller handles cancellation via context.
	streamClient *http.Client
	syncClient   *http.Client
}

// New creates a relay for the given backend.
func New(cfg Config) *Relay {
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = DefaultSyncTimeout
	}
	return &Relay{
		cfg:          cfg,
		streamClient: &http.Client{},
		syncClient:   &http.Client{Timeout: cfg.SyncTimeout},
	}
}

type backendRequest struct {
	Model    string                    `json:"model"`
	Stream   bool                      `json:"stream"`
	Messages []models.ConversationTurn `json:"messages"`
}

type backendResponse struct {
	Message models.ConversationTurn `json:"message"`
}

// Stream opens a streaming completion and returns the backend's response body
// for verbatim relay. The caller must close it; cancelling ctx terminates the
// upstream connection.
func (r *Relay) Stream(ctx context.Context, req models.ConversationRequest) (io.ReadCloser, error) {
	body, err := r.encode(req, true)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/api/chat", body)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ReasonUpstreamUnavailable, "building backend request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.streamClient.Do(httpReq)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ReasonUpstreamUnavailable, "completion backend unreachable")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, apperr.Newf(apperr.ReasonUpstreamError,
			"completion backend returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return resp.Body, nil
}

// Sync issues one buffered completion for a single user message and returns
// the assistant's textual content.
func (r *Relay) Sync(ctx context.Context, message, model string, m *models.SpeechMetrics) (string, error) {
	req := models.ConversationRequest{
		Model:    model,
		Messages: []models.ConversationTurn{{Role: models.RoleUser, Content: message}},
		Metrics:  m,
	}

	body, err := r.encode(req, false)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/api/chat", body)
	if err != nil {
		return "", apperr.Wrap(err, apperr.ReasonUpstreamUnavailable, "building backend request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.syncClient.Do(httpReq)
	if err != nil {
		return "", apperr.Wrap(err, apperr.ReasonUpstreamUnavailable, "completion backend unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", apperr.Newf(apperr.ReasonUpstreamError,
			"completion backend returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	var payload backendResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", apperr.Wrap(err, apperr.ReasonUpstreamError, "decoding backend response")
	}
	return payload.Message.Content, nil
}

// CheckConnection reports whether the completion backend is reachable.
// Used once at startup; failures only degrade, never crash.
func (r *Relay) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := r.syncClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("baseURL", r.cfg.BaseURL).Msg("Completion backend unreachable")
		return false
	}
	resp.Body.Close()
	return true
}

// encode prepares the wire body: model fallback and, when metrics are
// present, the composed system turn prepended to the conversation.
func (r *Relay) encode(req models.ConversationRequest, stream bool) (io.Reader, error) {
	model := req.Model
	if model == "" {
		model = r.cfg.DefaultModel
	}

	wire := backendRequest{
		Model:    model,
		Stream:   stream,
		Messages: compose.Prepend(req.Messages, req.Metrics),
	}

	b, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal backend request: %w", err)
	}
	return bytes.NewReader(b), nil
}
