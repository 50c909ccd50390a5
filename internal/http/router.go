// Package http wires the service's HTTP surface: transcription, conversation
// relay, speech synthesis and the sprite review workflow.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"speakup-api/internal/config"
	"speakup-api/internal/events"
	"speakup-api/internal/observability"
	"speakup-api/internal/observability/logging"
	obsmetrics "speakup-api/internal/observability/metrics"
	"speakup-api/internal/service/chat"
	"speakup-api/internal/service/sprites"
	"speakup-api/internal/service/transcribe"
	"speakup-api/internal/service/tts"
)

// Dependencies carries the wired services the HTTP surface dispatches to.
// Sprites may be nil when object storage is unconfigured; its routes then
// answer 503 configuration_missing.
type Dependencies struct {
	Cfg        *config.Configuration
	Transcribe *transcribe.Service
	Relay      *chat.Relay
	TTS        *tts.Engine
	Sprites    *sprites.Service
	Publisher  *events.Publisher
	Metrics    *obsmetrics.Metrics
}

type handlers struct {
	Dependencies
	log zerolog.Logger
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(deps Dependencies) http.Handler {
	h := &handlers{Dependencies: deps, log: logging.WithComponent("http")}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(observability.Middleware(deps.Metrics))

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// Conversation pipeline
	r.Post("/stt", h.handleSTT)
	r.Post("/chat", h.handleChatStream)
	r.Post("/chat/sync", h.handleChatSync)
	r.Post("/tts", h.handleTTS)
	r.Get("/speakers", h.handleSpeakers)

	// Sprite review workflow
	r.Route("/sprites", func(r chi.Router) {
		r.Post("/upload", h.requireSprites(h.handleSpriteUpload))
		r.Post("/approve", h.requireSprites(h.handleSpriteApprove))
		r.Get("/pending", h.requireSprites(h.handleSpritePending))
		r.Delete("/pending/{userID}/{filename}", h.requireSprites(h.handleSpriteReject))
		r.Get("/{userID}", h.requireSprites(h.handleSpriteList))
		r.Get("/{userID}/{filename}", h.requireSprites(h.handleSpriteImage))
	})

	return r
}

func (h *handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
