package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"speakup-api/internal/app"
	"speakup-api/internal/audio"
	"speakup-api/internal/config"
	"speakup-api/internal/events"
	apihttp "speakup-api/internal/http"
	"speakup-api/internal/observability"
	obsmetrics "speakup-api/internal/observability/metrics"
	"speakup-api/internal/service/chat"
	"speakup-api/internal/service/sprites"
	"speakup-api/internal/service/stt"
	"speakup-api/internal/service/stt/google"
	sttmock "speakup-api/internal/service/stt/mock"
	"speakup-api/internal/service/stt/whisper"
	"speakup-api/internal/service/transcribe"
	"speakup-api/internal/service/tts"
	ttsmock "speakup-api/internal/service/tts/mock"
	"speakup-api/internal/service/tts/xtts"
)

func main() {
	cfg := config.Load()
	application := app.New(cfg)
	log := application.Logger
	m := obsmetrics.DefaultMetrics

	publisher := events.New(&events.Config{
		Enabled:          cfg.Kafka.Enabled,
		Brokers:          cfg.Kafka.Brokers,
		TopicTranscripts: cfg.Kafka.TopicTranscripts,
		TopicReplies:     cfg.Kafka.TopicReplies,
		Principal:        cfg.Kafka.Principal,
	})
	defer publisher.Close()

	recognizer, err := newRecognizer(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.STT.Provider).Msg("Recognizer init failed")
	}
	if closer, ok := recognizer.(io.Closer); ok {
		defer closer.Close()
	}

	normalizer := audio.NewNormalizer(audio.Limits{
		MaxBytes:   cfg.Limits.MaxAudioBytes,
		MaxSeconds: cfg.Limits.MaxAudioSeconds,
	}, nil)
	transcriber := transcribe.New(normalizer, recognizer, publisher, m)

	relay := chat.New(chat.Config{
		BaseURL:      cfg.Chat.BaseURL,
		DefaultModel: cfg.Chat.DefaultModel,
		SyncTimeout:  cfg.Chat.SyncTimeout,
	})

	engine := tts.NewEngine(newSynthesizer(cfg), nil, tts.Config{
		DefaultVoice:    cfg.TTS.DefaultVoice,
		DefaultLanguage: cfg.TTS.DefaultLang,
		DefaultFormat:   cfg.TTS.DefaultFormat,
	}, m)

	spriteService := newSpriteService(cfg, m, log)

	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}

	// Reachability is informational: the service starts regardless and
	// surfaces backend trouble per request.
	if relay.CheckConnection(context.Background()) {
		log.Info().Str("backend", cfg.Chat.BaseURL).Msg("Completion backend reachable")
	}

	router := apihttp.NewRouter(apihttp.Dependencies{
		Cfg:        cfg,
		Transcribe: transcriber,
		Relay:      relay,
		TTS:        engine,
		Sprites:    spriteService,
		Publisher:  publisher,
		Metrics:    m,
	})

	// No WriteTimeout: /chat streams for model-dependent time and /tts can
	// run long on cold synthesis backends.
	srv := &http.Server{
		Addr:              ":" + cfg.Service.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	obsServer := observability.NewServer(cfg.Observability.MetricsAddr, nil)
	obsServer.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := obsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Observability server shutdown failed")
	}
	application.Shutdown()
}

// newRecognizer selects the transcription provider.
func newRecognizer(cfg *config.Configuration) (stt.Recognizer, error) {
	switch cfg.STT.Provider {
	case "whisper":
		return whisper.New(whisper.Config{
			BaseURL: cfg.STT.WhisperURL,
			Model:   cfg.STT.Model,
			Device:  cfg.STT.Device,
		}), nil
	case "google":
		return google.New(context.Background())
	case "mock":
		return sttmock.New(), nil
	default:
		return nil, fmt.Errorf("unknown STT provider %q", cfg.STT.Provider)
	}
}

// newSynthesizer selects the synthesis provider; anything but xtts falls back
// to the built-in mock.
func newSynthesizer(cfg *config.Configuration) tts.Synthesizer {
	if cfg.TTS.Provider == "xtts" {
		return xtts.New(xtts.Config{BaseURL: cfg.TTS.XTTSURL})
	}
	return ttsmock.New()
}

// newSpriteService wires the sprite review workflow. Without storage
// credentials the workflow stays disabled and its routes answer 503.
func newSpriteService(cfg *config.Configuration, m *obsmetrics.Metrics, log zerolog.Logger) *sprites.Service {
	if !cfg.Storage.Configured() {
		log.Warn().Msg("Object storage not configured, sprite endpoints disabled")
		return nil
	}

	store, err := sprites.NewMinioStore(cfg.Storage)
	if err != nil {
		log.Error().Err(err).Msg("Object storage init failed, sprite endpoints disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBuckets(ctx, cfg.Storage.PendingBucket, cfg.Storage.ApprovedBucket); err != nil {
		log.Warn().Err(err).Msg("Could not ensure sprite buckets, continuing")
	}

	return sprites.New(store, sprites.Config{
		PendingBucket:  cfg.Storage.PendingBucket,
		ApprovedBucket: cfg.Storage.ApprovedBucket,
		MaxBytes:       cfg.Limits.MaxSpriteBytes,
	}, m)
}
