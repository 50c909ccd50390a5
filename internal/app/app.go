// Package app holds process-wide state and lifecycle hooks.
package app

import (
	"time"

	"github.com/rs/zerolog"

	"speakup-api/internal/config"
	"speakup-api/internal/observability/logging"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Configuration
}

// New constructs the Application and initializes the global logger from the
// observability configuration.
func New(cfg *config.Configuration) *Application {
	logging.Init(logging.Config{
		Level:  cfg.Observability.LogLevel,
		Format: cfg.Observability.LogFormat,
	})

	a := &Application{
		Cfg:    cfg,
		Logger: logging.WithComponent("application"),
	}
	a.Logger.Info().Msg("SpeakUP API application created")
	return a
}

// Start records the startup time and announces the wired providers.
func (a *Application) Start() error {
	a.StartupTime = time.Now().UTC()

	a.Logger.Info().
		Time("startupTime", a.StartupTime).
		Str("sttProvider", a.Cfg.STT.Provider).
		Str("ttsProvider", a.Cfg.TTS.Provider).
		Str("chatBackend", a.Cfg.Chat.BaseURL).
		Str("defaultLanguage", a.Cfg.Service.DefaultLanguage).
		Bool("spritesEnabled", a.Cfg.Storage.Configured()).
		Msg("SpeakUP API starting")

	return nil
}

// Shutdown performs a best-effort cleanup log before process exit.
func (a *Application) Shutdown() {
	a.Logger.Info().
		Dur("uptime", time.Since(a.StartupTime)).
		Msg("SpeakUP API shutting down")
}
