// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Configuration holds all runtime configuration for the service.
type Configuration struct {
	Service       ServiceConfig
	STT           STTConfig
	Chat          ChatConfig
	TTS           TTSConfig
	Limits        LimitsConfig
	Storage       StorageConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds process-level settings.
type ServiceConfig struct {
	Principal       string
	HTTPPort        string
	DefaultLanguage string
}

// STTConfig selects and configures the transcription provider.
type STTConfig struct {
	Provider   string // "whisper", "google" or "mock"
	WhisperURL string
	Model      string
	Device     string // execution device hint forwarded to the recognition server
}

// ChatConfig configures the completion backend relay.
type ChatConfig struct {
	BaseURL      string
	DefaultModel string
	SyncTimeout  time.Duration
}

// TTSConfig selects and configures the synthesis provider.
type TTSConfig struct {
	Provider      string // "xtts" or "mock"
	XTTSURL       string
	DefaultVoice  string
	DefaultLang   string
	DefaultFormat string // "wav" or "mp3"
}

// LimitsConfig holds the admission caps enforced before expensive work.
type LimitsConfig struct {
	MaxAudioBytes   int64
	MaxAudioSeconds float64
	MaxSpriteBytes  int64
}

// StorageConfig configures the object store backing the sprite workflow.
// An empty endpoint or secret disables the sprite endpoints instead of
// failing the process.
type StorageConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	PendingBucket  string
	ApprovedBucket string
}

// Configured reports whether the object store credentials are present.
func (s StorageConfig) Configured() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}

// KafkaConfig configures transcript/reply event publishing.
type KafkaConfig struct {
	Enabled          bool
	Brokers          []string
	TopicTranscripts string
	TopicReplies     string
	Principal        string
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel    string
	LogFormat   string // "json" or "console"
	MetricsAddr string
}

// Load reads the configuration from the environment, applying defaults.
// Invalid numeric or boolean values fall back to their defaults.
func Load() *Configuration {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-speakup-api")

	return &Configuration{
		Service: ServiceConfig{
			Principal:       principal,
			HTTPPort:        envOrDefault("HTTP_PORT", "8000"),
			DefaultLanguage: envOrDefault("DEFAULT_LANGUAGE", "ru"),
		},
		STT: STTConfig{
			Provider:   envOrDefault("STT_PROVIDER", "mock"),
			WhisperURL: envOrDefault("WHISPER_URL", "http://localhost:9000"),
			Model:      envOrDefault("WHISPER_MODEL", "qymyz/whisper-tiny-russian-dysarthria"),
			Device:     envOrDefault("TORCH_DEVICE", "cpu"),
		},
		Chat: ChatConfig{
			BaseURL:      envOrDefault("OLLAMA_URL", "http://localhost:11434"),
			DefaultModel: envOrDefault("LLM_MODEL", "qwen2.5:1b"),
			SyncTimeout:  envOrDefaultDuration("CHAT_SYNC_TIMEOUT", 120*time.Second),
		},
		TTS: TTSConfig{
			Provider:      envOrDefault("TTS_PROVIDER", "mock"),
			XTTSURL:       envOrDefault("XTTS_URL", "http://localhost:8020"),
			DefaultVoice:  envOrDefault("XTTS_VOICE", "Gracie Wise"),
			DefaultLang:   envOrDefault("XTTS_LANG", "ru"),
			DefaultFormat: envOrDefault("TTS_FORMAT", "mp3"),
		},
		Limits: LimitsConfig{
			MaxAudioBytes:   envOrDefaultInt64("MAX_AUDIO_BYTES", 15*1024*1024),
			MaxAudioSeconds: envOrDefaultFloat("MAX_AUDIO_SECONDS", 25),
			MaxSpriteBytes:  envOrDefaultInt64("MAX_SPRITE_BYTES", 5*1024*1024),
		},
		Storage: StorageConfig{
			Endpoint:       os.Getenv("STORAGE_ENDPOINT"),
			AccessKey:      os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey:      os.Getenv("STORAGE_SECRET_KEY"),
			UseSSL:         envOrDefaultBool("STORAGE_USE_SSL", true),
			PendingBucket:  envOrDefault("SPRITES_PENDING_BUCKET", "sprites-pending"),
			ApprovedBucket: envOrDefault("SPRITES_APPROVED_BUCKET", "sprites-approved"),
		},
		Kafka: KafkaConfig{
			Enabled:          envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:          envOrDefaultSlice("KAFKA_BROKERS", nil),
			TopicTranscripts: envOrDefault("KAFKA_TOPIC_TRANSCRIPTS", "speech.transcripts"),
			TopicReplies:     envOrDefault("KAFKA_TOPIC_REPLIES", "speech.replies"),
			Principal:        envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			LogFormat:   envOrDefault("LOG_FORMAT", "json"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def
	}
	return parsed
}

func envOrDefaultInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func envOrDefaultFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return parsed
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return parsed
}

func envOrDefaultSlice(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
