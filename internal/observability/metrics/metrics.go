// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "speakup"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec

	// Transcription metrics
	TranscriptionsTotal    prometheus.Counter
	TranscriptionErrors    *prometheus.CounterVec
	TranscriptionDuration  prometheus.Histogram
	AudioSecondsTotal      prometheus.Counter
	ClarityClassifications *prometheus.CounterVec

	// Chat relay metrics
	ChatRequestsTotal *prometheus.CounterVec
	ChatErrors        *prometheus.CounterVec
	ChatDuration      *prometheus.HistogramVec
	ChatStreamBytes   prometheus.Counter

	// Synthesis metrics
	SynthesisTotal     prometheus.Counter
	SynthesisErrors    prometheus.Counter
	SynthesisDuration  prometheus.Histogram
	VoiceSubstitutions prometheus.Counter

	// Sprite workflow metrics
	SpriteOperations *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
// Must be called at most once per process; use DefaultMetrics.
func NewMetrics() *Metrics {
	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"route"}),

		// Transcription metrics
		TranscriptionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Total number of successful transcriptions",
		}),
		TranscriptionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_errors_total",
			Help:      "Total number of transcription failures by reason",
		}, []string{"reason"}),
		TranscriptionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_duration_seconds",
			Help:      "Wall-clock time of the transcription pipeline in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		AudioSecondsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_seconds_total",
			Help:      "Total seconds of audio accepted for recognition",
		}),
		ClarityClassifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clarity_classifications_total",
			Help:      "Total clarity classifications by level",
		}, []string{"level"}),

		// Chat relay metrics
		ChatRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Total number of chat relay calls by mode",
		}, []string{"mode"}),
		ChatErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_errors_total",
			Help:      "Total number of chat relay failures by mode and reason",
		}, []string{"mode", "reason"}),
		ChatDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_duration_seconds",
			Help:      "Chat relay call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"mode"}),
		ChatStreamBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_stream_bytes_total",
			Help:      "Total bytes relayed to clients in streaming mode",
		}),

		// Synthesis metrics
		SynthesisTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_total",
			Help:      "Total number of speech synthesis attempts",
		}),
		SynthesisErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_errors_total",
			Help:      "Total number of synthesis failures",
		}),
		SynthesisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_duration_seconds",
			Help:      "Speech synthesis duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		VoiceSubstitutions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voice_substitutions_total",
			Help:      "Total number of requested voices substituted with a fallback",
		}),

		// Sprite workflow metrics
		SpriteOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sprite_operations_total",
			Help:      "Total sprite workflow operations by operation and outcome",
		}, []string{"operation", "outcome"}),

		// Kafka publish metrics
		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method, status string, durationSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(durationSeconds)
}

// RecordTranscription records a completed transcription with its clarity
// classification and accepted audio duration.
func (m *Metrics) RecordTranscription(clarityLevel string, audioSeconds, durationSeconds float64) {
	m.TranscriptionsTotal.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
	m.AudioSecondsTotal.Add(audioSeconds)
	m.ClarityClassifications.WithLabelValues(clarityLevel).Inc()
}

// RecordTranscriptionError records a failed transcription by taxonomy reason.
func (m *Metrics) RecordTranscriptionError(reason string) {
	m.TranscriptionErrors.WithLabelValues(reason).Inc()
}

// RecordChat records a chat relay call.
func (m *Metrics) RecordChat(mode string, err error, reason string, durationSeconds float64) {
	m.ChatRequestsTotal.WithLabelValues(mode).Inc()
	m.ChatDuration.WithLabelValues(mode).Observe(durationSeconds)
	if err != nil {
		m.ChatErrors.WithLabelValues(mode, reason).Inc()
	}
}

// RecordStreamBytes records bytes relayed to a streaming client.
func (m *Metrics) RecordStreamBytes(n int64) {
	m.ChatStreamBytes.Add(float64(n))
}

// RecordSynthesis records a synthesis attempt.
func (m *Metrics) RecordSynthesis(err error, durationSeconds float64) {
	m.SynthesisTotal.Inc()
	m.SynthesisDuration.Observe(durationSeconds)
	if err != nil {
		m.SynthesisErrors.Inc()
	}
}

// RecordVoiceSubstitution records a fallback to another voice.
func (m *Metrics) RecordVoiceSubstitution() {
	m.VoiceSubstitutions.Inc()
}

// RecordSpriteOperation records a sprite workflow operation.
func (m *Metrics) RecordSpriteOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.SpriteOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
