// Package transcribe coordinates the transcription pipeline: normalize the
// upload, recognize speech, derive speech metrics, publish the transcript
// event.
package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"speakup-api/internal/apperr"
	"speakup-api/internal/audio"
	"speakup-api/internal/events"
	"speakup-api/internal/models"
	"speakup-api/internal/observability/logging"
	obsmetrics "speakup-api/internal/observability/metrics"
	"speakup-api/internal/service/metrics"
	"speakup-api/internal/service/stt"
)

// EventTranscriptCreated is the payload event type for transcript events.
const EventTranscriptCreated = "speech.transcript.created"

// Service runs uploads through normalization, recognition and metric
// derivation. It owns no cross-request state; every call is independent.
type Service struct {
	normalizer *audio.Normalizer
	recognizer stt.Recognizer
	publisher  *events.Publisher
	metrics    *obsmetrics.Metrics
	log        zerolog.Logger
}

// New creates the transcription service.
func New(normalizer *audio.Normalizer, recognizer stt.Recognizer, publisher *events.Publisher, m *obsmetrics.Metrics) *Service {
	return &Service{
		normalizer: normalizer,
		recognizer: recognizer,
		publisher:  publisher,
		metrics:    m,
		log:        logging.WithProvider("transcribe", recognizer.Name()),
	}
}

// Transcribe runs the full pipeline over raw upload bytes. formatHint is a
// codec tag from the transport content type; empty means auto-detect. An
// empty requestID gets a generated one, used to correlate logs and events.
func (s *Service) Transcribe(ctx context.Context, raw []byte, formatHint, language, requestID string) (models.TranscriptionResult, error) {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	start := time.Now()
	log := s.log.With().Str("requestId", requestID).Str("language", language).Logger()

	clip, err := s.normalizer.Normalize(ctx, raw, formatHint)
	if err != nil {
		s.metrics.RecordTranscriptionError(string(apperr.ReasonOf(err)))
		log.Warn().Err(err).Int("bytes", len(raw)).Msg("Audio rejected")
		return models.TranscriptionResult{}, err
	}

	recognition, err := s.recognizer.Recognize(ctx, clip, language)
	if err != nil {
		s.metrics.RecordTranscriptionError(string(apperr.ReasonOf(err)))
		log.Error().Err(err).Float64("duration", clip.Duration).Msg("Recognition failed")
		return models.TranscriptionResult{}, fmt.Errorf("transcription failed: %w", err)
	}

	m := metrics.Compute(recognition.Events, clip.Duration)
	result := models.TranscriptionResult{
		Text:     recognition.Text,
		Duration: clip.Duration,
		Language: language,
		Metrics:  m,
	}

	s.metrics.RecordTranscription(string(m.ClarityLevel), clip.Duration, time.Since(start).Seconds())
	log.Info().
		Str("clarity", string(m.ClarityLevel)).
		Int("words", m.WordCount).
		Float64("avgConfidence", m.AvgConfidence).
		Float64("duration", clip.Duration).
		Dur("took", time.Since(start)).
		Msg("Transcription complete")

	s.publishEvent(requestID, result)
	return result, nil
}

// publishEvent emits the transcript event. Best-effort: failures are logged
// and never fail the request that produced the transcript.
func (s *Service) publishEvent(requestID string, result models.TranscriptionResult) {
	if s.publisher == nil {
		return
	}

	ev := models.TranscriptEvent{
		EventType:       EventTranscriptCreated,
		RequestID:       requestID,
		Language:        result.Language,
		Text:            result.Text,
		DurationSeconds: result.Duration,
		Metrics:         result.Metrics,
		Timestamp:       time.Now().UnixMilli(),
	}

	// The request context may be gone by the time the broker acks.
	if err := s.publisher.PublishTranscript(context.Background(), requestID, ev); err != nil {
		s.log.Error().Err(err).Str("requestId", requestID).Msg("Failed to publish transcript event")
	}
}
