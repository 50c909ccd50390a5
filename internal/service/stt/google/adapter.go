// Package google provides a Google Cloud Speech-to-Text recognizer.
package google

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"speakup-api/internal/audio"
	"speakup-api/internal/models"
)

// languageCodes maps the short language tags the API accepts to the BCP-47
// codes Google requires. Unlisted tags pass through unchanged.
var languageCodes = map[string]string{
	"ru": "ru-RU",
	"en": "en-US",
	"de": "de-DE",
	"fr": "fr-FR",
	"es": "es-ES",
}

// Adapter implements stt.Recognizer using Google Cloud Speech-to-Text.
type Adapter struct {
	client *speech.Client
}

// New creates a new Google STT adapter.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context) (*Adapter, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating speech client: %w", err)
	}
	return &Adapter{client: c}, nil
}

// Name returns the provider name.
func (a *Adapter) Name() string { return "google" }

// Recognize runs batch recognition over the normalized clip. Word-level
// confidence is requested so every recognition event carries its own score.
func (a *Adapter) Recognize(ctx context.Context, clip audio.Clip, language string) (models.Recognition, error) {
	resp, err := a.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:             speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:      int32(clip.SampleRate),
			LanguageCode:         languageCode(language),
			EnableWordConfidence: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: clip.WAV},
		},
	})
	if err != nil {
		return models.Recognition{}, fmt.Errorf("google recognize: %w", err)
	}

	var texts []string
	var events []models.RecognitionEvent
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		alt := result.Alternatives[0]
		texts = append(texts, alt.Transcript)
		events = append(events, eventsFromAlternative(alt)...)
	}

	return models.Recognition{
		Text:   strings.TrimSpace(strings.Join(texts, " ")),
		Events: events,
	}, nil
}

// Close releases the underlying gRPC client.
func (a *Adapter) Close() error {
	return a.client.Close()
}

// eventsFromAlternative prefers word-level confidences. Some models ignore
// the word-confidence flag; then each word inherits the alternative's score,
// or carries no score at all when the alternative has none either.
func eventsFromAlternative(alt *speechpb.SpeechRecognitionAlternative) []models.RecognitionEvent {
	if len(alt.Words) > 0 {
		events := make([]models.RecognitionEvent, 0, len(alt.Words))
		for _, w := range alt.Words {
			conf := float64(w.Confidence)
			events = append(events, models.RecognitionEvent{Text: w.Word, Confidence: &conf})
		}
		return events
	}

	words := strings.Fields(alt.Transcript)
	events := make([]models.RecognitionEvent, 0, len(words))
	for _, word := range words {
		var conf *float64
		if alt.Confidence > 0 {
			c := float64(alt.Confidence)
			conf = &c
		}
		events = append(events, models.RecognitionEvent{Text: word, Confidence: conf})
	}
	return events
}

// languageCode resolves a short tag to its BCP-47 form.
func languageCode(language string) string {
	if code, ok := languageCodes[language]; ok {
		return code
	}
	return language
}
