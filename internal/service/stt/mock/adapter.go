// Package mock provides a mock STT recognizer for development without a
// transcription server or cloud credentials. It cycles through canned
// utterances whose word scores span all three clarity bands, so repeated
// uploads exercise every adaptation branch downstream.
package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"speakup-api/internal/audio"
	"speakup-api/internal/models"
)

// SimulatedWord is one recognized word with its confidence score.
// A negative score means the engine produced no score for the word.
type SimulatedWord struct {
	Text  string
	Score float64
}

// SimulatedUtterance is a canned recognition result.
type SimulatedUtterance struct {
	Words []SimulatedWord
}

// DefaultUtterances provides sample utterances for simulation. The set is
// ordered so consecutive requests walk through high, medium and low clarity,
// plus one utterance without scores at all.
var DefaultUtterances = []SimulatedUtterance{
	{Words: []SimulatedWord{
		{Text: "мама", Score: 0.96},
		{Text: "я", Score: 0.93},
		{Text: "хочу", Score: 0.88},
		{Text: "играть", Score: 0.91},
	}},
	{Words: []SimulatedWord{
		{Text: "можно", Score: 0.71},
		{Text: "мне", Score: 0.64},
		{Text: "сок", Score: 0.55},
		{Text: "пожалуйста", Score: 0.60},
	}},
	{Words: []SimulatedWord{
		{Text: "у", Score: 0.42},
		{Text: "меня", Score: 0.38},
		{Text: "есть", Score: 0.47},
		{Text: "собака", Score: 0.33},
	}},
	{Words: []SimulatedWord{
		{Text: "сегодня", Score: -1},
		{Text: "хорошая", Score: -1},
		{Text: "погода", Score: -1},
	}},
	{Words: []SimulatedWord{
		{Text: "давай", Score: 0.83},
		{Text: "читать", Score: 0.79},
		{Text: "книгу", Score: 0.86},
		{Text: "вместе", Score: 0.81},
	}},
}

// processingDelay simulates recognition latency.
const processingDelay = 150 * time.Millisecond

// Adapter implements stt.Recognizer with canned responses.
type Adapter struct {
	mu      sync.Mutex
	counter int
}

// New creates a new mock STT adapter.
func New() *Adapter {
	return &Adapter{}
}

// Name returns the provider name.
func (a *Adapter) Name() string { return "mock" }

// Recognize returns the next canned utterance, cycling through the defaults.
// The clip audio itself is ignored; a short delay simulates processing.
func (a *Adapter) Recognize(ctx context.Context, clip audio.Clip, language string) (models.Recognition, error) {
	a.mu.Lock()
	utterance := DefaultUtterances[a.counter%len(DefaultUtterances)]
	a.counter++
	a.mu.Unlock()

	select {
	case <-time.After(processingDelay):
	case <-ctx.Done():
		return models.Recognition{}, ctx.Err()
	}

	texts := make([]string, 0, len(utterance.Words))
	events := make([]models.RecognitionEvent, 0, len(utterance.Words))
	for _, word := range utterance.Words {
		texts = append(texts, word.Text)
		event := models.RecognitionEvent{Text: word.Text}
		if word.Score >= 0 {
			score := word.Score
			event.Confidence = &score
		}
		events = append(events, event)
	}

	return models.Recognition{
		Text:   strings.Join(texts, " "),
		Events: events,
	}, nil
}
