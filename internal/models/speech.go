// Package models defines the data structures shared across the speech pipeline.
package models

// ClarityLevel is a 3-bucket classification of how confidently speech
// was recognized. It is used to shape the downstream dialogue tone.
type ClarityLevel string

const (
	ClarityHigh   ClarityLevel = "high"
	ClarityMedium ClarityLevel = "medium"
	ClarityLow    ClarityLevel = "low"
)

// RecognitionEvent is one recognized unit of speech (word or segment).
// Confidence is nil when the recognition engine exposes no per-segment score.
type RecognitionEvent struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Recognition is the uniform output of a transcription adapter:
// the full transcript plus the ordered event list it was assembled from.
type Recognition struct {
	Text   string
	Events []RecognitionEvent
}

// SpeechMetrics is an immutable snapshot derived from one utterance.
type SpeechMetrics struct {
	AvgConfidence  float64      `json:"avg_confidence"`
	WordsPerMinute float64      `json:"wpm"`
	WordCount      int          `json:"word_count"`
	ClarityLevel   ClarityLevel `json:"clarity_level"`
}

// TranscriptionResult is the aggregate returned across the system boundary
// and the sole input, besides raw text, to the context composer.
type TranscriptionResult struct {
	Text     string        `json:"text"`
	Duration float64       `json:"duration"`
	Language string        `json:"language"`
	Metrics  SpeechMetrics `json:"metrics"`
}

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is a single entry in a conversation. Turns are immutable
// once constructed; the composer only ever prepends a synthesized system turn.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationRequest is an ordered sequence of turns plus an optional model
// identifier; the relay falls back to the configured default when it is empty.
type ConversationRequest struct {
	Model    string             `json:"model,omitempty"`
	Messages []ConversationTurn `json:"messages"`
	Metrics  *SpeechMetrics     `json:"metrics,omitempty"`
}
