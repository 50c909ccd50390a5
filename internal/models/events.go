package models

// TranscriptEvent is published after each successful transcription.
type TranscriptEvent struct {
	EventType       string        `json:"eventType"`
	RequestID       string        `json:"requestId"`
	Language        string        `json:"language"`
	Text            string        `json:"text"`
	DurationSeconds float64       `json:"durationSeconds"`
	Metrics         SpeechMetrics `json:"metrics"`
	Timestamp       int64         `json:"timestamp"`
}

// ReplyEvent is published after each successful buffered chat reply.
type ReplyEvent struct {
	EventType string `json:"eventType"`
	RequestID string `json:"requestId"`
	Model     string `json:"model"`
	Reply     string `json:"reply"`
	Timestamp int64  `json:"timestamp"`
}
