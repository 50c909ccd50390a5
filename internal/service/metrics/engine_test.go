package metrics

import (
	"math"
	"testing"

	"speakup-api/internal/models"
)

func conf(v float64) *float64 { return &v }

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		events   []models.RecognitionEvent
		duration float64
		wantAvg  float64
		wantWPM  float64
		wantN    int
		wantLvl  models.ClarityLevel
	}{
		{
			name: "mean of scores",
			events: []models.RecognitionEvent{
				{Text: "мама", Confidence: conf(0.9)},
				{Text: "я", Confidence: conf(0.8)},
				{Text: "хочу", Confidence: conf(0.85)},
				{Text: "играть", Confidence: conf(0.9)},
				{Text: "в", Confidence: conf(0.8)},
				{Text: "мяч", Confidence: conf(0.9)},
				{Text: "на", Confidence: conf(0.8)},
				{Text: "улице", Confidence: conf(0.85)},
				{Text: "сегодня", Confidence: conf(0.9)},
				{Text: "днём", Confidence: conf(0.8)},
			},
			duration: 5,
			wantAvg:  0.85,
			wantWPM:  120,
			wantN:    10,
			wantLvl:  models.ClarityHigh,
		},
		{
			name: "unscored events count as words but not in the mean",
			events: []models.RecognitionEvent{
				{Text: "можно", Confidence: conf(0.9)},
				{Text: "мне"},
				{Text: "сок", Confidence: conf(0.6)},
			},
			duration: 3,
			wantAvg:  0.75,
			wantWPM:  60,
			wantN:    3,
			wantLvl:  models.ClarityHigh,
		},
		{
			name: "no scores falls back to neutral",
			events: []models.RecognitionEvent{
				{Text: "сегодня"}, {Text: "хорошая"}, {Text: "погода"},
			},
			duration: 10,
			wantAvg:  NeutralConfidence,
			wantWPM:  18,
			wantN:    3,
			wantLvl:  models.ClarityMedium,
		},
		{
			name:     "empty event list",
			events:   nil,
			duration: 4,
			wantAvg:  NeutralConfidence,
			wantWPM:  0,
			wantN:    0,
			wantLvl:  models.ClarityMedium,
		},
		{
			name: "zero duration yields zero rate",
			events: []models.RecognitionEvent{
				{Text: "привет", Confidence: conf(0.4)},
			},
			duration: 0,
			wantAvg:  0.4,
			wantWPM:  0,
			wantN:    1,
			wantLvl:  models.ClarityLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.events, tt.duration)

			if !almostEqual(got.AvgConfidence, tt.wantAvg) {
				t.Errorf("avg confidence = %v, want %v", got.AvgConfidence, tt.wantAvg)
			}
			if !almostEqual(got.WordsPerMinute, tt.wantWPM) {
				t.Errorf("wpm = %v, want %v", got.WordsPerMinute, tt.wantWPM)
			}
			if got.WordCount != tt.wantN {
				t.Errorf("word count = %d, want %d", got.WordCount, tt.wantN)
			}
			if got.ClarityLevel != tt.wantLvl {
				t.Errorf("clarity = %q, want %q", got.ClarityLevel, tt.wantLvl)
			}
		})
	}
}

// Both clarity bounds are closed: landing exactly on a threshold takes the
// higher band.
func TestClassify(t *testing.T) {
	tests := []struct {
		avg  float64
		want models.ClarityLevel
	}{
		{1.0, models.ClarityHigh},
		{0.76, models.ClarityHigh},
		{ClarityHighThreshold, models.ClarityHigh},
		{0.7499, models.ClarityMedium},
		{0.6, models.ClarityMedium},
		{ClarityMediumThreshold, models.ClarityMedium},
		{0.4999, models.ClarityLow},
		{0.1, models.ClarityLow},
		{0, models.ClarityLow},
	}

	for _, tt := range tests {
		if got := Classify(tt.avg); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.avg, got, tt.want)
		}
	}
}
