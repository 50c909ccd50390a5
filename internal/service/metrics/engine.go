// Package metrics derives objective speech-quality metrics from a
// recognition event list. The engine is a pure function: no I/O, no failure
// modes, which is what keeps it independently testable.
package metrics

import "speakup-api/internal/models"

// Clarity thresholds on average confidence. Evaluated in order: high, then
// medium, else low. Both lower bounds are closed.
const (
	ClarityHighThreshold   = 0.75
	ClarityMediumThreshold = 0.5
)

// NeutralConfidence is reported when no event carries a confidence score.
// Absence of signal is treated as neutral, not as failure; engines that never
// emit scores therefore always classify as medium. Deliberate policy, kept
// from the product behavior.
const NeutralConfidence = 0.5

// Compute aggregates an ordered event list and the utterance duration into a
// SpeechMetrics snapshot. No rounding happens here; presentation rounding is
// the boundary's job.
func Compute(events []models.RecognitionEvent, durationSeconds float64) models.SpeechMetrics {
	wordCount := len(events)

	var sum float64
	var scored int
	for _, ev := range events {
		if ev.Confidence != nil {
			sum += *ev.Confidence
			scored++
		}
	}

	avgConfidence := NeutralConfidence
	if scored > 0 {
		avgConfidence = sum / float64(scored)
	}

	var wpm float64
	if durationSeconds > 0 {
		wpm = float64(wordCount) / durationSeconds * 60
	}

	return models.SpeechMetrics{
		AvgConfidence:  avgConfidence,
		WordsPerMinute: wpm,
		WordCount:      wordCount,
		ClarityLevel:   Classify(avgConfidence),
	}
}

// Classify maps average confidence to a clarity level. Total and monotonic.
func Classify(avgConfidence float64) models.ClarityLevel {
	switch {
	case avgConfidence >= ClarityHighThreshold:
		return models.ClarityHigh
	case avgConfidence >= ClarityMediumThreshold:
		return models.ClarityMedium
	default:
		return models.ClarityLow
	}
}
