// Package compose builds the adaptive system instruction that conditions the
// language model's tone on the child's measured speech clarity.
package compose

import (
	"fmt"
	"strconv"
	"strings"

	"speakup-api/internal/models"
	"speakup-api/internal/service/metrics"
)

// basePersona is the fixed persona preamble: short, playful, encouraging,
// Russian only, no clinical terminology.
const basePersona = `Ты дружелюбный собеседник для ребёнка с дизартрией (нарушением речи).
ВСЕГДА отвечай ТОЛЬКО на русском языке. Никогда не используй английский.
Отвечай КРАТКО (максимум 1-2 предложения), игриво и ободряюще. Никогда не используй клинические или медицинские термины.`

// Speech-rate cue boundaries in words per minute. The two cues are mutually
// exclusive: at most one fires per instruction.
const (
	SlowSpeechWPM = 60
	FastSpeechWPM = 150
)

// BuildSystemContext maps a metrics snapshot and the transcript into a single
// system instruction. Branches on clarity level first, then independently on
// speech rate.
func BuildSystemContext(m models.SpeechMetrics, transcript string) string {
	var b strings.Builder
	b.WriteString(basePersona)
	b.WriteString(fmt.Sprintf("\n\nРечь ребёнка: чёткость %s, %s слов/минуту.\n",
		formatPercent(m.AvgConfidence), formatNumber(m.WordsPerMinute)))

	switch {
	case m.ClarityLevel == models.ClarityLow || m.AvgConfidence < metrics.ClarityMediumThreshold:
		// Protect against acting on a misheard utterance: echo the best
		// guess back and wait for confirmation.
		b.WriteString(fmt.Sprintf("Ребёнок пытался сказать: '%s'. Начни с подтверждения: 'Я услышал [%s] - это правильно?' Подожди подтверждения.",
			transcript, transcript))
	case m.ClarityLevel == models.ClarityMedium || m.AvgConfidence < metrics.ClarityHighThreshold:
		b.WriteString(fmt.Sprintf("Ребёнок сказал: '%s'. Кратко подтверди понимание (например, 'Понял!'), затем ответь естественно.",
			transcript))
	default:
		b.WriteString(fmt.Sprintf("Ребёнок сказал: '%s'. Отвечай естественно. Иногда хвали: 'Очень чётко!' или 'Отлично!'",
			transcript))
	}

	if m.WordsPerMinute < SlowSpeechWPM {
		b.WriteString(" Ребёнок говорит медленно - скажи что-то вроде 'Не торопись, я слушаю!' или похожее.")
	} else if m.WordsPerMinute > FastSpeechWPM {
		b.WriteString(" Ребёнок говорит быстро - это здорово!")
	}

	return b.String()
}

// Prepend synthesizes a system turn from the metrics and the last user turn
// and places it in front of the conversation. When metrics are absent or the
// conversation is empty, the turns are forwarded unmodified. Existing turns
// are never mutated.
func Prepend(turns []models.ConversationTurn, m *models.SpeechMetrics) []models.ConversationTurn {
	if m == nil || len(turns) == 0 {
		return turns
	}

	userText := turns[len(turns)-1].Content
	system := models.ConversationTurn{
		Role:    models.RoleSystem,
		Content: BuildSystemContext(*m, userText),
	}

	out := make([]models.ConversationTurn, 0, len(turns)+1)
	out = append(out, system)
	out = append(out, turns...)
	return out
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
