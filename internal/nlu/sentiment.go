package nlu

import (
	"fmt"
	"strings"

	"github.com/carebridge/triage-assistant/internal/domain"
)

// Emotional marker categories. Order matters for emotion detection: anxiety
// outranks pain, pain outranks distress.
var (
	anxietyMarkers = []string{
		"worried", "scared", "anxious", "nervous", "concerned",
		"frightened", "panicking", "terrified", "afraid",
	}
	painMarkers = []string{
		"pain", "hurt", "ache", "agony", "burning", "stabbing",
		"throbbing", "sharp", "dull", "cramping",
	}
	distressMarkers = []string{
		"can't", "unable", "difficulty", "trouble", "struggling",
		"won't stop", "getting worse", "not getting better",
	}
	highUrgencyMarkers = []string{
		"emergency", "urgent", "immediately", "right away", "asap",
		"can't wait", "severe", "intense", "unbearable", "excruciating",
		"help me", "please help", "desperate", "terrible", "awful",
	}
	positiveMarkers = []string{
		"thank you", "thanks", "grateful", "appreciate", "helpful",
		"better", "improving", "good", "great", "excellent",
	}

	negativeWords = []string{
		"pain", "hurt", "terrible", "awful", "bad", "worse", "emergency",
		"help", "scared", "worried", "can't", "unable", "severe",
	}
	positiveWords = []string{
		"good", "better", "thanks", "thank you", "great", "excellent",
		"helpful", "appreciate", "improving",
	}

	criticalIndicators = []string{
		"emergency", "911", "can't breathe", "chest pain", "heart attack",
		"stroke", "unconscious", "severe bleeding", "choking", "overdose",
	}
)

var markerCategories = []struct {
	name    string
	markers []string
}{
	{"high", highUrgencyMarkers},
	{"anxiety", anxietyMarkers},
	{"pain", painMarkers},
	{"distress", distressMarkers},
}

// SentimentAnalyzer estimates polarity, emotional state, and urgency of user
// messages from keyword tables.
type SentimentAnalyzer struct{}

// NewSentimentAnalyzer creates an analyzer with the default marker tables.
func NewSentimentAnalyzer() *SentimentAnalyzer {
	return &SentimentAnalyzer{}
}

// AnalyzeSentiment analyzes one message. Blank input yields a neutral result.
func (a *SentimentAnalyzer) AnalyzeSentiment(text string) domain.SentimentResult {
	if strings.TrimSpace(text) == "" {
		return domain.SentimentResult{
			Sentiment:      domain.SentimentNeutral,
			Confidence:     0.5,
			EmotionalState: domain.EmotionNeutral,
			UrgencyLevel:   domain.UrgencyLow,
		}
	}

	lower := strings.ToLower(text)
	sentiment, confidence := keywordSentiment(lower)

	return domain.SentimentResult{
		Sentiment:      sentiment,
		Confidence:     confidence,
		EmotionalState: detectEmotion(lower),
		UrgencyLevel:   assessUrgency(lower, sentiment),
		EmotionMarkers: emotionMarkers(lower),
	}
}

// ResponseTone selects the register a response to this message should take.
func (a *SentimentAnalyzer) ResponseTone(result domain.SentimentResult) domain.Tone {
	switch {
	case result.UrgencyLevel == domain.UrgencyCritical:
		return domain.ToneUrgent
	case result.EmotionalState == domain.EmotionFear ||
		result.EmotionalState == domain.EmotionSadness ||
		result.UrgencyLevel == domain.UrgencyHigh:
		return domain.ToneEmpathetic
	case result.Sentiment == domain.SentimentPositive:
		return domain.ToneProfessional
	default:
		return domain.ToneReassuring
	}
}

// EscalationNeeded reports whether the emotional picture alone warrants a
// human handoff, independent of the dialogue manager's decision.
func (a *SentimentAnalyzer) EscalationNeeded(result domain.SentimentResult) bool {
	return result.UrgencyLevel == domain.UrgencyCritical ||
		result.UrgencyLevel == domain.UrgencyHigh ||
		result.EmotionalState == domain.EmotionFear ||
		result.EmotionalState == domain.EmotionAnger ||
		(result.Sentiment == domain.SentimentNegative && result.Confidence > 0.8)
}

func keywordSentiment(lower string) (domain.Sentiment, float64) {
	negative := countMatches(lower, negativeWords)
	positive := countMatches(lower, positiveWords)
	switch {
	case negative > positive:
		return domain.SentimentNegative, 0.7
	case positive > negative:
		return domain.SentimentPositive, 0.7
	default:
		return domain.SentimentNeutral, 0.6
	}
}

func detectEmotion(lower string) domain.Emotion {
	switch {
	case containsAny(lower, anxietyMarkers):
		return domain.EmotionFear
	case containsAny(lower, painMarkers):
		return domain.EmotionSadness
	case containsAny(lower, distressMarkers):
		return domain.EmotionAnger
	case containsAny(lower, positiveMarkers):
		return domain.EmotionJoy
	default:
		return domain.EmotionNeutral
	}
}

func assessUrgency(lower string, sentiment domain.Sentiment) domain.Urgency {
	if containsAny(lower, criticalIndicators) {
		return domain.UrgencyCritical
	}

	high := countMatches(lower, highUrgencyMarkers) + countMatches(lower, distressMarkers)
	switch {
	case high >= 2 || sentiment == domain.SentimentNegative:
		return domain.UrgencyHigh
	case high == 1:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

func emotionMarkers(lower string) []string {
	var markers []string
	for _, cat := range markerCategories {
		for _, word := range cat.markers {
			if strings.Contains(lower, word) {
				markers = append(markers, fmt.Sprintf("%s:%s", cat.name, word))
			}
		}
	}
	for _, word := range positiveMarkers {
		if strings.Contains(lower, word) {
			markers = append(markers, fmt.Sprintf("positive:%s", word))
		}
	}
	return markers
}

func countMatches(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}
