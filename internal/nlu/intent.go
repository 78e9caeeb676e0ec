// Package nlu provides the keyword-based intent classifier and sentiment
// analyzer. Both are stateless; all matching rules live in ordered tables so
// the priority and short-circuit order is visible and testable.
package nlu

import (
	"strings"

	"github.com/carebridge/triage-assistant/internal/domain"
)

// intentRule binds an intent label to its keyword set and fixed confidence.
// Rules are evaluated in order; the first rule with any matching keyword wins.
type intentRule struct {
	intent     domain.Intent
	confidence float64
	keywords   []string
}

// intentRules is ordered by priority: emergency outranks everything.
var intentRules = []intentRule{
	{
		intent:     domain.IntentEmergency,
		confidence: 0.9,
		keywords: []string{
			"emergency", "urgent", "critical", "severe", "chest pain",
			"can't breathe", "unconscious", "bleeding", "overdose", "911",
		},
	},
	{
		intent:     domain.IntentSymptomTriage,
		confidence: 0.8,
		keywords: []string{
			"pain", "fever", "headache", "nausea", "dizzy", "symptoms",
			"sick", "hurt", "ache", "rash", "cough",
		},
	},
	{
		intent:     domain.IntentAppointmentBooking,
		confidence: 0.8,
		keywords: []string{
			"appointment", "schedule", "booking", "reschedule", "cancel", "visit",
		},
	},
	{
		intent:     domain.IntentMedicationInfo,
		confidence: 0.8,
		keywords: []string{
			"medication", "prescription", "medicine", "drug", "pill", "dose",
		},
	},
	{
		intent:     domain.IntentInsuranceQuestion,
		confidence: 0.8,
		keywords: []string{
			"insurance", "coverage", "billing", "claim", "copay", "deductible",
		},
	},
}

// IntentClassifier classifies user messages into healthcare intents.
type IntentClassifier struct {
	rules []intentRule
}

// NewIntentClassifier creates a classifier with the default rule table.
func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{rules: intentRules}
}

// ClassifyIntent returns the intent of the text with a fixed per-rule
// confidence. Blank input falls back to general_inquiry.
func (c *IntentClassifier) ClassifyIntent(text string) domain.IntentResult {
	if strings.TrimSpace(text) == "" {
		return domain.IntentResult{Intent: domain.IntentGeneralInquiry, Confidence: 0.5}
	}

	lower := strings.ToLower(text)
	for _, rule := range c.rules {
		if containsAny(lower, rule.keywords) {
			return domain.IntentResult{Intent: rule.intent, Confidence: rule.confidence}
		}
	}
	return domain.IntentResult{Intent: domain.IntentGeneralInquiry, Confidence: 0.6}
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
