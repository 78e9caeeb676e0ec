// Package triage implements symptom assessment and care level determination.
// All matching rules are data held in a Config so the priority and
// short-circuit order stays test-visible and tunable without code changes.
package triage

import (
	"regexp"

	"github.com/carebridge/triage-assistant/internal/domain"
)

// RedFlagRule maps a symptom pattern to the flag it raises. Any match forces
// an emergency care level.
type RedFlagRule struct {
	Pattern *regexp.Regexp
	Flag    string
}

// SymptomRule detects one symptom category. Multiple rules may match a text.
type SymptomRule struct {
	Category domain.SymptomCategory
	Pattern  *regexp.Regexp
}

// FeverRule is the per-age-category fever guideline: at or above Threshold
// (degrees Fahrenheit), escalate to Action.
type FeverRule struct {
	Threshold float64
	Action    domain.CareLevel
}

// PainRule maps qualitative pain language to a 0-10 score.
type PainRule struct {
	Pattern *regexp.Regexp
	Score   int
}

// Config holds every rule table the engine evaluates.
type Config struct {
	// EmergencySymptoms are literal substrings that immediately red-flag.
	EmergencySymptoms []string
	RedFlagRules      []RedFlagRule
	SymptomRules      []SymptomRule
	// ConcerningCategories participate in the combination count.
	ConcerningCategories []domain.SymptomCategory
	FeverGuidelines      map[domain.AgeCategory]FeverRule
	PainRules            []PainRule
	CareAdvice           map[domain.CareLevel]domain.CareAdvice
	FollowUpQuestions    map[domain.SymptomCategory][]string
}

// DefaultConfig returns the built-in medical guideline tables.
func DefaultConfig() Config {
	return Config{
		EmergencySymptoms: []string{
			"difficulty breathing",
			"chest pain",
			"severe bleeding",
			"loss of consciousness",
			"severe allergic reaction",
			"stroke",
			"seizure",
			"choking",
			"severe burn",
			"suicidal",
		},
		RedFlagRules: []RedFlagRule{
			{regexp.MustCompile(`(?i)can'?t breathe|difficulty breathing|shortness of breath`), "respiratory_distress"},
			{regexp.MustCompile(`(?i)chest pain|heart attack|cardiac`), "cardiac_emergency"},
			{regexp.MustCompile(`(?i)unconscious|loss of consciousness|passed out`), "altered_consciousness"},
			{regexp.MustCompile(`(?i)severe bleeding|hemorrhag|blood loss`), "severe_bleeding"},
			{regexp.MustCompile(`(?i)allergic reaction|anaphylaxis|swelling`), "allergic_reaction"},
			{regexp.MustCompile(`(?i)stroke|face drooping|arm weakness|slurred speech`), "stroke_symptoms"},
			{regexp.MustCompile(`(?i)choking|can'?t swallow`), "airway_obstruction"},
			{regexp.MustCompile(`(?i)poisoning|overdose|toxic`), "poisoning"},
			{regexp.MustCompile(`(?i)severe burn|chemical burn`), "severe_burns"},
			{regexp.MustCompile(`(?i)head injury|skull|brain`), "head_trauma"},
		},
		SymptomRules: []SymptomRule{
			{domain.SymptomFever, regexp.MustCompile(`(?i)fever|temperature|hot|burning up|\d+(?:\.\d+)?\s*°?f`)},
			// Word boundaries keep "headache" from counting as both a pain
			// and a neurological symptom.
			{domain.SymptomPain, regexp.MustCompile(`(?i)\bpain|hurt|\bache|\baching|sore|tender`)},
			{domain.SymptomRespiratory, regexp.MustCompile(`(?i)breath|breathing|cough|wheez|shortness|chest`)},
			{domain.SymptomCardiac, regexp.MustCompile(`(?i)chest pain|heart|cardiac|palpitations`)},
			{domain.SymptomNeurological, regexp.MustCompile(`(?i)headache|dizz|confusion|seizure|stroke|numb`)},
			{domain.SymptomGastrointestinal, regexp.MustCompile(`(?i)nausea|vomit|diarrhea|stomach|abdominal`)},
			{domain.SymptomPediatric, regexp.MustCompile(`(?i)child|baby|infant|toddler|kid|son|daughter`)},
			{domain.SymptomRash, regexp.MustCompile(`(?i)rash|skin|spots|bumps|hives`)},
			{domain.SymptomBleeding, regexp.MustCompile(`(?i)bleed|blood|hemorrhag`)},
		},
		ConcerningCategories: []domain.SymptomCategory{
			domain.SymptomFever,
			domain.SymptomPain,
			domain.SymptomRespiratory,
			domain.SymptomGastrointestinal,
			domain.SymptomNeurological,
		},
		FeverGuidelines: map[domain.AgeCategory]FeverRule{
			domain.AgeInfant0To3Months:   {Threshold: 100.4, Action: domain.CareLevelEmergency},
			domain.AgeChild3MonthsTo3Yrs: {Threshold: 102.0, Action: domain.CareLevelUrgentCare},
			domain.AgeChild:              {Threshold: 104.0, Action: domain.CareLevelUrgentCare},
			domain.AgeAdult:              {Threshold: 103.0, Action: domain.CareLevelUrgentCare},
		},
		PainRules: []PainRule{
			{regexp.MustCompile(`(?i)excruciating|unbearable|severe|intense`), 9},
			{regexp.MustCompile(`(?i)\bbad\b|terrible|awful|sharp`), 7},
			{regexp.MustCompile(`(?i)moderate|noticeable`), 5},
			{regexp.MustCompile(`(?i)mild|slight|little`), 3},
			// Any unqualified pain mention defaults to moderate.
			{regexp.MustCompile(`(?i)\bpain|hurt|\bache`), 5},
		},
		CareAdvice: map[domain.CareLevel]domain.CareAdvice{
			domain.CareLevelEmergency: {
				Description:     "These symptoms require immediate emergency medical attention.",
				Timeframe:       "immediately",
				ImmediateAction: "Call 911 or go to the nearest emergency room",
				Warning:         "Do not delay seeking care",
			},
			domain.CareLevelUrgentCare: {
				Description:     "These symptoms require prompt medical attention.",
				Timeframe:       "within 2-4 hours",
				ImmediateAction: "Seek medical attention within 2-4 hours",
				Options:         []string{"Urgent care center", "Emergency room", "Call doctor"},
			},
			domain.CareLevelClinic: {
				Description:     "These symptoms should be evaluated by a healthcare provider.",
				Timeframe:       "within 24-48 hours",
				ImmediateAction: "Schedule appointment within 24-48 hours",
				Options:         []string{"Primary care doctor", "Clinic visit", "Telehealth"},
			},
			domain.CareLevelTelehealth: {
				Description: "A telehealth consultation can evaluate these symptoms.",
				Timeframe:   "within 1-2 days",
				Options:     []string{"Telehealth visit", "Nurse advice line"},
			},
			domain.CareLevelSelfCare: {
				Description: "These symptoms can often be managed with self-care. Consult a healthcare provider if they worsen.",
				Options:     []string{"Rest and fluids", "Over-the-counter remedies as directed"},
			},
		},
		FollowUpQuestions: map[domain.SymptomCategory][]string{
			domain.SymptomFever: {
				"Have you measured your temperature, and if so, what was it?",
				"How long have you had the fever?",
			},
			domain.SymptomPain: {
				"On a scale of 1 to 10, how severe is the pain?",
				"Where exactly is the pain located?",
			},
			domain.SymptomRespiratory: {
				"Are you having any difficulty breathing at rest?",
				"Is the cough dry or are you bringing anything up?",
			},
			domain.SymptomGastrointestinal: {
				"Are you able to keep fluids down?",
				"When did the stomach symptoms start?",
			},
			domain.SymptomNeurological: {
				"When did the headache or dizziness start?",
				"Have you noticed any vision changes or weakness?",
			},
		},
	}
}

// genericFollowUps is asked when no symptom-specific questions apply.
var genericFollowUps = []string{
	"Can you describe your symptoms in more detail?",
	"When did these symptoms start?",
	"Are the symptoms getting better, worse, or staying the same?",
}
