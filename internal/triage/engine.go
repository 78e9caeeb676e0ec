package triage

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/carebridge/triage-assistant/internal/domain"
)

var (
	temperatureRe    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*°?[fF]`)
	highFeverTermsRe = regexp.MustCompile(`(?i)high fever|very hot`)
	feverTermsRe     = regexp.MustCompile(`(?i)fever|hot|temperature`)
	painScaleRe      = regexp.MustCompile(`(?i)(\d+)\s*(?:out of|/)\s*10`)
)

// Temperatures assumed when only qualitative fever language is present.
const (
	assumedHighFeverF     = 103.0
	assumedModerateFeverF = 101.0
)

// Default fever tiers applied when no age-specific guideline matches.
const (
	feverEmergencyF = 104.0
	feverUrgentF    = 102.0
	feverClinicF    = 100.4
)

// Engine assesses free-text symptom descriptions against the configured rule
// tables. It is stateless; the same input always yields the same assessment.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given rule tables.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// NewDefaultEngine creates an engine with the built-in guideline tables.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultConfig())
}

// AssessSymptoms classifies a symptom description plus optional patient age
// (in years, fractional for infants) into a care level with supporting
// detail. Empty input yields a self-care prompt, never an error.
func (e *Engine) AssessSymptoms(symptomsText string, patientAge *float64) domain.Assessment {
	ageCategory := AgeCategoryFor(patientAge)

	if strings.TrimSpace(symptomsText) == "" {
		return domain.Assessment{
			CareLevel:       domain.CareLevelSelfCare,
			Urgency:         domain.UrgencyLow,
			Recommendations: "Please describe your symptoms for proper assessment.",
			AgeCategory:     ageCategory,
		}
	}

	symptoms := e.DetectSymptoms(symptomsText)
	redFlags := e.CheckRedFlags(symptomsText)
	careLevel := e.determineCareLevel(symptomsText, redFlags, ageCategory, symptoms)

	assessment := domain.Assessment{
		CareLevel:        careLevel,
		Urgency:          careLevel.Urgency(),
		SymptomsDetected: symptoms,
		RedFlags:         redFlags,
		Recommendations:  e.CareAdvice(careLevel).Description,
		AgeCategory:      ageCategory,
	}
	assessment.FollowUpNeeded = needsFollowUp(assessment)
	return assessment
}

// DetectSymptoms returns every symptom category the text matches, in rule
// table order.
func (e *Engine) DetectSymptoms(text string) []domain.SymptomCategory {
	var detected []domain.SymptomCategory
	for _, rule := range e.cfg.SymptomRules {
		if rule.Pattern.MatchString(text) {
			detected = append(detected, rule.Category)
		}
	}
	return detected
}

// CheckRedFlags scans for emergency symptoms, both configured literal
// substrings and the pattern table. The result is deduplicated.
func (e *Engine) CheckRedFlags(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	var flags []string

	add := func(flag string) {
		if !seen[flag] {
			seen[flag] = true
			flags = append(flags, flag)
		}
	}

	for _, symptom := range e.cfg.EmergencySymptoms {
		if strings.Contains(lower, strings.ToLower(symptom)) {
			add(symptom)
		}
	}
	for _, rule := range e.cfg.RedFlagRules {
		if rule.Pattern.MatchString(lower) {
			add(rule.Flag)
		}
	}
	return flags
}

// determineCareLevel runs the priority cascade: red flags, fever guideline,
// pain scale, then symptom combinations. First match wins.
func (e *Engine) determineCareLevel(text string, redFlags []string, ageCategory domain.AgeCategory, symptoms []domain.SymptomCategory) domain.CareLevel {
	if len(redFlags) > 0 {
		return domain.CareLevelEmergency
	}

	if temp, ok := extractTemperature(text); ok {
		if level := e.assessFever(temp, ageCategory); level == domain.CareLevelEmergency || level == domain.CareLevelUrgentCare {
			return level
		}
	}

	pain := e.assessPainLevel(text)
	switch {
	case pain >= 7:
		return domain.CareLevelUrgentCare
	case pain >= 4:
		return domain.CareLevelClinic
	}

	if hasCategory(symptoms, domain.SymptomRespiratory) && hasCategory(symptoms, domain.SymptomFever) {
		return domain.CareLevelUrgentCare
	}

	concerning := 0
	for _, s := range symptoms {
		if hasCategory(e.cfg.ConcerningCategories, s) {
			concerning++
		}
	}
	switch {
	case concerning >= 3:
		return domain.CareLevelUrgentCare
	case concerning == 2:
		return domain.CareLevelClinic
	case concerning == 1:
		return domain.CareLevelTelehealth
	}
	return domain.CareLevelSelfCare
}

// assessFever applies the age-specific guideline when one exists, then the
// default tiers.
func (e *Engine) assessFever(temperature float64, ageCategory domain.AgeCategory) domain.CareLevel {
	if rule, ok := e.cfg.FeverGuidelines[ageCategory]; ok && temperature >= rule.Threshold {
		return rule.Action
	}

	switch {
	case temperature >= feverEmergencyF:
		return domain.CareLevelEmergency
	case temperature >= feverUrgentF:
		return domain.CareLevelUrgentCare
	case temperature >= feverClinicF:
		return domain.CareLevelClinic
	default:
		return domain.CareLevelSelfCare
	}
}

// assessPainLevel extracts a 0-10 pain score, preferring an explicit scale
// mention over qualitative terms.
func (e *Engine) assessPainLevel(text string) int {
	if m := painScaleRe.FindStringSubmatch(text); m != nil {
		if score, err := strconv.Atoi(m[1]); err == nil {
			return score
		}
	}
	for _, rule := range e.cfg.PainRules {
		if rule.Pattern.MatchString(text) {
			return rule.Score
		}
	}
	return 0
}

// FollowUpQuestions builds at most three questions for the detected symptom
// categories, at most two per category, falling back to generic triage
// questions when nothing specific applies.
func (e *Engine) FollowUpQuestions(symptoms []domain.SymptomCategory) []string {
	var questions []string
	for _, symptom := range symptoms {
		bank := e.cfg.FollowUpQuestions[symptom]
		if len(bank) > 2 {
			bank = bank[:2]
		}
		questions = append(questions, bank...)
	}
	if len(questions) == 0 {
		questions = append(questions, genericFollowUps...)
	}
	if len(questions) > 3 {
		questions = questions[:3]
	}
	return questions
}

// CareAdvice returns the advice record for a care level, defaulting to
// self-care guidance for unknown levels.
func (e *Engine) CareAdvice(level domain.CareLevel) domain.CareAdvice {
	if advice, ok := e.cfg.CareAdvice[level]; ok {
		return advice
	}
	return e.cfg.CareAdvice[domain.CareLevelSelfCare]
}

// AgeCategoryFor buckets a patient age in years. Nil means unknown.
func AgeCategoryFor(age *float64) domain.AgeCategory {
	switch {
	case age == nil:
		return domain.AgeUnknown
	case *age < 0.25:
		return domain.AgeInfant0To3Months
	case *age < 3:
		return domain.AgeChild3MonthsTo3Yrs
	case *age < 18:
		return domain.AgeChild
	default:
		return domain.AgeAdult
	}
}

func extractTemperature(text string) (float64, bool) {
	if m := temperatureRe.FindStringSubmatch(text); m != nil {
		if temp, err := strconv.ParseFloat(m[1], 64); err == nil {
			return temp, true
		}
	}
	if highFeverTermsRe.MatchString(text) {
		return assumedHighFeverF, true
	}
	if feverTermsRe.MatchString(text) {
		return assumedModerateFeverF, true
	}
	return 0, false
}

// needsFollowUp models "not sure enough yet, ask more": a mid-tier care level
// with few detected symptoms and no red flags.
func needsFollowUp(a domain.Assessment) bool {
	return (a.CareLevel == domain.CareLevelClinic || a.CareLevel == domain.CareLevelUrgentCare) &&
		len(a.SymptomsDetected) <= 2 &&
		len(a.RedFlags) == 0
}

func hasCategory(list []domain.SymptomCategory, c domain.SymptomCategory) bool {
	for _, item := range list {
		if item == c {
			return true
		}
	}
	return false
}
