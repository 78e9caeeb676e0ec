// Package domain defines the core domain models for the triage assistant.
package domain

// Intent is the coarse purpose classification of a user message.
type Intent string

const (
	IntentSymptomTriage      Intent = "symptom_triage"
	IntentEmergency          Intent = "emergency"
	IntentAppointmentBooking Intent = "appointment_booking"
	IntentMedicationInfo     Intent = "medication_info"
	IntentInsuranceQuestion  Intent = "insurance_question"
	IntentGeneralInquiry     Intent = "general_inquiry"
)

// Sentiment is the polarity of a user message.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Emotion is the dominant emotional state detected in a message.
type Emotion string

const (
	EmotionFear    Emotion = "fear"
	EmotionSadness Emotion = "sadness"
	EmotionAnger   Emotion = "anger"
	EmotionJoy     Emotion = "joy"
	EmotionNeutral Emotion = "neutral"
)

// Urgency is an ordinal label describing how quickly a response is needed.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// urgencyRank defines the ordinal ordering low < medium < high < critical.
var urgencyRank = map[Urgency]int{
	UrgencyLow:      0,
	UrgencyMedium:   1,
	UrgencyHigh:     2,
	UrgencyCritical: 3,
}

// Rank returns the ordinal rank of the urgency. Unknown labels rank lowest.
func (u Urgency) Rank() int {
	return urgencyRank[u]
}

// MaxUrgency returns the higher-ranked of two urgency labels.
func MaxUrgency(a, b Urgency) Urgency {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// CareLevel is the triage verdict describing the recommended venue for care.
type CareLevel string

const (
	CareLevelEmergency  CareLevel = "emergency"
	CareLevelUrgentCare CareLevel = "urgent_care"
	CareLevelClinic     CareLevel = "clinic"
	CareLevelTelehealth CareLevel = "telehealth"
	CareLevelSelfCare   CareLevel = "self_care"
)

// Urgency maps a care level to its urgency classification.
func (c CareLevel) Urgency() Urgency {
	switch c {
	case CareLevelEmergency:
		return UrgencyCritical
	case CareLevelUrgentCare:
		return UrgencyHigh
	case CareLevelClinic:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// AgeCategory buckets patient age for triage guidelines.
type AgeCategory string

const (
	AgeInfant0To3Months   AgeCategory = "infant_0_3_months"
	AgeChild3MonthsTo3Yrs AgeCategory = "child_3_months_3_years"
	AgeChild              AgeCategory = "child"
	AgeAdult              AgeCategory = "adult"
	AgeUnknown            AgeCategory = "unknown"
)

// Sender identifies the author of a conversation message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
	SenderSystem    Sender = "system"
)

// ActionKind is the closed set of next-action decisions the dialogue
// manager can produce.
type ActionKind string

const (
	ActionEmergencyResponse     ActionKind = "emergency_response"
	ActionUrgentResponse        ActionKind = "urgent_response"
	ActionSymptomAssessment     ActionKind = "symptom_assessment"
	ActionCareRecommendation    ActionKind = "care_recommendation"
	ActionAppointmentAssistance ActionKind = "appointment_assistance"
	ActionMedicationGuidance    ActionKind = "medication_guidance"
	ActionGeneralResponse       ActionKind = "general_response"
)

// Priority is the handling priority attached to a dialogue action.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Tone selects the register of a generated response.
type Tone string

const (
	ToneUrgent       Tone = "urgent"
	ToneEmpathetic   Tone = "empathetic"
	ToneProfessional Tone = "professional"
	ToneReassuring   Tone = "reassuring"
)
