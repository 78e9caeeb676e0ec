// Package respond renders user-facing text from dialogue actions and triage
// results. This is templating over configuration tables, not core logic.
package respond

import "github.com/carebridge/triage-assistant/internal/domain"

// toneModifier holds the phrase pools prepended for a given tone.
type toneModifier struct {
	prefixes   []string
	connectors []string
}

var toneModifiers = map[domain.Tone]toneModifier{
	domain.ToneEmpathetic: {
		prefixes: []string{
			"I understand this must be concerning.",
			"I can see you're worried.",
			"This sounds distressing.",
		},
		connectors: []string{
			"Let me help you with this.",
			"I want to make sure you get the right care.",
		},
	},
	domain.ToneReassuring: {
		prefixes: []string{
			"Let me help you understand this.",
			"I'm here to assist you.",
			"Don't worry, we'll figure this out together.",
		},
		connectors: []string{
			"Here's what I recommend:",
			"Let's look at your options:",
		},
	},
	domain.ToneProfessional: {
		prefixes: []string{
			"Based on the information provided:",
			"According to medical guidelines:",
			"Here's what I can tell you:",
		},
		connectors: []string{
			"The recommended course of action is:",
			"I suggest the following:",
		},
	},
	domain.ToneUrgent: {
		prefixes: []string{
			"Important:",
			"Immediate attention may be required:",
			"Please review this:",
		},
		connectors: []string{
			"You need to:",
			"Please take the following action immediately:",
		},
	},
}

const emergencyResponse = "This sounds like a medical emergency. Please call 911 immediately or go to the nearest emergency room.\n\nDo not delay seeking care. Time is critical in emergency situations."

// triageResponses is keyed by the care level the triage engine determined.
var triageResponses = map[domain.CareLevel]string{
	domain.CareLevelEmergency:  "EMERGENCY: These symptoms require immediate medical attention. Please call 911 or go to the nearest emergency room.",
	domain.CareLevelUrgentCare: "URGENT: These symptoms require prompt medical attention within the next 2-4 hours.",
	domain.CareLevelClinic:     "MODERATE: These symptoms should be evaluated by a healthcare provider within 24-48 hours.",
	domain.CareLevelTelehealth: "These symptoms can be evaluated through a telehealth visit. Consider scheduling one in the next day or two.",
	domain.CareLevelSelfCare:   "These symptoms can often be managed with self-care, but consult a healthcare provider if they worsen.",
}

var intentResponses = map[domain.Intent]string{
	domain.IntentAppointmentBooking: "I'd be happy to help you schedule an appointment. Let me connect you with our booking system.",
	domain.IntentMedicationInfo:     "I can provide general medication information. For personalized advice, please consult your pharmacist or healthcare provider.\n\nImportant: never stop or change medications without consulting your healthcare provider.",
	domain.IntentInsuranceQuestion:  "For insurance-related questions, I recommend speaking with our billing department. They can provide specific information about coverage, copays, and claims processing.",
	domain.IntentGeneralInquiry:     "I'd be happy to help with your question. Could you please provide more specific details?",
}

const fallbackResponse = "I'd be happy to help you. Could you please provide more details about your question?"

const medicalDisclaimer = "This guidance is informational only and not a substitute for professional medical advice, diagnosis, or treatment."

// FallbackErrorResponse is returned when processing fails internally; a
// broken pipeline must never leave the user without a response.
const FallbackErrorResponse = "I apologize, but I'm experiencing technical difficulties. For urgent medical needs, please call 911 or contact your healthcare provider directly."

var followUpPrompts = map[domain.Intent][]string{
	domain.IntentSymptomTriage: {
		"To better assess your situation, could you tell me:",
		"I'd like to ask a few more questions to help determine the best care for you:",
		"To provide the most appropriate guidance, please let me know:",
	},
	domain.IntentMedicationInfo: {
		"Do you have any other questions about this medication?",
		"Is there anything specific about the medication you'd like to know more about?",
	},
	domain.IntentAppointmentBooking: {
		"What type of appointment would you like to schedule?",
		"Do you have a preferred date and time?",
	},
}

const genericFollowUpPrompt = "Is there anything else I can help you with?"

// medicalIntents get the disclaimer appended.
var medicalIntents = map[domain.Intent]bool{
	domain.IntentSymptomTriage:  true,
	domain.IntentMedicationInfo: true,
	domain.IntentEmergency:      true,
}

// llmIntents may be delegated to the external chat-completion client.
var llmIntents = map[domain.Intent]bool{
	domain.IntentGeneralInquiry:     true,
	domain.IntentAppointmentBooking: true,
	domain.IntentInsuranceQuestion:  true,
	domain.IntentMedicationInfo:     true,
}
