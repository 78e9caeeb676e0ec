// Package assistant wires the classifiers, triage engine, dialogue manager,
// and response generator into the per-message pipeline.
package assistant

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/carebridge/triage-assistant/internal/dialogue"
	"github.com/carebridge/triage-assistant/internal/domain"
	"github.com/carebridge/triage-assistant/internal/guard"
	"github.com/carebridge/triage-assistant/internal/nlu"
	"github.com/carebridge/triage-assistant/internal/repository"
	"github.com/carebridge/triage-assistant/internal/respond"
	"github.com/carebridge/triage-assistant/internal/triage"
)

// TurnMetadata carries supporting detail for one processed turn.
type TurnMetadata struct {
	IntentConfidence float64            `json:"intent_confidence"`
	ResponseTone     domain.Tone        `json:"response_tone,omitempty"`
	Assessment       *domain.Assessment `json:"healthcare_assessment,omitempty"`
	SystemAction     domain.ActionKind  `json:"system_action,omitempty"`
}

// TurnResult is the complete outcome of processing one user message.
type TurnResult struct {
	Message            string                 `json:"message"`
	Intent             domain.Intent          `json:"intent"`
	Sentiment          domain.SentimentResult `json:"sentiment"`
	UrgencyLevel       domain.Urgency         `json:"urgency_level"`
	CareLevel          domain.CareLevel       `json:"care_level,omitempty"`
	RequiresEscalation bool                   `json:"requires_escalation"`
	FollowUpQuestions  []string               `json:"follow_up_questions,omitempty"`
	ConversationID     string                 `json:"conversation_id,omitempty"`
	ProcessingSeconds  float64                `json:"processing_time"`
	Metadata           TurnMetadata           `json:"metadata"`

	// Rejected marks turns stopped by input validation; Validation holds the
	// structured rejection.
	Rejected   bool              `json:"rejected,omitempty"`
	Validation *guard.Validation `json:"validation,omitempty"`
}

// TriageSummary is the per-session triage digest used for export.
type TriageSummary struct {
	SessionID           string           `json:"session_id"`
	SymptomsMentioned   []string         `json:"symptoms_mentioned"`
	CareLevel           domain.CareLevel `json:"care_level,omitempty"`
	UrgencyLevel        domain.Urgency   `json:"urgency_level"`
	EscalationTriggered bool             `json:"escalation_triggered"`
	MessageCount        int              `json:"message_count"`
	DurationMinutes     float64          `json:"conversation_duration_minutes"`
}

// Export is the full JSON-shaped conversation record.
type Export struct {
	UserID              string           `json:"user_id"`
	ExportTimestamp     time.Time        `json:"export_timestamp"`
	ConversationHistory []domain.Message `json:"conversation_history"`
	TriageSummary       *TriageSummary   `json:"triage_summary,omitempty"`
}

// Stats aggregates dialogue registry counters with facade-level ones.
type Stats struct {
	dialogue.SystemStats
	TotalTurns         int     `json:"total_turns"`
	EmergencyResponses int     `json:"emergency_responses"`
	SuccessfulTriages  int     `json:"successful_triages"`
	UptimeHours        float64 `json:"system_uptime_hours"`
	SystemHealth       string  `json:"system_health"`
}

// Assistant coordinates all components for the turn pipeline.
type Assistant struct {
	intents    *nlu.IntentClassifier
	sentiments *nlu.SentimentAnalyzer
	triage     *triage.Engine
	dialogue   *dialogue.Manager
	generator  *respond.Generator
	validator  *guard.Validator
	// convLog is optional; logging is best-effort and never fails a turn.
	convLog *repository.ConversationLog

	startTime time.Time
	now       func() time.Time

	mu                 sync.Mutex
	totalTurns         int
	emergencyResponses int
	successfulTriages  int
}

// New assembles the assistant from its components. convLog may be nil.
func New(
	intents *nlu.IntentClassifier,
	sentiments *nlu.SentimentAnalyzer,
	triageEngine *triage.Engine,
	dialogueManager *dialogue.Manager,
	generator *respond.Generator,
	validator *guard.Validator,
	convLog *repository.ConversationLog,
) *Assistant {
	return &Assistant{
		intents:    intents,
		sentiments: sentiments,
		triage:     triageEngine,
		dialogue:   dialogueManager,
		generator:  generator,
		validator:  validator,
		convLog:    convLog,
		startTime:  time.Now(),
		now:        time.Now,
	}
}

// ProcessMessage runs the full pipeline for one user message. It never
// returns an error to the caller: validation failures come back as
// structured rejections, and internal failures yield the safe fallback
// response directing the user to emergency services.
func (a *Assistant) ProcessMessage(ctx context.Context, userID, message string, patientAge *float64) (result TurnResult) {
	start := a.now()

	// A broken pipeline must never leave the user with no response.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic while processing message for %s: %v", userID, r)
			result = a.fallbackResult(start)
		}
	}()

	validation, err := a.validator.Validate(ctx, message)
	if err != nil {
		log.Printf("Input validation failed internally for %s: %v", userID, err)
		return a.fallbackResult(start)
	}
	if !validation.Valid {
		return TurnResult{
			Message:           "I couldn't process that message. Please rephrase your question in plain text.",
			Intent:            domain.IntentGeneralInquiry,
			UrgencyLevel:      domain.UrgencyLow,
			Rejected:          true,
			Validation:        &validation,
			ProcessingSeconds: a.now().Sub(start).Seconds(),
		}
	}
	text := validation.CleanedText

	intentResult := a.intents.ClassifyIntent(text)
	sentimentResult := a.sentiments.AnalyzeSentiment(text)

	action := a.dialogue.ProcessUserInput(userID, text, intentResult, sentimentResult)

	var assessment *domain.Assessment
	if intentResult.Intent == domain.IntentSymptomTriage {
		assessed := a.triage.AssessSymptoms(text, patientAge)
		assessment = &assessed
		a.dialogue.RecordAssessment(userID, assessed)
	}

	response := a.generator.Generate(ctx, respond.Input{
		Intent:      intentResult,
		Sentiment:   sentimentResult,
		Action:      action,
		Assessment:  assessment,
		UserMessage: text,
	})

	a.dialogue.AddAssistantResponse(userID, response.Message, map[string]string{
		"response_type": response.ResponseType,
		"tone":          string(response.Tone),
		"care_level":    string(response.CareLevel),
	})

	var followUps []string
	if assessment != nil && action.NeedFollowUp {
		followUps = a.triage.FollowUpQuestions(assessment.SymptomsDetected)
		if len(followUps) > 0 {
			a.dialogue.SetFollowUpQuestions(userID, followUps)
		}
	}

	a.updateStats(intentResult.Intent, sentimentResult, action)
	a.logTurn(ctx, userID, action.Context.SessionID, assessment)

	result = TurnResult{
		Message:            response.Message,
		Intent:             intentResult.Intent,
		Sentiment:          sentimentResult,
		UrgencyLevel:       sentimentResult.UrgencyLevel,
		RequiresEscalation: action.Escalate,
		FollowUpQuestions:  followUps,
		ConversationID:     action.Context.SessionID,
		ProcessingSeconds:  a.now().Sub(start).Seconds(),
		Metadata: TurnMetadata{
			IntentConfidence: intentResult.Confidence,
			ResponseTone:     response.Tone,
			Assessment:       assessment,
			SystemAction:     action.Kind,
		},
	}
	if assessment != nil {
		result.CareLevel = assessment.CareLevel
	}

	if result.UrgencyLevel == domain.UrgencyCritical || intentResult.Intent == domain.IntentEmergency {
		log.Printf("EMERGENCY DETECTED - user %s", userID)
	}
	return result
}

func (a *Assistant) fallbackResult(start time.Time) TurnResult {
	return TurnResult{
		Message:            respond.FallbackErrorResponse,
		Intent:             domain.IntentGeneralInquiry,
		UrgencyLevel:       domain.UrgencyLow,
		RequiresEscalation: true,
		ProcessingSeconds:  a.now().Sub(start).Seconds(),
	}
}

// HandleEmergency is the fast path that skips classification entirely.
func (a *Assistant) HandleEmergency(userID string) TurnResult {
	log.Printf("Emergency handler activated for user %s", userID)

	message := "EMERGENCY DETECTED.\n\nIf this is a life-threatening emergency, please:\n" +
		"- Call 911 immediately\n- Go to the nearest emergency room\n" +
		"- Do not delay seeking professional medical care\n\n" +
		"Time is critical - seek help immediately."

	a.dialogue.AddAssistantResponse(userID, message, map[string]string{
		"response_type": "emergency",
		"escalated":     "true",
	})

	a.mu.Lock()
	a.emergencyResponses++
	a.mu.Unlock()

	return TurnResult{
		Message:            message,
		Intent:             domain.IntentEmergency,
		UrgencyLevel:       domain.UrgencyCritical,
		CareLevel:          domain.CareLevelEmergency,
		RequiresEscalation: true,
		Metadata:           TurnMetadata{SystemAction: domain.ActionEmergencyResponse},
	}
}

// GetConversationHistory proxies to the dialogue manager.
func (a *Assistant) GetConversationHistory(userID string, limit int) []domain.Message {
	return a.dialogue.GetConversationHistory(userID, limit)
}

// ResetConversation discards the user's state and starts a new session.
func (a *Assistant) ResetConversation(userID string) *domain.ConversationState {
	return a.dialogue.ResetConversation(userID)
}

// EndConversation marks the user's session complete.
func (a *Assistant) EndConversation(userID, reason string) {
	a.dialogue.EndConversation(userID, reason)
}

// GetTriageSummary digests the current session's triage facts, or nil if the
// user has no session.
func (a *Assistant) GetTriageSummary(userID string) *TriageSummary {
	state := a.dialogue.GetConversationState(userID)
	if state == nil {
		return nil
	}
	return &TriageSummary{
		SessionID:           state.SessionID,
		SymptomsMentioned:   state.SymptomsMentioned,
		CareLevel:           state.CareLevelDetermined,
		UrgencyLevel:        state.UrgencyLevel,
		EscalationTriggered: state.EscalationTriggered,
		MessageCount:        len(state.Messages),
		DurationMinutes:     a.now().Sub(state.CreatedAt).Minutes(),
	}
}

// ExportConversation serializes the full conversation plus triage summary.
func (a *Assistant) ExportConversation(userID string) Export {
	return Export{
		UserID:              userID,
		ExportTimestamp:     a.now(),
		ConversationHistory: a.dialogue.GetConversationHistory(userID, 0),
		TriageSummary:       a.GetTriageSummary(userID),
	}
}

// GetSystemStats merges dialogue registry counters with facade counters.
func (a *Assistant) GetSystemStats() Stats {
	a.mu.Lock()
	totalTurns := a.totalTurns
	emergencies := a.emergencyResponses
	triages := a.successfulTriages
	a.mu.Unlock()

	return Stats{
		SystemStats:        a.dialogue.GetSystemStats(),
		TotalTurns:         totalTurns,
		EmergencyResponses: emergencies,
		SuccessfulTriages:  triages,
		UptimeHours:        a.now().Sub(a.startTime).Hours(),
		SystemHealth:       "operational",
	}
}

func (a *Assistant) updateStats(intent domain.Intent, sentiment domain.SentimentResult, action domain.Action) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalTurns++
	if intent == domain.IntentEmergency || sentiment.UrgencyLevel == domain.UrgencyCritical {
		a.emergencyResponses++
	}
	if intent == domain.IntentSymptomTriage && !action.Escalate {
		a.successfulTriages++
	}
}

// logTurn appends the turn to the durable log. Failures are logged and
// swallowed: the log is not authoritative for routing.
func (a *Assistant) logTurn(ctx context.Context, userID, sessionID string, assessment *domain.Assessment) {
	if a.convLog == nil {
		return
	}
	if err := a.convLog.LogSession(ctx, sessionID, userID, a.now()); err != nil {
		log.Printf("Failed to log session %s: %v", sessionID, err)
		return
	}
	for _, msg := range a.dialogue.GetConversationHistory(userID, 2) {
		if err := a.convLog.LogMessage(ctx, sessionID, msg); err != nil {
			log.Printf("Failed to log message %s: %v", msg.MessageID, err)
		}
	}
	if assessment != nil {
		if err := a.convLog.LogAssessment(ctx, sessionID, *assessment, a.now()); err != nil {
			log.Printf("Failed to log assessment for session %s: %v", sessionID, err)
		}
	}
}
