package dialogue

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/triage-assistant/internal/domain"
)

// DefaultSessionTimeout is how long a session may stay inactive before it is
// considered expired. Expiry is checked lazily on access, not by a timer.
const DefaultSessionTimeout = 2 * time.Hour

// Symptom keywords tracked cumulatively per conversation.
var symptomKeywords = []string{"fever", "pain", "cough", "headache", "nausea", "rash"}

// SystemStats are on-demand counters over the live session registry.
type SystemStats struct {
	ActiveSessions         int `json:"active_sessions"`
	TotalMessages          int `json:"total_messages"`
	EscalationsTriggered   int `json:"escalations_triggered"`
	EmergencyConversations int `json:"emergency_conversations"`
}

// Manager is the single authority for conversation state transitions and
// escalation decisions. A manager-level mutex serializes every compound
// read-modify-write, so concurrent messages for the same user cannot
// interleave reads and mutations of one ConversationState; the registry map
// is additionally guarded inside the store.
type Manager struct {
	mu      sync.Mutex
	store   SessionStore
	timeout time.Duration
	now     func() time.Time
}

// NewManager creates a dialogue manager over the given session store.
func NewManager(store SessionStore) *Manager {
	return &Manager{
		store:   store,
		timeout: DefaultSessionTimeout,
		now:     time.Now,
	}
}

// SetSessionTimeout overrides the inactivity timeout. Intended for startup
// configuration, before the manager handles traffic.
func (m *Manager) SetSessionTimeout(d time.Duration) {
	if d > 0 {
		m.timeout = d
	}
}

// StartConversation reaps expired sessions, then creates and registers a
// fresh state for the user. Any existing state for the user is replaced.
func (m *Manager) StartConversation(userID string) *domain.ConversationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reapExpiredLocked()
	return m.startLocked(userID)
}

func (m *Manager) startLocked(userID string) *domain.ConversationState {
	state := domain.NewConversationState(userID, m.now())
	m.store.Put(userID, state)
	log.Printf("Started new conversation for user %s (session %s)", userID, state.SessionID)
	return state
}

// ReapExpired removes every expired session. It also runs implicitly inside
// StartConversation; exposing it separately lets a periodic caller sweep
// without going through a user-facing request.
func (m *Manager) ReapExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reapExpiredLocked()
}

func (m *Manager) reapExpiredLocked() int {
	expired := m.store.ReapExpired(m.now(), m.timeout)
	for _, userID := range expired {
		log.Printf("Reaped expired session for user %s", userID)
	}
	return len(expired)
}

// getOrCreateLocked returns the live state for a user, lazily purging an
// expired one. A missing session is a normal first-turn occurrence, never an
// error.
func (m *Manager) getOrCreateLocked(userID string) *domain.ConversationState {
	if state, ok := m.store.Get(userID); ok {
		if !state.Expired(m.now(), m.timeout) {
			return state
		}
		m.store.Delete(userID)
	}
	return m.startLocked(userID)
}

// ProcessUserInput appends the user message, updates conversation context,
// and returns the next-action decision. It does not render any text.
func (m *Manager) ProcessUserInput(userID, message string, intent domain.IntentResult, sentiment domain.SentimentResult) domain.Action {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.getOrCreateLocked(userID)

	state.AddMessage(uuid.NewString(), domain.SenderUser, message, map[string]string{
		"intent":            string(intent.Intent),
		"intent_confidence": fmt.Sprintf("%.2f", intent.Confidence),
		"sentiment":         string(sentiment.Sentiment),
		"urgency":           string(sentiment.UrgencyLevel),
	}, m.now())

	maintainContext(state, message, intent, sentiment)
	action := m.determineNextAction(state, intent, sentiment)

	log.Printf("Processed input for %s: intent=%s next_action=%s", userID, intent.Intent, action.Kind)
	return action
}

// maintainContext applies the per-turn context updates: latest classification
// results, monotonic urgency, sticky escalation, and cumulative symptoms.
func maintainContext(state *domain.ConversationState, message string, intent domain.IntentResult, sentiment domain.SentimentResult) {
	state.CurrentIntent = intent.Intent
	state.CurrentSentiment = sentiment

	// Urgency only ever ratchets up within a session.
	state.UrgencyLevel = domain.MaxUrgency(state.UrgencyLevel, sentiment.UrgencyLevel)

	if sentiment.UrgencyLevel == domain.UrgencyCritical || intent.Intent == domain.IntentEmergency {
		state.EscalationTriggered = true
	}

	lower := strings.ToLower(message)
	for _, symptom := range symptomKeywords {
		if strings.Contains(lower, symptom) {
			state.MentionSymptom(symptom)
		}
	}
}

// determineNextAction is the ordered priority cascade; the first matching
// rule wins. Decisions are recomputed from the full state snapshot rather
// than looked up from a transition table, so identical state plus input
// always produces the same action.
func (m *Manager) determineNextAction(state *domain.ConversationState, intent domain.IntentResult, sentiment domain.SentimentResult) domain.Action {
	summary := state.Summary(m.now())

	if intent.Intent == domain.IntentEmergency || sentiment.UrgencyLevel == domain.UrgencyCritical {
		return domain.Action{
			Kind:         domain.ActionEmergencyResponse,
			Priority:     domain.PriorityCritical,
			Escalate:     true,
			ResponseType: "emergency",
			Context:      summary,
		}
	}

	if sentiment.UrgencyLevel == domain.UrgencyHigh || state.EscalationTriggered {
		return domain.Action{
			Kind:         domain.ActionUrgentResponse,
			Priority:     domain.PriorityHigh,
			Escalate:     true,
			ResponseType: "urgent",
			Context:      summary,
		}
	}

	if intent.Intent == domain.IntentSymptomTriage {
		if len(state.Messages) == 1 {
			return domain.Action{
				Kind:         domain.ActionSymptomAssessment,
				Priority:     domain.PriorityMedium,
				ResponseType: "assessment",
				NeedFollowUp: true,
				Context:      summary,
			}
		}
		return domain.Action{
			Kind:         domain.ActionCareRecommendation,
			Priority:     domain.PriorityMedium,
			ResponseType: "recommendation",
			Context:      summary,
		}
	}

	if intent.Intent == domain.IntentAppointmentBooking {
		return domain.Action{
			Kind:         domain.ActionAppointmentAssistance,
			Priority:     domain.PriorityLow,
			ResponseType: "booking",
			Context:      summary,
		}
	}

	if intent.Intent == domain.IntentMedicationInfo {
		return domain.Action{
			Kind:         domain.ActionMedicationGuidance,
			Priority:     domain.PriorityMedium,
			ResponseType: "information",
			Context:      summary,
		}
	}

	return domain.Action{
		Kind:         domain.ActionGeneralResponse,
		Priority:     domain.PriorityLow,
		ResponseType: "information",
		Context:      summary,
	}
}

// RecordAssessment stores the latest triage verdict on the session and
// ratchets urgency and escalation accordingly. Unknown sessions are ignored.
func (m *Manager) RecordAssessment(userID string, assessment domain.Assessment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.store.Get(userID)
	if !ok {
		return
	}
	state.CareLevelDetermined = assessment.CareLevel
	state.UrgencyLevel = domain.MaxUrgency(state.UrgencyLevel, assessment.Urgency)
	if assessment.Urgency == domain.UrgencyCritical {
		state.EscalationTriggered = true
	}
}

// AddAssistantResponse appends an assistant-authored message. Unknown
// sessions are ignored.
func (m *Manager) AddAssistantResponse(userID, response string, metadata map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.store.Get(userID); ok {
		state.AddMessage(uuid.NewString(), domain.SenderAssistant, response, metadata, m.now())
	}
}

// SetFollowUpQuestions stores pending questions and marks the session as
// awaiting the user's reply. Unknown sessions are ignored.
func (m *Manager) SetFollowUpQuestions(userID string, questions []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.store.Get(userID); ok {
		state.FollowUpQuestions = questions
		state.AwaitingUserResponse = true
	}
}

// GetConversationHistory returns up to limit most recent messages, or the
// whole history for a non-positive limit. Unknown users yield an empty list.
func (m *Manager) GetConversationHistory(userID string, limit int) []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.store.Get(userID)
	if !ok {
		return nil
	}
	return state.HistoryTail(limit)
}

// GetConversationState returns a read-only copy of the user's state for
// export and reporting, or nil if unknown.
func (m *Manager) GetConversationState(userID string) *domain.ConversationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.store.Get(userID)
	if !ok {
		return nil
	}
	snapshot := *state
	snapshot.Messages = state.HistoryTail(0)
	snapshot.SymptomsMentioned = append([]string(nil), state.SymptomsMentioned...)
	snapshot.FollowUpQuestions = append([]string(nil), state.FollowUpQuestions...)
	return &snapshot
}

// EndConversation marks the session complete and appends a system note. The
// session stays registered and queryable for post-hoc export.
func (m *Manager) EndConversation(userID, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.store.Get(userID)
	if !ok {
		return
	}
	state.ConversationComplete = true
	state.AddMessage(uuid.NewString(), domain.SenderSystem, "Conversation ended: "+reason, nil, m.now())
	log.Printf("Ended conversation for %s: %s", userID, reason)
}

// ResetConversation deletes any existing state and starts a fresh session
// with a new session ID.
func (m *Manager) ResetConversation(userID string) *domain.ConversationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Delete(userID)
	m.reapExpiredLocked()
	return m.startLocked(userID)
}

// GetSystemStats scans the live registry. O(active sessions) per call, which
// is fine at the expected scale of tens to hundreds of sessions.
func (m *Manager) GetSystemStats() SystemStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stats SystemStats
	m.store.Range(func(_ string, state *domain.ConversationState) bool {
		stats.ActiveSessions++
		stats.TotalMessages += len(state.Messages)
		if state.EscalationTriggered {
			stats.EscalationsTriggered++
		}
		if state.UrgencyLevel == domain.UrgencyCritical {
			stats.EmergencyConversations++
		}
		return true
	})
	return stats
}
