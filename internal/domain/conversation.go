package domain

import (
	"fmt"
	"time"
)

// Message is a single entry in a conversation history. Histories are
// append-only; messages are never mutated in place.
type Message struct {
	MessageID string            `json:"message_id"`
	Timestamp time.Time         `json:"timestamp"`
	Sender    Sender            `json:"sender"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// SentimentResult is the output of the sentiment analyzer for one message.
type SentimentResult struct {
	Sentiment      Sentiment `json:"sentiment"`
	Confidence     float64   `json:"confidence"`
	EmotionalState Emotion   `json:"emotional_state"`
	UrgencyLevel   Urgency   `json:"urgency_level"`
	EmotionMarkers []string  `json:"emotion_markers,omitempty"`
}

// IntentResult is the output of the intent classifier for one message.
type IntentResult struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// ConversationState tracks one user's live conversation. All mutation goes
// through the dialogue manager, which serializes access per user.
type ConversationState struct {
	UserID      string    `json:"user_id"`
	SessionID   string    `json:"session_id"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`

	Messages         []Message       `json:"messages"`
	CurrentIntent    Intent          `json:"current_intent,omitempty"`
	CurrentSentiment SentimentResult `json:"current_sentiment"`

	SymptomsMentioned   []string  `json:"symptoms_mentioned"`
	CareLevelDetermined CareLevel `json:"care_level_determined,omitempty"`
	UrgencyLevel        Urgency   `json:"urgency_level"`
	FollowUpQuestions   []string  `json:"follow_up_questions,omitempty"`
	EscalationTriggered bool      `json:"escalation_triggered"`

	AwaitingUserResponse  bool `json:"awaiting_user_response"`
	ConversationComplete  bool `json:"conversation_complete"`
	HumanHandoffRequested bool `json:"human_handoff_requested"`
}

// NewConversationState creates a fresh state for a user. The session ID is
// derived from the user ID and creation time and never changes afterwards.
func NewConversationState(userID string, now time.Time) *ConversationState {
	return &ConversationState{
		UserID:       userID,
		SessionID:    fmt.Sprintf("session_%s_%d", userID, now.UnixNano()),
		CreatedAt:    now,
		LastUpdated:  now,
		UrgencyLevel: UrgencyLow,
	}
}

// AddMessage appends a message to the history and refreshes LastUpdated.
func (s *ConversationState) AddMessage(messageID string, sender Sender, content string, metadata map[string]string, now time.Time) {
	s.Messages = append(s.Messages, Message{
		MessageID: messageID,
		Timestamp: now,
		Sender:    sender,
		Content:   content,
		Metadata:  metadata,
	})
	s.LastUpdated = now
}

// MentionSymptom records a symptom keyword, preserving first-appearance order
// and ignoring duplicates.
func (s *ConversationState) MentionSymptom(symptom string) {
	for _, seen := range s.SymptomsMentioned {
		if seen == symptom {
			return
		}
	}
	s.SymptomsMentioned = append(s.SymptomsMentioned, symptom)
}

// Expired reports whether the session has been inactive longer than timeout.
func (s *ConversationState) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastUpdated) > timeout
}

// ContextSummary is an immutable snapshot of conversation context, taken at
// decision time for the response generator and callers.
type ContextSummary struct {
	SessionID        string    `json:"session_id"`
	MessageCount     int       `json:"message_count"`
	CurrentIntent    Intent    `json:"current_intent,omitempty"`
	Symptoms         []string  `json:"symptoms"`
	CareLevel        CareLevel `json:"care_level,omitempty"`
	Urgency          Urgency   `json:"urgency"`
	EscalationNeeded bool      `json:"escalation_needed"`
	DurationMinutes  float64   `json:"duration_minutes"`
}

// Summary snapshots the current context. The symptom slice is copied so the
// snapshot stays consistent if the state mutates afterwards.
func (s *ConversationState) Summary(now time.Time) ContextSummary {
	symptoms := make([]string, len(s.SymptomsMentioned))
	copy(symptoms, s.SymptomsMentioned)
	return ContextSummary{
		SessionID:        s.SessionID,
		MessageCount:     len(s.Messages),
		CurrentIntent:    s.CurrentIntent,
		Symptoms:         symptoms,
		CareLevel:        s.CareLevelDetermined,
		Urgency:          s.UrgencyLevel,
		EscalationNeeded: s.EscalationTriggered,
		DurationMinutes:  now.Sub(s.CreatedAt).Minutes(),
	}
}

// HistoryTail returns up to limit most recent messages. A non-positive limit
// returns the full history. The returned slice is a copy.
func (s *ConversationState) HistoryTail(limit int) []Message {
	msgs := s.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
