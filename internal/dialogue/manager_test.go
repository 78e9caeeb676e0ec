package dialogue

import (
	"testing"
	"time"

	"github.com/carebridge/triage-assistant/internal/domain"
)

func newTestManager() (*Manager, *time.Time) {
	current := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	m := NewManager(NewMemoryStore())
	m.now = func() time.Time { return current }
	return m, &current
}

func calmInput() (domain.IntentResult, domain.SentimentResult) {
	return domain.IntentResult{Intent: domain.IntentGeneralInquiry, Confidence: 0.6},
		domain.SentimentResult{Sentiment: domain.SentimentNeutral, UrgencyLevel: domain.UrgencyLow}
}

func TestProcessUserInputCreatesSessionOnFirstTurn(t *testing.T) {
	m, _ := newTestManager()
	intent, sentiment := calmInput()

	action := m.ProcessUserInput("u1", "hello", intent, sentiment)
	if action.Kind != domain.ActionGeneralResponse {
		t.Fatalf("action = %s, want general_response", action.Kind)
	}

	state := m.GetConversationState("u1")
	if state == nil {
		t.Fatal("expected a session to exist")
	}
	if len(state.Messages) != 1 {
		t.Fatalf("message count = %d, want 1", len(state.Messages))
	}
	if state.Messages[0].Sender != domain.SenderUser {
		t.Fatalf("sender = %s, want user", state.Messages[0].Sender)
	}
}

func TestDetermineNextActionCascade(t *testing.T) {
	cases := []struct {
		name      string
		intent    domain.Intent
		urgency   domain.Urgency
		wantKind  domain.ActionKind
		escalates bool
	}{
		{"emergency intent", domain.IntentEmergency, domain.UrgencyLow, domain.ActionEmergencyResponse, true},
		{"critical urgency", domain.IntentGeneralInquiry, domain.UrgencyCritical, domain.ActionEmergencyResponse, true},
		{"high urgency", domain.IntentGeneralInquiry, domain.UrgencyHigh, domain.ActionUrgentResponse, true},
		{"first symptom turn", domain.IntentSymptomTriage, domain.UrgencyLow, domain.ActionSymptomAssessment, false},
		{"appointment", domain.IntentAppointmentBooking, domain.UrgencyLow, domain.ActionAppointmentAssistance, false},
		{"medication", domain.IntentMedicationInfo, domain.UrgencyLow, domain.ActionMedicationGuidance, false},
		{"general", domain.IntentGeneralInquiry, domain.UrgencyLow, domain.ActionGeneralResponse, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := newTestManager()
			action := m.ProcessUserInput("u1", "message", domain.IntentResult{Intent: tc.intent, Confidence: 0.8},
				domain.SentimentResult{Sentiment: domain.SentimentNeutral, UrgencyLevel: tc.urgency})
			if action.Kind != tc.wantKind {
				t.Fatalf("action = %s, want %s", action.Kind, tc.wantKind)
			}
			if action.Escalate != tc.escalates {
				t.Fatalf("escalate = %v, want %v", action.Escalate, tc.escalates)
			}
		})
	}
}

func TestSymptomTriageFollowUpOnlyOnFirstMessage(t *testing.T) {
	m, _ := newTestManager()
	symptomIntent := domain.IntentResult{Intent: domain.IntentSymptomTriage, Confidence: 0.8}
	calm := domain.SentimentResult{Sentiment: domain.SentimentNeutral, UrgencyLevel: domain.UrgencyLow}

	first := m.ProcessUserInput("u1", "I have a fever", symptomIntent, calm)
	if first.Kind != domain.ActionSymptomAssessment || !first.NeedFollowUp {
		t.Fatalf("first turn action = %+v, want symptom_assessment with follow-up", first)
	}

	second := m.ProcessUserInput("u1", "and a bad cough", symptomIntent, calm)
	if second.Kind != domain.ActionCareRecommendation {
		t.Fatalf("second turn action = %s, want care_recommendation", second.Kind)
	}
	if second.NeedFollowUp {
		t.Fatal("second turn should not request follow-up")
	}
}

func TestUrgencyRatchetsUpOnly(t *testing.T) {
	m, _ := newTestManager()
	intent, _ := calmInput()

	m.ProcessUserInput("u1", "one", intent, domain.SentimentResult{UrgencyLevel: domain.UrgencyHigh})
	m.ProcessUserInput("u1", "two", intent, domain.SentimentResult{UrgencyLevel: domain.UrgencyLow})

	state := m.GetConversationState("u1")
	if state.UrgencyLevel != domain.UrgencyHigh {
		t.Fatalf("urgency = %s, want high (must not downgrade)", state.UrgencyLevel)
	}
}

func TestEscalationIsSticky(t *testing.T) {
	m, _ := newTestManager()
	calmIntent, calmSentiment := calmInput()

	m.ProcessUserInput("u1", "help", domain.IntentResult{Intent: domain.IntentEmergency, Confidence: 0.9},
		domain.SentimentResult{UrgencyLevel: domain.UrgencyCritical})

	// Escalation persists into later calm turns.
	action := m.ProcessUserInput("u1", "feeling a bit calmer now", calmIntent, calmSentiment)
	if !action.Escalate {
		t.Fatal("escalation must stay sticky for the rest of the session")
	}
	if action.Kind != domain.ActionUrgentResponse {
		t.Fatalf("action = %s, want urgent_response", action.Kind)
	}

	state := m.GetConversationState("u1")
	if !state.EscalationTriggered {
		t.Fatal("EscalationTriggered should remain set")
	}
}

func TestSymptomAccumulationAcrossTurns(t *testing.T) {
	m, _ := newTestManager()
	symptomIntent := domain.IntentResult{Intent: domain.IntentSymptomTriage, Confidence: 0.8}
	calm := domain.SentimentResult{UrgencyLevel: domain.UrgencyLow}

	m.ProcessUserInput("u1", "I have a fever", symptomIntent, calm)
	m.ProcessUserInput("u1", "and now a cough too", symptomIntent, calm)
	m.ProcessUserInput("u1", "the fever is still there", symptomIntent, calm)

	state := m.GetConversationState("u1")
	want := []string{"fever", "cough"}
	if len(state.SymptomsMentioned) != len(want) {
		t.Fatalf("symptoms = %v, want %v", state.SymptomsMentioned, want)
	}
	for i, s := range want {
		if state.SymptomsMentioned[i] != s {
			t.Fatalf("symptoms = %v, want %v", state.SymptomsMentioned, want)
		}
	}
}

func TestSessionIsolationBetweenUsers(t *testing.T) {
	m, _ := newTestManager()
	calmIntent, calmSentiment := calmInput()

	m.ProcessUserInput("u1", "emergency", domain.IntentResult{Intent: domain.IntentEmergency, Confidence: 0.9},
		domain.SentimentResult{UrgencyLevel: domain.UrgencyCritical})
	action := m.ProcessUserInput("u2", "hello there", calmIntent, calmSentiment)

	if action.Escalate {
		t.Fatal("u2 must not inherit u1's escalation")
	}
	if s := m.GetConversationState("u2"); s.UrgencyLevel != domain.UrgencyLow {
		t.Fatalf("u2 urgency = %s, want low", s.UrgencyLevel)
	}
}

func TestSessionExpiresAfterInactivity(t *testing.T) {
	m, current := newTestManager()
	intent, sentiment := calmInput()

	m.ProcessUserInput("u1", "hello", intent, sentiment)
	before := m.GetConversationState("u1")

	*current = current.Add(2*time.Hour + time.Minute)

	m.ProcessUserInput("u1", "hello again", intent, sentiment)
	after := m.GetConversationState("u1")

	if after.SessionID == before.SessionID {
		t.Fatal("expected a fresh session after the timeout")
	}
	if len(after.Messages) != 1 {
		t.Fatalf("fresh session message count = %d, want 1", len(after.Messages))
	}
}

func TestSessionSurvivesWithinTimeout(t *testing.T) {
	m, current := newTestManager()
	intent, sentiment := calmInput()

	m.ProcessUserInput("u1", "hello", intent, sentiment)
	before := m.GetConversationState("u1")

	*current = current.Add(time.Hour)

	m.ProcessUserInput("u1", "still here", intent, sentiment)
	after := m.GetConversationState("u1")

	if after.SessionID != before.SessionID {
		t.Fatal("session should survive activity within the timeout")
	}
	if len(after.Messages) != 2 {
		t.Fatalf("message count = %d, want 2", len(after.Messages))
	}
}

func TestReapExpiredSweepsIdleSessions(t *testing.T) {
	m, current := newTestManager()
	intent, sentiment := calmInput()

	m.ProcessUserInput("u1", "hello", intent, sentiment)
	m.ProcessUserInput("u2", "hi", intent, sentiment)

	*current = current.Add(3 * time.Hour)

	if n := m.ReapExpired(); n != 2 {
		t.Fatalf("reaped = %d, want 2", n)
	}
	if stats := m.GetSystemStats(); stats.ActiveSessions != 0 {
		t.Fatalf("active sessions = %d, want 0", stats.ActiveSessions)
	}
}

func TestResetConversationStartsFreshSession(t *testing.T) {
	m, current := newTestManager()
	intent, sentiment := calmInput()

	m.ProcessUserInput("u1", "hello", intent, sentiment)
	before := m.GetConversationState("u1")

	// Session IDs are timestamp-derived; advance the clock so the new one differs.
	*current = current.Add(time.Second)
	after := m.ResetConversation("u1")

	if after.SessionID == before.SessionID {
		t.Fatal("reset must produce a new session ID")
	}
	if len(after.Messages) != 0 {
		t.Fatalf("fresh session message count = %d, want 0", len(after.Messages))
	}
}

func TestEndConversationStaysQueryable(t *testing.T) {
	m, _ := newTestManager()
	intent, sentiment := calmInput()

	m.ProcessUserInput("u1", "hello", intent, sentiment)
	m.EndConversation("u1", "completed")

	state := m.GetConversationState("u1")
	if state == nil {
		t.Fatal("ended conversation should stay queryable")
	}
	if !state.ConversationComplete {
		t.Fatal("ConversationComplete should be set")
	}
	last := state.Messages[len(state.Messages)-1]
	if last.Sender != domain.SenderSystem {
		t.Fatalf("last sender = %s, want system", last.Sender)
	}
	if last.Content != "Conversation ended: completed" {
		t.Fatalf("unexpected closing message: %q", last.Content)
	}
}

func TestRecordAssessmentRatchetsUrgency(t *testing.T) {
	m, _ := newTestManager()
	intent, sentiment := calmInput()

	m.ProcessUserInput("u1", "chest pain", intent, sentiment)
	m.RecordAssessment("u1", domain.Assessment{
		CareLevel: domain.CareLevelEmergency,
		Urgency:   domain.UrgencyCritical,
	})

	state := m.GetConversationState("u1")
	if state.CareLevelDetermined != domain.CareLevelEmergency {
		t.Fatalf("care level = %s, want emergency", state.CareLevelDetermined)
	}
	if state.UrgencyLevel != domain.UrgencyCritical {
		t.Fatalf("urgency = %s, want critical", state.UrgencyLevel)
	}
	if !state.EscalationTriggered {
		t.Fatal("critical assessment should trigger escalation")
	}

	// Unknown users are a no-op, not a panic.
	m.RecordAssessment("nobody", domain.Assessment{CareLevel: domain.CareLevelClinic})
}

func TestGetConversationHistoryLimit(t *testing.T) {
	m, _ := newTestManager()
	intent, sentiment := calmInput()

	for i := 0; i < 5; i++ {
		m.ProcessUserInput("u1", "message", intent, sentiment)
		m.AddAssistantResponse("u1", "reply", nil)
	}

	if got := m.GetConversationHistory("u1", 3); len(got) != 3 {
		t.Fatalf("limited history length = %d, want 3", len(got))
	}
	if got := m.GetConversationHistory("u1", 0); len(got) != 10 {
		t.Fatalf("full history length = %d, want 10", len(got))
	}
	if got := m.GetConversationHistory("nobody", 3); got != nil {
		t.Fatalf("unknown user history = %v, want nil", got)
	}
}

func TestGetSystemStats(t *testing.T) {
	m, _ := newTestManager()
	calmIntent, calmSentiment := calmInput()

	m.ProcessUserInput("u1", "hello", calmIntent, calmSentiment)
	m.ProcessUserInput("u1", "another", calmIntent, calmSentiment)
	m.ProcessUserInput("u2", "emergency", domain.IntentResult{Intent: domain.IntentEmergency, Confidence: 0.9},
		domain.SentimentResult{UrgencyLevel: domain.UrgencyCritical})

	stats := m.GetSystemStats()
	if stats.ActiveSessions != 2 {
		t.Fatalf("active sessions = %d, want 2", stats.ActiveSessions)
	}
	if stats.TotalMessages != 3 {
		t.Fatalf("total messages = %d, want 3", stats.TotalMessages)
	}
	if stats.EscalationsTriggered != 1 {
		t.Fatalf("escalations = %d, want 1", stats.EscalationsTriggered)
	}
	if stats.EmergencyConversations != 1 {
		t.Fatalf("emergency conversations = %d, want 1", stats.EmergencyConversations)
	}
}

func TestGetConversationStateReturnsCopy(t *testing.T) {
	m, _ := newTestManager()
	_, sentiment := calmInput()

	m.ProcessUserInput("u1", "I have a fever", domain.IntentResult{Intent: domain.IntentSymptomTriage, Confidence: 0.8}, sentiment)

	snapshot := m.GetConversationState("u1")
	snapshot.SymptomsMentioned = append(snapshot.SymptomsMentioned, "tampered")
	snapshot.Messages[0].Content = "tampered"

	fresh := m.GetConversationState("u1")
	if len(fresh.SymptomsMentioned) != 1 || fresh.SymptomsMentioned[0] != "fever" {
		t.Fatalf("symptoms = %v, want [fever]", fresh.SymptomsMentioned)
	}
	if fresh.Messages[0].Content != "I have a fever" {
		t.Fatal("mutating the snapshot must not affect the live state")
	}
}
