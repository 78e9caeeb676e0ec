package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/carebridge/triage-assistant/internal/dialogue"
	"github.com/carebridge/triage-assistant/internal/domain"
	"github.com/carebridge/triage-assistant/internal/guard"
	"github.com/carebridge/triage-assistant/internal/nlu"
	"github.com/carebridge/triage-assistant/internal/repository"
	"github.com/carebridge/triage-assistant/internal/respond"
	"github.com/carebridge/triage-assistant/internal/triage"
)

func newTestAssistant(t *testing.T) *Assistant {
	t.Helper()

	engine, err := guard.NewEngine(context.Background(), guard.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to prepare policy: %v", err)
	}

	convLog, err := repository.NewConversationLog(":memory:")
	if err != nil {
		t.Fatalf("failed to create conversation log: %v", err)
	}
	t.Cleanup(func() { convLog.Close() })

	return New(
		nlu.NewIntentClassifier(),
		nlu.NewSentimentAnalyzer(),
		triage.NewDefaultEngine(),
		dialogue.NewManager(dialogue.NewMemoryStore()),
		respond.NewGenerator(nil),
		guard.NewValidator(engine),
		convLog,
	)
}

func ptr(f float64) *float64 { return &f }

func TestProcessMessageEmergency(t *testing.T) {
	a := newTestAssistant(t)

	result := a.ProcessMessage(context.Background(), "u1", "I have severe chest pain and can't breathe", nil)

	if result.Intent != domain.IntentEmergency {
		t.Fatalf("intent = %s, want emergency", result.Intent)
	}
	if result.UrgencyLevel != domain.UrgencyCritical {
		t.Fatalf("urgency = %s, want critical", result.UrgencyLevel)
	}
	if !result.RequiresEscalation {
		t.Fatal("emergency turns must escalate")
	}
	if !strings.Contains(result.Message, "911") {
		t.Fatalf("emergency response should direct to 911, got: %q", result.Message)
	}
	if result.Metadata.SystemAction != domain.ActionEmergencyResponse {
		t.Fatalf("system action = %s, want emergency_response", result.Metadata.SystemAction)
	}
}

func TestProcessMessageMildSymptom(t *testing.T) {
	a := newTestAssistant(t)

	result := a.ProcessMessage(context.Background(), "u1", "I have a mild headache", nil)

	if result.Intent != domain.IntentSymptomTriage {
		t.Fatalf("intent = %s, want symptom_triage", result.Intent)
	}
	if result.CareLevel != domain.CareLevelTelehealth {
		t.Fatalf("care level = %s, want telehealth", result.CareLevel)
	}
	if result.RequiresEscalation {
		t.Fatal("a mild headache must not escalate")
	}
	if len(result.FollowUpQuestions) == 0 {
		t.Fatal("first symptom turn should ask follow-up questions")
	}
	if result.Metadata.Assessment == nil {
		t.Fatal("symptom turns should carry the assessment in metadata")
	}
}

func TestProcessMessageInfantFever(t *testing.T) {
	a := newTestAssistant(t)

	result := a.ProcessMessage(context.Background(), "u1", "my baby has a 104 fever", ptr(0.08))

	if result.Intent != domain.IntentSymptomTriage {
		t.Fatalf("intent = %s, want symptom_triage", result.Intent)
	}
	if result.CareLevel != domain.CareLevelEmergency {
		t.Fatalf("care level = %s, want emergency", result.CareLevel)
	}
	if !strings.Contains(result.Message, "911") {
		t.Fatalf("expected emergency-level guidance, got: %q", result.Message)
	}

	// The critical assessment must ratchet the session state.
	summary := a.GetTriageSummary("u1")
	if summary.UrgencyLevel != domain.UrgencyCritical {
		t.Fatalf("session urgency = %s, want critical", summary.UrgencyLevel)
	}
	if !summary.EscalationTriggered {
		t.Fatal("critical assessment should trigger escalation on the session")
	}
}

func TestProcessMessageSymptomAccumulation(t *testing.T) {
	a := newTestAssistant(t)
	ctx := context.Background()

	first := a.ProcessMessage(ctx, "u1", "I have a fever", nil)
	if first.Metadata.SystemAction != domain.ActionSymptomAssessment {
		t.Fatalf("first action = %s, want symptom_assessment", first.Metadata.SystemAction)
	}

	second := a.ProcessMessage(ctx, "u1", "and now a nasty cough too", nil)
	if second.Metadata.SystemAction != domain.ActionCareRecommendation {
		t.Fatalf("second action = %s, want care_recommendation", second.Metadata.SystemAction)
	}
	if second.ConversationID != first.ConversationID {
		t.Fatal("both turns should share one session")
	}

	summary := a.GetTriageSummary("u1")
	want := map[string]bool{"fever": true, "cough": true}
	found := 0
	for _, s := range summary.SymptomsMentioned {
		if want[s] {
			found++
		}
	}
	if found != 2 {
		t.Fatalf("symptoms = %v, want fever and cough tracked", summary.SymptomsMentioned)
	}
}

func TestProcessMessageRejectsHarmfulInput(t *testing.T) {
	a := newTestAssistant(t)

	result := a.ProcessMessage(context.Background(), "u1", "<script>alert(1)</script>", nil)

	if !result.Rejected {
		t.Fatal("harmful input should be rejected")
	}
	if result.Validation == nil || result.Validation.Valid {
		t.Fatalf("expected invalid validation, got %+v", result.Validation)
	}
	if result.Message == "" {
		t.Fatal("rejections still carry a user-facing message")
	}

	// Rejected turns never reach the dialogue manager.
	if history := a.GetConversationHistory("u1", 0); len(history) != 0 {
		t.Fatalf("history length = %d, want 0", len(history))
	}
}

func TestProcessMessageRejectsEmptyInput(t *testing.T) {
	a := newTestAssistant(t)

	result := a.ProcessMessage(context.Background(), "u1", "   ", nil)
	if !result.Rejected {
		t.Fatal("blank input should be rejected")
	}
}

func TestProcessMessageRecordsBothSides(t *testing.T) {
	a := newTestAssistant(t)

	a.ProcessMessage(context.Background(), "u1", "I need to schedule an appointment", nil)

	history := a.GetConversationHistory("u1", 0)
	if len(history) != 2 {
		t.Fatalf("history length = %d, want user message plus reply", len(history))
	}
	if history[0].Sender != domain.SenderUser || history[1].Sender != domain.SenderAssistant {
		t.Fatalf("unexpected senders: %s, %s", history[0].Sender, history[1].Sender)
	}
}

func TestHandleEmergency(t *testing.T) {
	a := newTestAssistant(t)

	result := a.HandleEmergency("u1")
	if result.Intent != domain.IntentEmergency {
		t.Fatalf("intent = %s, want emergency", result.Intent)
	}
	if result.CareLevel != domain.CareLevelEmergency {
		t.Fatalf("care level = %s, want emergency", result.CareLevel)
	}
	if !strings.Contains(result.Message, "Call 911") {
		t.Fatalf("expected 911 guidance, got: %q", result.Message)
	}

	stats := a.GetSystemStats()
	if stats.EmergencyResponses != 1 {
		t.Fatalf("emergency responses = %d, want 1", stats.EmergencyResponses)
	}
}

func TestExportConversation(t *testing.T) {
	a := newTestAssistant(t)
	ctx := context.Background()

	a.ProcessMessage(ctx, "u1", "I have a fever", nil)
	export := a.ExportConversation("u1")

	if export.UserID != "u1" {
		t.Fatalf("user = %s, want u1", export.UserID)
	}
	if len(export.ConversationHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(export.ConversationHistory))
	}
	if export.TriageSummary == nil {
		t.Fatal("expected a triage summary")
	}
	if export.TriageSummary.CareLevel == "" {
		t.Fatal("triage summary should record the determined care level")
	}

	// Exporting an unknown user yields an empty record, not an error.
	empty := a.ExportConversation("nobody")
	if empty.TriageSummary != nil || len(empty.ConversationHistory) != 0 {
		t.Fatalf("unexpected export for unknown user: %+v", empty)
	}
}

func TestGetSystemStats(t *testing.T) {
	a := newTestAssistant(t)
	ctx := context.Background()

	a.ProcessMessage(ctx, "u1", "I have a mild headache", nil)
	a.ProcessMessage(ctx, "u2", "this is an emergency, chest pain", nil)

	stats := a.GetSystemStats()
	if stats.TotalTurns != 2 {
		t.Fatalf("total turns = %d, want 2", stats.TotalTurns)
	}
	if stats.ActiveSessions != 2 {
		t.Fatalf("active sessions = %d, want 2", stats.ActiveSessions)
	}
	if stats.EmergencyResponses != 1 {
		t.Fatalf("emergency responses = %d, want 1", stats.EmergencyResponses)
	}
	if stats.SuccessfulTriages != 1 {
		t.Fatalf("successful triages = %d, want 1", stats.SuccessfulTriages)
	}
	if stats.SystemHealth != "operational" {
		t.Fatalf("system health = %s, want operational", stats.SystemHealth)
	}
}

func TestResetConversationClearsTriageState(t *testing.T) {
	a := newTestAssistant(t)
	ctx := context.Background()

	a.ProcessMessage(ctx, "u1", "severe chest pain", nil)
	before := a.GetTriageSummary("u1")
	if !before.EscalationTriggered {
		t.Fatal("expected escalation before reset")
	}

	a.ResetConversation("u1")
	after := a.GetTriageSummary("u1")
	if after.EscalationTriggered {
		t.Fatal("reset should clear escalation")
	}
	if after.SessionID == before.SessionID {
		t.Fatal("reset should mint a new session ID")
	}
}
