package respond

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/carebridge/triage-assistant/internal/adapter/llm"
	"github.com/carebridge/triage-assistant/internal/domain"
)

// Input carries everything the generator needs for one turn.
type Input struct {
	Intent      domain.IntentResult
	Sentiment   domain.SentimentResult
	Action      domain.Action
	Assessment  *domain.Assessment
	UserMessage string
}

// Response is the rendered reply plus metadata for the caller.
type Response struct {
	Message            string           `json:"message"`
	Tone               domain.Tone      `json:"tone"`
	Intent             domain.Intent    `json:"intent"`
	Urgency            domain.Urgency   `json:"urgency"`
	RequiresEscalation bool             `json:"requires_escalation"`
	ResponseType       string           `json:"response_type"`
	CareLevel          domain.CareLevel `json:"care_level,omitempty"`
}

// Generator renders responses from template tables, optionally delegating
// open-ended intents to an external chat-completion client.
type Generator struct {
	llm  llm.Client
	pick func(n int) int
}

// NewGenerator creates a generator. A nil client disables LLM delegation.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{llm: client, pick: rand.Intn}
}

// Generate renders the reply for one turn. It never fails: LLM errors fall
// back to templates silently.
func (g *Generator) Generate(ctx context.Context, in Input) Response {
	tone := g.determineTone(in)

	var message string
	if g.llm != nil && llmIntents[in.Intent.Intent] && !in.Action.Escalate {
		message = g.delegated(ctx, in)
	}
	if message == "" {
		base := g.baseResponse(in)
		message = g.applyTone(base, in.Sentiment, tone)
	}

	if in.Action.NeedFollowUp {
		message += "\n\n" + g.followUpPrompt(in.Intent.Intent)
	}
	if medicalIntents[in.Intent.Intent] {
		message += "\n\n" + medicalDisclaimer
	}

	careLevel := in.Action.Context.CareLevel
	if in.Assessment != nil {
		careLevel = in.Assessment.CareLevel
	}

	return Response{
		Message:            message,
		Tone:               tone,
		Intent:             in.Intent.Intent,
		Urgency:            in.Sentiment.UrgencyLevel,
		RequiresEscalation: in.Action.Escalate,
		ResponseType:       in.Action.ResponseType,
		CareLevel:          careLevel,
	}
}

func (g *Generator) determineTone(in Input) domain.Tone {
	switch {
	case in.Sentiment.UrgencyLevel == domain.UrgencyCritical || in.Action.Escalate:
		return domain.ToneUrgent
	case emotionalState(in.Sentiment.EmotionalState) || in.Sentiment.UrgencyLevel == domain.UrgencyHigh:
		return domain.ToneEmpathetic
	case in.Sentiment.Sentiment == domain.SentimentPositive:
		return domain.ToneProfessional
	default:
		return domain.ToneReassuring
	}
}

func (g *Generator) delegated(ctx context.Context, in Input) string {
	if strings.TrimSpace(in.UserMessage) == "" {
		return ""
	}
	reply, err := g.llm.Chat(ctx, []llm.Message{
		{Role: "system", Content: "You are a helpful healthcare customer service assistant. Provide concise, actionable answers and ask at most one clarifying question if needed. Do not give medical diagnoses."},
		{Role: "user", Content: in.UserMessage},
	})
	if err != nil {
		log.Printf("LLM delegation failed, falling back to templates: %v", err)
		return ""
	}
	return reply
}

func (g *Generator) baseResponse(in Input) string {
	if in.Intent.Intent == domain.IntentEmergency || in.Action.Priority == domain.PriorityCritical {
		return emergencyResponse
	}

	if in.Intent.Intent == domain.IntentSymptomTriage {
		careLevel := in.Action.Context.CareLevel
		if in.Assessment != nil {
			careLevel = in.Assessment.CareLevel
		}
		response, ok := triageResponses[careLevel]
		if !ok {
			response = triageResponses[domain.CareLevelSelfCare]
		}
		if in.Assessment != nil && in.Assessment.Recommendations != "" {
			response += fmt.Sprintf("\n\nRecommendation: %s", in.Assessment.Recommendations)
		}
		return response
	}

	if response, ok := intentResponses[in.Intent.Intent]; ok {
		return response
	}
	return fallbackResponse
}

// applyTone prepends an empathetic lead-in for emotionally loaded turns.
func (g *Generator) applyTone(response string, sentiment domain.SentimentResult, tone domain.Tone) string {
	modifier, ok := toneModifiers[tone]
	if !ok {
		return response
	}
	if sentiment.UrgencyLevel == domain.UrgencyHigh ||
		sentiment.UrgencyLevel == domain.UrgencyCritical ||
		emotionalState(sentiment.EmotionalState) {
		prefix := modifier.prefixes[g.pick(len(modifier.prefixes))]
		connector := modifier.connectors[g.pick(len(modifier.connectors))]
		return fmt.Sprintf("%s %s\n\n%s", prefix, connector, response)
	}
	return response
}

func (g *Generator) followUpPrompt(intent domain.Intent) string {
	prompts, ok := followUpPrompts[intent]
	if !ok || len(prompts) == 0 {
		return genericFollowUpPrompt
	}
	return prompts[g.pick(len(prompts))]
}

func emotionalState(e domain.Emotion) bool {
	return e == domain.EmotionFear || e == domain.EmotionSadness || e == domain.EmotionAnger
}
