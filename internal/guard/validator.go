package guard

import (
	"context"
	"strings"
)

// MaxMessageLength is the longest message accepted; longer input is truncated
// and flagged rather than rejected.
const MaxMessageLength = 1000

// MinMessageLength below which input is flagged as probably too short to act
// on, but still accepted.
const MinMessageLength = 3

// Severity grades a validation outcome.
type Severity string

const (
	SeverityNone    Severity = "none"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Validation is the structured outcome of validating one message.
type Validation struct {
	Valid       bool     `json:"is_valid"`
	CleanedText string   `json:"cleaned_text"`
	Issues      []string `json:"issues,omitempty"`
	Severity    Severity `json:"severity"`
}

// Validator combines basic sanitization with the content policy engine.
type Validator struct {
	engine *Engine
}

// NewValidator creates a validator over a prepared policy engine.
func NewValidator(engine *Engine) *Validator {
	return &Validator{engine: engine}
}

// Validate sanitizes and checks a user message. Rejections are structured,
// never errors; the error return is reserved for policy engine failures.
func (v *Validator) Validate(ctx context.Context, text string) (Validation, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return Validation{
			Valid:    false,
			Issues:   []string{"Empty or invalid input"},
			Severity: SeverityError,
		}, nil
	}

	result := Validation{Valid: true, CleanedText: cleaned, Severity: SeverityNone}

	if len(cleaned) > MaxMessageLength {
		result.CleanedText = cleaned[:MaxMessageLength]
		result.Issues = append(result.Issues, "Input too long (max 1000 characters)")
		result.Severity = SeverityWarning
	}
	if len(result.CleanedText) < MinMessageLength {
		result.Issues = append(result.Issues, "Input too short (min 3 characters)")
		result.Severity = SeverityWarning
	}

	decision, violations, err := v.engine.Evaluate(ctx, result.CleanedText)
	if err != nil {
		return Validation{}, err
	}
	if decision == "block" {
		result.Valid = false
		result.Severity = SeverityError
		result.Issues = append(result.Issues, "Potentially harmful content detected")
		result.Issues = append(result.Issues, violations...)
	}

	return result, nil
}
