// Package guard validates user input before it reaches the dialogue manager.
// Content rules are expressed as an OPA rego policy so they can be swapped
// without recompiling; length and emptiness checks live in the validator.
package guard

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine evaluates the message content policy.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine prepares the rego policy for evaluation.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.message_policy.result"),
		rego.Module("message_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate runs the policy against a message and returns the decision
// ("allow" or "block") plus the names of any violated rules.
func (e *Engine) Evaluate(ctx context.Context, message string) (string, []string, error) {
	input := map[string]interface{}{"message": message}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", nil, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy defines a default; no result means it did not load.
		return "allow", nil, nil
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return "allow", nil, nil
	}

	decision, _ := obj["decision"].(string)
	if decision == "" {
		decision = "allow"
	}

	var violations []string
	if raw, ok := obj["violations"].([]interface{}); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				violations = append(violations, s)
			}
		}
	}

	return decision, violations, nil
}

// DefaultPolicy blocks content patterns that have no business in a patient
// message: script injection, javascript URLs, and base64 data URLs.
const DefaultPolicy = `
package message_policy

import rego.v1

violations contains "script_tag" if regex.match(` + "`" + `(?i)<script` + "`" + `, input.message)

violations contains "javascript_url" if regex.match(` + "`" + `(?i)javascript:` + "`" + `, input.message)

violations contains "base64_data_url" if regex.match(` + "`" + `(?i)data:[^,]*base64` + "`" + `, input.message)

default decision := "allow"

decision := "block" if count(violations) > 0

result := {"decision": decision, "violations": violations}
`
