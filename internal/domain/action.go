package domain

// Action is the dialogue manager's decision record for one turn. Kind selects
// which optional fields are meaningful; the context snapshot is always set.
type Action struct {
	Kind         ActionKind `json:"action"`
	Priority     Priority   `json:"priority"`
	Escalate     bool       `json:"escalate"`
	ResponseType string     `json:"response_type"`

	// NeedFollowUp is set only for ActionSymptomAssessment.
	NeedFollowUp bool `json:"need_follow_up,omitempty"`

	Context ContextSummary `json:"context"`
}
