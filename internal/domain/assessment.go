package domain

// SymptomCategory is a broad symptom grouping detected by the triage engine.
type SymptomCategory string

const (
	SymptomFever            SymptomCategory = "fever"
	SymptomPain             SymptomCategory = "pain"
	SymptomRespiratory      SymptomCategory = "respiratory"
	SymptomCardiac          SymptomCategory = "cardiac"
	SymptomNeurological     SymptomCategory = "neurological"
	SymptomGastrointestinal SymptomCategory = "gastrointestinal"
	SymptomPediatric        SymptomCategory = "pediatric"
	SymptomRash             SymptomCategory = "rash"
	SymptomBleeding         SymptomCategory = "bleeding"
)

// Assessment is the result of one triage evaluation.
type Assessment struct {
	CareLevel        CareLevel         `json:"care_level"`
	Urgency          Urgency           `json:"urgency"`
	SymptomsDetected []SymptomCategory `json:"symptoms_detected"`
	RedFlags         []string          `json:"red_flags"`
	Recommendations  string            `json:"recommendations"`
	FollowUpNeeded   bool              `json:"follow_up_needed"`
	AgeCategory      AgeCategory       `json:"age_category"`
}

// CareAdvice describes what a care level means for the patient.
type CareAdvice struct {
	Description     string   `json:"description"`
	Timeframe       string   `json:"timeframe,omitempty"`
	ImmediateAction string   `json:"immediate_action,omitempty"`
	Warning         string   `json:"warning,omitempty"`
	Options         []string `json:"options,omitempty"`
}
