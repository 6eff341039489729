// Package plan models the structured plans the assistant emits: an
// intent plus ordered steps over the tool whitelist. Parsing is split
// into a lenient interpret stage that always yields something renderable
// and a strict validate stage that gates execution.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/oryxcli/oryx/internal/tools"
)

// Step is one ordered action in a plan.
type Step struct {
	StepID               string            `json:"step_id"`
	Tool                 string            `json:"tool"`
	Arguments            map[string]string `json:"arguments"`
	Precondition         string            `json:"precondition,omitempty"`
	RequiresConfirmation bool              `json:"requires_confirmation,omitempty"`
}

// Plan is the parsed wire structure.
type Plan struct {
	PlanID             string      `json:"plan_id"`
	Intent             tools.Intent `json:"intent"`
	Steps              []Step      `json:"steps"`
	EvidenceReferenced []string    `json:"evidence_referenced,omitempty"`
}

// wireSchema constrains the shape of incoming plan JSON before decoding.
// Intent membership is checked separately so unknown intents can be
// reported as a distinct hard rejection.
const wireSchema = `{
	"type": "object",
	"properties": {
		"plan_id": {"type": "string"},
		"intent": {"type": "string"},
		"steps": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"step_id": {"type": "string"},
					"tool": {"type": "string"},
					"arguments": {"type": "object", "additionalProperties": {"type": "string"}},
					"precondition": {"type": "string"},
					"requires_confirmation": {"type": "boolean"}
				},
				"required": ["tool"]
			}
		},
		"evidence_referenced": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["intent", "steps"]
}`

// ErrUnknownIntent wraps the hard-rejection case of a structurally valid
// plan carrying an intent outside the closed set.
type ErrUnknownIntent struct {
	Intent string
}

func (e *ErrUnknownIntent) Error() string {
	return fmt.Sprintf("plan carries unknown intent %q", e.Intent)
}

// Parse is the strict stage: it decodes and shape-checks plan JSON.
// Malformed JSON and schema violations return an error; so does an
// intent outside the closed set.
func Parse(text string) (*Plan, error) {
	docLoader := gojsonschema.NewStringLoader(text)
	schemaLoader := gojsonschema.NewStringLoader(wireSchema)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("plan is not well-formed JSON: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("plan does not match the wire shape: %s", result.Errors()[0].String())
	}

	var raw struct {
		PlanID             string   `json:"plan_id"`
		Intent             string   `json:"intent"`
		Steps              []Step   `json:"steps"`
		EvidenceReferenced []string `json:"evidence_referenced"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}

	intent, err := tools.ParseIntent(raw.Intent)
	if err != nil {
		return nil, &ErrUnknownIntent{Intent: raw.Intent}
	}

	p := &Plan{
		PlanID:             raw.PlanID,
		Intent:             intent,
		Steps:              raw.Steps,
		EvidenceReferenced: raw.EvidenceReferenced,
	}
	if p.PlanID == "" {
		p.PlanID = uuid.NewString()
	}
	for i := range p.Steps {
		if p.Steps[i].StepID == "" {
			p.Steps[i].StepID = fmt.Sprintf("step-%d", i+1)
		}
		if p.Steps[i].Arguments == nil {
			p.Steps[i].Arguments = map[string]string{}
		}
	}
	return p, nil
}

// Interpret is the lenient stage. Text that is not a well-formed plan
// degrades into a single display_text step with Intent EXPLAIN, so the
// loop always has something actionable to show. The one exception is a
// structurally valid plan with an unknown intent, which is rejected
// outright rather than silently reinterpreted.
func Interpret(text string) (*Plan, error) {
	p, err := Parse(text)
	if err == nil {
		return p, nil
	}
	var unknown *ErrUnknownIntent
	if errors.As(err, &unknown) {
		return nil, err
	}
	return DisplayFallback(text), nil
}

// DisplayFallback wraps arbitrary text in a one-step display plan.
func DisplayFallback(text string) *Plan {
	return &Plan{
		PlanID: uuid.NewString(),
		Intent: tools.IntentExplain,
		Steps: []Step{{
			StepID:    "step-1",
			Tool:      tools.DisplayTextTool,
			Arguments: map[string]string{"text": text},
		}},
	}
}
