package plan

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oryxcli/oryx/internal/tools"
)

func TestParseWellFormed(t *testing.T) {
	text := `{
		"plan_id": "p1",
		"intent": "READ",
		"steps": [
			{"step_id": "step-1", "tool": "file_read", "arguments": {"path": "main.go"}, "precondition": "file exists"}
		],
		"evidence_referenced": ["main.go"]
	}`

	p, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Intent != tools.IntentRead {
		t.Errorf("intent = %s, want READ", p.Intent)
	}
	if len(p.Steps) != 1 || p.Steps[0].Tool != "file_read" {
		t.Errorf("unexpected steps: %+v", p.Steps)
	}
	if p.Steps[0].Arguments["path"] != "main.go" {
		t.Errorf("arguments not decoded: %+v", p.Steps[0].Arguments)
	}
}

func TestParseUnknownIntent(t *testing.T) {
	text := `{"intent": "DELETE", "steps": []}`

	_, err := Parse(text)
	var unknown *ErrUnknownIntent
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownIntent, got %v", err)
	}
	if unknown.Intent != "DELETE" {
		t.Errorf("Intent = %q, want DELETE", unknown.Intent)
	}
}

func TestInterpretMalformedFallsBack(t *testing.T) {
	p, err := Interpret("just some prose, not a plan")
	if err != nil {
		t.Fatalf("Interpret must not fail on prose: %v", err)
	}
	if p.Intent != tools.IntentExplain {
		t.Errorf("fallback intent = %s, want EXPLAIN", p.Intent)
	}
	if len(p.Steps) != 1 || p.Steps[0].Tool != tools.DisplayTextTool {
		t.Fatalf("fallback should be a single display_text step, got %+v", p.Steps)
	}
	if p.Steps[0].Arguments["text"] != "just some prose, not a plan" {
		t.Errorf("fallback should carry the original text")
	}
}

func TestInterpretUnknownIntentStillRejects(t *testing.T) {
	if _, err := Interpret(`{"intent": "NOPE", "steps": []}`); err == nil {
		t.Error("unknown intent must be a hard rejection, not a fallback")
	}
}

func TestParseFillsDefaults(t *testing.T) {
	p, err := Parse(`{"intent": "QUERY", "steps": [{"tool": "git_status"}]}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.PlanID == "" {
		t.Error("plan_id should be generated when absent")
	}
	if p.Steps[0].StepID != "step-1" {
		t.Errorf("step_id default = %q, want step-1", p.Steps[0].StepID)
	}
	if p.Steps[0].Arguments == nil {
		t.Error("arguments map should never be nil")
	}
}

func newValidationEnv(t *testing.T) (*tools.Catalog, *tools.Checker, string) {
	t.Helper()
	dir := t.TempDir()
	return tools.NewCatalog(), tools.NewChecker(dir), dir
}

func TestValidateUnknownTool(t *testing.T) {
	catalog, checker, _ := newValidationEnv(t)

	p := &Plan{
		PlanID: "p1",
		Intent: tools.IntentRead,
		Steps:  []Step{{StepID: "step-1", Tool: "teleport", Arguments: map[string]string{}}},
	}

	err := Validate(p, catalog, checker)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// Scenario: a MUTATE plan invoking file_read with no arguments must be
// rejected for the missing path.
func TestValidateMissingRequiredArgument(t *testing.T) {
	catalog, checker, _ := newValidationEnv(t)

	p := &Plan{
		PlanID: "p1",
		Intent: tools.IntentMutate,
		Steps: []Step{{
			StepID:       "step-1",
			Tool:         "file_read",
			Arguments:    map[string]string{},
			Precondition: "file exists",
		}},
	}

	err := Validate(p, catalog, checker)
	if err == nil {
		t.Fatal("expected rejection for missing path argument")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	want := "plan p1 rejected: step step-1 (file_read) is missing required argument(s): path"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestValidateFailedPrecondition(t *testing.T) {
	catalog, checker, _ := newValidationEnv(t)

	p := &Plan{
		PlanID: "p1",
		Intent: tools.IntentRead,
		Steps: []Step{{
			StepID:    "step-1",
			Tool:      "file_read",
			Arguments: map[string]string{"path": "ghost.go"},
		}},
	}

	if err := Validate(p, catalog, checker); err == nil {
		t.Error("expected rejection for nonexistent file")
	}
}

func TestValidateRejectionIsDeterministic(t *testing.T) {
	catalog, checker, _ := newValidationEnv(t)

	p := &Plan{
		PlanID: "p1",
		Intent: tools.IntentRead,
		Steps: []Step{{
			StepID:    "step-1",
			Tool:      "file_read",
			Arguments: map[string]string{"path": "ghost.go"},
		}},
	}

	first := Validate(p, catalog, checker)
	second := Validate(p, catalog, checker)
	if first == nil || second == nil {
		t.Fatal("expected both calls to reject")
	}
	if first.Error() != second.Error() {
		t.Errorf("rejection must be byte-identical: %q vs %q", first.Error(), second.Error())
	}
}

func TestValidateAcceptsValidPlan(t *testing.T) {
	catalog, checker, dir := newValidationEnv(t)
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0644); err != nil {
		t.Fatal(err)
	}

	p := &Plan{
		PlanID: "p1",
		Intent: tools.IntentRead,
		Steps: []Step{
			{StepID: "step-1", Tool: "file_read", Arguments: map[string]string{"path": "main.go"}},
			{StepID: "step-2", Tool: "display_text", Arguments: map[string]string{"text": "done"}},
		},
	}

	if err := Validate(p, catalog, checker); err != nil {
		t.Errorf("valid plan rejected: %v", err)
	}
}

func TestValidateHasNoSideEffects(t *testing.T) {
	catalog, checker, dir := newValidationEnv(t)

	p := &Plan{
		PlanID: "p1",
		Intent: tools.IntentMutate,
		Steps: []Step{{
			StepID:    "step-1",
			Tool:      "file_write",
			Arguments: map[string]string{"path": "out.txt", "content": "data"},
		}},
	}

	if err := Validate(p, catalog, checker); err != nil {
		t.Fatalf("plan should validate (parent dir exists): %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.txt")); !os.IsNotExist(err) {
		t.Error("validation must not create the file")
	}
}

// Screen judges only whitelist membership and preconditions, so a step
// missing a required argument passes Screen but fails Validate. The
// loop relies on this to pause on gated calls before their arguments
// are checked.
func TestScreenSkipsArgumentCheck(t *testing.T) {
	catalog, checker, _ := newValidationEnv(t)

	p := &Plan{
		PlanID: "p1",
		Intent: tools.IntentMutate,
		Steps: []Step{{
			StepID:    "step-1",
			Tool:      "file_write",
			Arguments: map[string]string{"path": "a.txt"},
		}},
	}

	if err := Screen(p, catalog, checker); err != nil {
		t.Fatalf("Screen rejected a whitelisted step with sound preconditions: %v", err)
	}

	err := Validate(p, catalog, checker)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate should reject the incomplete step, got %v", err)
	}
	if !strings.Contains(verr.Message, "missing required argument(s): content") {
		t.Errorf("message = %q", verr.Message)
	}
}

func TestScreenRejectsUnknownTool(t *testing.T) {
	catalog, checker, _ := newValidationEnv(t)

	p := &Plan{
		PlanID: "p1",
		Intent: tools.IntentQuery,
		Steps:  []Step{{StepID: "step-1", Tool: "teleport"}},
	}

	err := Screen(p, catalog, checker)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Message, "teleport") {
		t.Errorf("message = %q", verr.Message)
	}
}
