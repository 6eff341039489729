package prompts

import (
	"strings"
	"testing"

	"github.com/oryxcli/oryx/internal/workspace"
)

func TestRegistryGetLatest(t *testing.T) {
	r := NewRegistry()
	r.Register(&Prompt{ID: "x", Version: V1, Content: "one"})
	r.Register(&Prompt{ID: "x", Version: V2, Content: "two", Deprecated: true})

	p, err := r.GetLatest("x")
	if err != nil {
		t.Fatal(err)
	}
	// Deprecated versions lose to older live ones.
	if p.Content != "one" {
		t.Errorf("content = %q, want the non-deprecated version", p.Content)
	}

	if _, err := r.GetLatest("missing"); err == nil {
		t.Error("expected error for unknown prompt")
	}
}

func TestAssistantPromptRegistered(t *testing.T) {
	p, err := DefaultRegistry().GetLatest("assistant")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p.Content, "TOOL_CALL:") {
		t.Error("assistant prompt must document the tool call format")
	}
	if !strings.Contains(p.Content, "display_text") {
		t.Error("assistant prompt must name the terminal tool")
	}
}

func TestBuilderComposition(t *testing.T) {
	r := NewRegistry()
	r.Register(&Prompt{ID: "base", Version: V1, Content: "You work on {{name}}."})

	b, err := NewBuilder(r, "base")
	if err != nil {
		t.Fatal(err)
	}
	got := b.
		SetVariable("name", "oryx").
		AddProjectContext(workspace.ProjectTypeGo).
		AddSessionSummary("We renamed the store package.").
		AddFragment("").
		Build()

	if !strings.Contains(got, "You work on oryx.") {
		t.Errorf("variable not substituted: %q", got)
	}
	if !strings.Contains(got, "go project") {
		t.Errorf("project context missing: %q", got)
	}
	if !strings.Contains(got, "renamed the store package") {
		t.Errorf("session summary missing: %q", got)
	}
	if strings.Contains(got, "\n\n\n\n") {
		t.Errorf("empty fragment leaked into output: %q", got)
	}
}

func TestBuilderUnknownPrompt(t *testing.T) {
	if _, err := NewBuilder(NewRegistry(), "nope"); err == nil {
		t.Error("expected error for unknown prompt id")
	}
}
