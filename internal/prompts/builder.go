package prompts

import (
	"fmt"
	"strings"

	"github.com/oryxcli/oryx/internal/workspace"
)

// Builder composes a registered prompt with per-session fragments and
// variable substitution.
type Builder struct {
	fragments []string
	variables map[string]string
}

// NewBuilder starts from the latest version of the named prompt.
func NewBuilder(registry *Registry, id string) (*Builder, error) {
	base, err := registry.GetLatest(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get base prompt: %w", err)
	}
	return &Builder{
		fragments: []string{base.Content},
		variables: make(map[string]string),
	}, nil
}

// AddFragment appends a fragment. Empty fragments are dropped.
func (b *Builder) AddFragment(text string) *Builder {
	if text != "" {
		b.fragments = append(b.fragments, text)
	}
	return b
}

// AddProjectContext appends a line describing the detected project
// type, when known.
func (b *Builder) AddProjectContext(typ workspace.ProjectType) *Builder {
	if typ != workspace.ProjectTypeUnknown {
		b.AddFragment(fmt.Sprintf("The workspace is a %s project.", typ))
	}
	return b
}

// AddSessionSummary appends the carry-over summary from a prior
// session.
func (b *Builder) AddSessionSummary(summary string) *Builder {
	if summary != "" {
		b.AddFragment("Context from a previous session:\n" + summary)
	}
	return b
}

// SetVariable sets a {{key}} substitution.
func (b *Builder) SetVariable(key, value string) *Builder {
	b.variables[key] = value
	return b
}

// Build joins the fragments and applies substitutions.
func (b *Builder) Build() string {
	result := strings.Join(b.fragments, "\n\n")
	for key, value := range b.variables {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}
