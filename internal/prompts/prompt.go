// Package prompts manages the versioned system prompts the loop runs
// on, and the builder that composes them with per-session context.
package prompts

// Version identifies one revision of a prompt.
type Version string

const (
	V1 Version = "1.0.0"
	V2 Version = "2.0.0"
)

// Prompt is one versioned prompt with metadata.
type Prompt struct {
	ID          string
	Version     Version
	Content     string
	Description string
	Deprecated  bool
}
