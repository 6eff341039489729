package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/oryxcli/oryx/internal/conversation"
	"github.com/oryxcli/oryx/internal/loop"
)

// Summarizer produces session titles and carry-over summaries using the
// same model client the loop runs on.
type Summarizer struct {
	model loop.ModelClient
}

// NewSummarizer wraps a model client.
func NewSummarizer(model loop.ModelClient) *Summarizer {
	return &Summarizer{model: model}
}

// GenerateTitle produces a short title from the opening of the session.
func (s *Summarizer) GenerateTitle(ctx context.Context, frames []StoredFrame) (string, error) {
	if len(frames) == 0 {
		return "New Session", nil
	}

	system := "Generate a short, concise title (3-5 words) for this session based on the user's intent and work done. Do not use quotes or punctuation."

	// The opening frames carry the intent; the rest is noise for a title.
	limit := 10
	if len(frames) < limit {
		limit = len(frames)
	}
	prompt := fmt.Sprintf("History:\n%s\n\nGenerate Title:", renderFrames(frames[:limit]))

	resp, err := s.model.Complete(ctx, system, []conversation.Message{
		{Role: conversation.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate title: %w", err)
	}
	return strings.TrimSpace(resp), nil
}

// GenerateSummary produces the context summary injected into the next
// session for this workspace.
func (s *Summarizer) GenerateSummary(ctx context.Context, frames []StoredFrame) (string, error) {
	if len(frames) == 0 {
		return "", nil
	}

	system := "You represent the memory of a coding assistant. Summarize the following session history to preserve context for a future session. Focus on: decisions made, files modified, unresolved errors, and next steps. Be concise."
	prompt := fmt.Sprintf("Summarize this session:\n\n%s", renderFrames(frames))

	resp, err := s.model.Complete(ctx, system, []conversation.Message{
		{Role: conversation.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}
	return strings.TrimSpace(resp), nil
}

// renderFrames flattens frames to plain text for summarization prompts.
// Long tool output is truncated; the summary needs the shape, not the
// bytes.
func renderFrames(frames []StoredFrame) string {
	var b strings.Builder
	for _, f := range frames {
		switch f.Kind {
		case conversation.KindUser:
			fmt.Fprintf(&b, "user: %s\n", f.Text)
		case conversation.KindAssistant:
			fmt.Fprintf(&b, "assistant: %s\n", f.Text)
		case conversation.KindToolResult:
			out := f.Output
			if len(out) > 400 {
				out = out[:400] + "..."
			}
			status := "ok"
			if !f.Success {
				status = "failed"
			}
			fmt.Fprintf(&b, "tool %s (%s): %s\n", f.Tool, status, out)
		}
	}
	return b.String()
}
