// Package session persists chat sessions per workspace so a later run
// can resume or recall earlier work. Approval decisions are never
// persisted; only the frame history and its summaries are.
package session

import (
	"time"

	"github.com/oryxcli/oryx/internal/conversation"
)

// StoredFrame is the serialized form of one conversation frame.
type StoredFrame struct {
	Kind    conversation.Kind `json:"kind"`
	Text    string            `json:"text,omitempty"`
	Tool    string            `json:"tool,omitempty"`
	Success bool              `json:"success,omitempty"`
	Output  string            `json:"output,omitempty"`
	StepID  string            `json:"step_id,omitempty"`
}

// Session is one persisted chat session.
type Session struct {
	ID            string        `json:"id"`
	WorkspacePath string        `json:"workspace_path"`
	WorkspaceHash string        `json:"workspace_hash"`
	Title         string        `json:"title"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Frames        []StoredFrame `json:"frames"`
	Summary       string        `json:"summary,omitempty"` // context carried into the next session
}

// Meta is the listing view of a session, without its frames.
type Meta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Summary   string    `json:"summary,omitempty"`
}

// FromFrames converts live conversation frames to their stored form.
func FromFrames(frames []conversation.Frame) []StoredFrame {
	out := make([]StoredFrame, 0, len(frames))
	for _, f := range frames {
		sf := StoredFrame{Kind: f.Kind, Text: f.Text}
		if f.Result != nil {
			sf.Tool = f.Result.Tool
			sf.Success = f.Result.Success
			sf.Output = f.Result.Output
			sf.StepID = f.Result.StepID
		}
		out = append(out, sf)
	}
	return out
}

// ToFrames rebuilds live frames from their stored form.
func ToFrames(stored []StoredFrame) []conversation.Frame {
	out := make([]conversation.Frame, 0, len(stored))
	for _, sf := range stored {
		f := conversation.Frame{Kind: sf.Kind, Text: sf.Text}
		if sf.Kind == conversation.KindToolResult {
			f.Result = &conversation.ToolResult{
				Tool:    sf.Tool,
				Success: sf.Success,
				Output:  sf.Output,
				StepID:  sf.StepID,
			}
		}
		out = append(out, f)
	}
	return out
}
