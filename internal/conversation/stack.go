// Package conversation holds the append-only frame stack: the ordered
// record of user messages, assistant messages, and tool results that is
// the sole source of truth for rebuilding the model's message history.
package conversation

import "fmt"

// Kind tags a frame variant.
type Kind string

const (
	KindUser       Kind = "user"
	KindAssistant  Kind = "assistant"
	KindToolResult Kind = "tool_result"
)

// ToolResult carries the outcome of one tool invocation.
type ToolResult struct {
	Tool    string
	Success bool
	Output  string
	StepID  string
}

// Frame is one entry in the conversation history.
type Frame struct {
	Kind   Kind
	Text   string      // user / assistant text
	Result *ToolResult // set when Kind == KindToolResult
}

// MessageRole is the role a frame maps to when building a model request.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a provider-agnostic chat message built from the stack.
type Message struct {
	Role    MessageRole
	Content string
}

// Stack is the append-only ordered frame sequence. There is no delete
// or reorder operation; length only grows within a session.
type Stack struct {
	frames []Frame
}

// NewStack returns an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// AddUser appends a user text frame.
func (s *Stack) AddUser(text string) {
	s.frames = append(s.frames, Frame{Kind: KindUser, Text: text})
}

// AddAssistant appends an assistant text frame.
func (s *Stack) AddAssistant(text string) {
	s.frames = append(s.frames, Frame{Kind: KindAssistant, Text: text})
}

// AddToolResult appends a tool result frame.
func (s *Stack) AddToolResult(r ToolResult) {
	s.frames = append(s.frames, Frame{Kind: KindToolResult, Result: &r})
}

// Len returns the number of frames.
func (s *Stack) Len() int { return len(s.frames) }

// Frames returns a copy of the frame sequence in order.
func (s *Stack) Frames() []Frame {
	out := make([]Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

// Messages replays the stack in order as model-facing messages. Tool
// result frames render as user-role context, so tool output is always
// visible to the model on the next turn without a separate memory
// subsystem.
func (s *Stack) Messages() []Message {
	msgs := make([]Message, 0, len(s.frames))
	for _, f := range s.frames {
		switch f.Kind {
		case KindUser:
			msgs = append(msgs, Message{Role: RoleUser, Content: f.Text})
		case KindAssistant:
			msgs = append(msgs, Message{Role: RoleAssistant, Content: f.Text})
		case KindToolResult:
			msgs = append(msgs, Message{Role: RoleUser, Content: renderToolResult(f.Result)})
		}
	}
	return msgs
}

func renderToolResult(r *ToolResult) string {
	status := "succeeded"
	if !r.Success {
		status = "failed"
	}
	return fmt.Sprintf("[tool %s %s]\n%s", r.Tool, status, r.Output)
}
