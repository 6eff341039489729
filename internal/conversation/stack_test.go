package conversation

import (
	"strings"
	"testing"
)

func TestStackAppendsInOrder(t *testing.T) {
	s := NewStack()
	s.AddUser("fix the bug")
	s.AddAssistant("reading the file first")
	s.AddToolResult(ToolResult{Tool: "file_read", Success: true, Output: "package main", StepID: "step-1"})

	frames := s.Frames()
	if len(frames) != 3 {
		t.Fatalf("len = %d, want 3", len(frames))
	}
	if frames[0].Kind != KindUser || frames[1].Kind != KindAssistant || frames[2].Kind != KindToolResult {
		t.Errorf("frames out of order: %+v", frames)
	}
}

func TestStackLengthOnlyGrows(t *testing.T) {
	s := NewStack()
	prev := s.Len()
	for i := 0; i < 10; i++ {
		s.AddUser("msg")
		if s.Len() <= prev {
			t.Fatalf("length did not grow at append %d", i)
		}
		prev = s.Len()
	}
}

func TestFramesReturnsCopy(t *testing.T) {
	s := NewStack()
	s.AddUser("original")

	frames := s.Frames()
	frames[0].Text = "tampered"

	if s.Frames()[0].Text != "original" {
		t.Error("mutating the returned slice must not affect the stack")
	}
}

func TestMessagesMapToolResultsToUserRole(t *testing.T) {
	s := NewStack()
	s.AddUser("what changed?")
	s.AddAssistant("checking git")
	s.AddToolResult(ToolResult{Tool: "git_status", Success: true, Output: "modified: main.go"})
	s.AddToolResult(ToolResult{Tool: "git_diff", Success: false, Output: "not a git repository"})

	msgs := s.Messages()
	if len(msgs) != 4 {
		t.Fatalf("len = %d, want 4", len(msgs))
	}
	if msgs[2].Role != RoleUser {
		t.Errorf("tool result should map to user role, got %s", msgs[2].Role)
	}
	if !strings.Contains(msgs[2].Content, "git_status") || !strings.Contains(msgs[2].Content, "succeeded") {
		t.Errorf("tool result content missing detail: %q", msgs[2].Content)
	}
	if !strings.Contains(msgs[3].Content, "failed") {
		t.Errorf("failed result should say so: %q", msgs[3].Content)
	}
}
