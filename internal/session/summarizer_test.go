package session

import (
	"context"
	"strings"
	"testing"

	"github.com/oryxcli/oryx/internal/conversation"
)

// mockModel returns a canned response and captures the last prompt.
type mockModel struct {
	response string
	lastMsgs []conversation.Message
}

func (m *mockModel) Complete(_ context.Context, _ string, msgs []conversation.Message) (string, error) {
	m.lastMsgs = msgs
	return m.response, nil
}

func TestGenerateTitle(t *testing.T) {
	mock := &mockModel{response: "Refactoring Auth Logic"}
	summarizer := NewSummarizer(mock)

	frames := []StoredFrame{
		{Kind: conversation.KindUser, Text: "I need to fix the login bug"},
	}

	title, err := summarizer.GenerateTitle(context.Background(), frames)
	if err != nil {
		t.Fatalf("GenerateTitle failed: %v", err)
	}
	if title != "Refactoring Auth Logic" {
		t.Errorf("title = %q", title)
	}
}

func TestGenerateTitleEmptyHistory(t *testing.T) {
	summarizer := NewSummarizer(&mockModel{})
	title, err := summarizer.GenerateTitle(context.Background(), nil)
	if err != nil {
		t.Fatalf("GenerateTitle failed: %v", err)
	}
	if title != "New Session" {
		t.Errorf("title = %q, want New Session", title)
	}
}

func TestGenerateSummaryIncludesToolOutcome(t *testing.T) {
	mock := &mockModel{response: "User fixed the login bug by updating token validation."}
	summarizer := NewSummarizer(mock)

	frames := []StoredFrame{
		{Kind: conversation.KindUser, Text: "fix the login bug"},
		{Kind: conversation.KindToolResult, Tool: "bash_exec", Success: false, Output: "test failed"},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), frames)
	if err != nil {
		t.Fatalf("GenerateSummary failed: %v", err)
	}
	if summary != "User fixed the login bug by updating token validation." {
		t.Errorf("summary = %q", summary)
	}

	// The prompt must show the failed tool, or the summary can't carry it.
	if len(mock.lastMsgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(mock.lastMsgs))
	}
	prompt := mock.lastMsgs[0].Content
	if !strings.Contains(prompt, "bash_exec") || !strings.Contains(prompt, "failed") {
		t.Errorf("prompt missing tool outcome: %q", prompt)
	}
}
