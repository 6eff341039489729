package loop

import "testing"

func TestParseToolCall(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantTool string
		wantArgs map[string]string
		wantOK   bool
	}{
		{
			name:     "single arg",
			response: "TOOL_CALL: tool: file_write args: path: a.txt",
			wantTool: "file_write",
			wantArgs: map[string]string{"path": "a.txt"},
			wantOK:   true,
		},
		{
			name:     "multiple args with spaces in values",
			response: "TOOL_CALL: tool: file_create args: path: notes.md content: hello world",
			wantTool: "file_create",
			wantArgs: map[string]string{"path": "notes.md", "content": "hello world"},
			wantOK:   true,
		},
		{
			// A value word ending in ':' always starts a new key; the
			// line format trades this away for needing no quoting.
			name:     "trailing-colon word in value starts a new key",
			response: "TOOL_CALL: tool: display_text args: text: reminder note: check the tests",
			wantTool: "display_text",
			wantArgs: map[string]string{"text": "reminder", "note": "check the tests"},
			wantOK:   true,
		},
		{
			name:     "surrounded by prose",
			response: "I'll check the status now.\nTOOL_CALL: tool: git_status args:\n\nThen we can proceed.",
			wantTool: "git_status",
			wantArgs: map[string]string{},
			wantOK:   true,
		},
		{
			name:     "no args section",
			response: "TOOL_CALL: tool: git_status",
			wantTool: "git_status",
			wantArgs: map[string]string{},
			wantOK:   true,
		},
		{
			name:     "plain text",
			response: "The file looks fine to me.",
			wantOK:   false,
		},
		{
			name:     "marker without tool",
			response: "TOOL_CALL: nothing useful",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, ok := ParseToolCall(tt.response)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if call.Tool != tt.wantTool {
				t.Errorf("tool = %q, want %q", call.Tool, tt.wantTool)
			}
			if len(call.Args) != len(tt.wantArgs) {
				t.Errorf("args = %v, want %v", call.Args, tt.wantArgs)
			}
			for k, v := range tt.wantArgs {
				if call.Args[k] != v {
					t.Errorf("args[%q] = %q, want %q", k, call.Args[k], v)
				}
			}
		})
	}
}
