package tools

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCatalogInvariants(t *testing.T) {
	c := NewCatalog()

	allowed := c.AllowedTools()
	if len(allowed) != 20 {
		t.Fatalf("whitelist should have 20 entries, got %d", len(allowed))
	}

	for _, name := range allowed {
		m, ok := c.Lookup(name)
		if !ok {
			t.Fatalf("whitelisted tool %q missing from catalog", name)
		}
		if m.Category == CategoryInternal {
			t.Errorf("internal tool %q leaked into the whitelist", name)
		}
		if m.Category == CategoryCore && len(m.Examples) == 0 {
			t.Errorf("core tool %q has no examples", name)
		}
		if name != DisplayTextTool && len(m.Preconditions) == 0 {
			t.Errorf("tool %q has no preconditions", name)
		}
		if m.TokenCost <= 0 {
			t.Errorf("tool %q has non-positive token cost", name)
		}
	}

	if len(c.PreconditionsFor(DisplayTextTool)) != 0 {
		t.Errorf("display_text should have no preconditions")
	}
}

func TestInternalNamesNotAllowed(t *testing.T) {
	c := NewCatalog()

	for _, name := range []string{NameApprovalGranted, NameApprovalDenied} {
		if c.Allowed(name) {
			t.Errorf("internal name %q must not be allowed", name)
		}
		if _, ok := c.Lookup(name); !ok {
			t.Errorf("internal name %q should still be resolvable for logging", name)
		}
	}
}

func TestForIntent(t *testing.T) {
	c := NewCatalog()

	tests := []struct {
		intent  Intent
		include string
		exclude string
	}{
		{IntentRead, "file_read", "file_write"},
		{IntentMutate, "file_write", "git_log"},
		{IntentQuery, "git_status", "file_create"},
		{IntentExplain, "display_text", "file_edit"},
	}

	for _, tt := range tests {
		names := c.ForIntent(tt.intent)
		set := make(map[string]bool, len(names))
		for _, n := range names {
			set[n] = true
		}
		if !set[tt.include] {
			t.Errorf("intent %s should offer %s, got %v", tt.intent, tt.include, names)
		}
		if set[tt.exclude] {
			t.Errorf("intent %s should not offer %s", tt.intent, tt.exclude)
		}
	}
}

func TestIsGated(t *testing.T) {
	c := NewCatalog()

	gated := []string{"file_write", "file_create", "file_edit", "splice_patch", "bash_exec"}
	for _, name := range gated {
		if !c.IsGated(name) {
			t.Errorf("%s should be gated", name)
		}
	}
	auto := []string{"file_read", "git_status", "display_text", "memory_query"}
	for _, name := range auto {
		if c.IsGated(name) {
			t.Errorf("%s should be auto", name)
		}
	}
	if !c.IsGated("no_such_tool") {
		t.Error("unknown tools must fail closed as gated")
	}
}

func TestParseIntent(t *testing.T) {
	for _, s := range []string{"READ", "MUTATE", "QUERY", "EXPLAIN"} {
		if _, err := ParseIntent(s); err != nil {
			t.Errorf("ParseIntent(%q) unexpected error: %v", s, err)
		}
	}
	if _, err := ParseIntent("DELETE"); err == nil {
		t.Error("ParseIntent should reject unknown intents")
	}
}

func TestCheckerFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewChecker(dir)

	if err := c.Check(PrecondFileExists, map[string]string{"path": "a.txt"}); err != nil {
		t.Errorf("existing file should pass: %v", err)
	}
	if err := c.Check(PrecondFileExists, map[string]string{"path": "missing.txt"}); err == nil {
		t.Error("missing file should fail")
	}
	if err := c.Check(PrecondFileExists, map[string]string{}); err == nil {
		t.Error("missing path argument should fail")
	}
}

func TestCheckerDeterministicError(t *testing.T) {
	c := NewChecker(t.TempDir())
	args := map[string]string{"path": "nope.txt"}

	first := c.Check(PrecondFileExists, args)
	second := c.Check(PrecondFileExists, args)
	if first == nil || second == nil {
		t.Fatal("expected both checks to fail")
	}
	if first.Error() != second.Error() {
		t.Errorf("error text must be identical: %q vs %q", first.Error(), second.Error())
	}
}

func TestCheckerGitRepo(t *testing.T) {
	dir := t.TempDir()
	c := NewChecker(dir)

	if err := c.Check(PrecondGitRepo, nil); err == nil {
		t.Error("non-repo workspace should fail")
	}
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := c.Check(PrecondGitRepo, nil); err != nil {
		t.Errorf("repo workspace should pass: %v", err)
	}
}

func TestCheckerUnknownPrecondition(t *testing.T) {
	c := NewChecker(t.TempDir())
	if err := c.Check("phase of the moon", nil); err == nil {
		t.Error("unknown preconditions must fail closed")
	}
}
