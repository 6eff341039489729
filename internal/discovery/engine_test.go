package discovery

import (
	"strings"
	"testing"

	"github.com/oryxcli/oryx/internal/tools"
)

func newEngine() *Engine {
	return NewEngine(tools.NewCatalog())
}

func TestCoreAlwaysPresent(t *testing.T) {
	e := newEngine()

	for _, query := range []string{"", "hello world", "check git status", "apply this patch"} {
		res := e.Discover(query, nil, nil)
		if len(res.Core) == 0 {
			t.Fatalf("query %q: core set must never be empty", query)
		}
		coreCount := len(e.Discover("", nil, nil).Core)
		if len(res.Core) != coreCount {
			t.Errorf("query %q: core set size changed (%d vs %d)", query, len(res.Core), coreCount)
		}
	}
}

// A generic query fires nothing: specialized is empty and the cost is
// exactly the core baseline.
func TestGenericQueryCostsCoreBaseline(t *testing.T) {
	e := newEngine()

	res := e.Discover("hello world", nil, nil)
	if len(res.Specialized) != 0 {
		t.Errorf("generic query should trigger nothing, got %v", res.Names())
	}
	if res.TokenCost != e.CoreBaseline() {
		t.Errorf("cost = %d, want core baseline %d", res.TokenCost, e.CoreBaseline())
	}
}

func TestKeywordTrigger(t *testing.T) {
	e := newEngine()

	res := e.Discover("check git status", nil, nil)
	if !includes(res, "git_status") {
		t.Errorf("'check git status' should surface git_status, got %v", res.Names())
	}
	if res.Reasons["git_status"] == "" {
		t.Error("included specialized tools should carry a reason")
	}
}

func TestKeywordTriggerIsCaseInsensitive(t *testing.T) {
	e := newEngine()
	if res := e.Discover("CHECK GIT STATUS", nil, nil); !includes(res, "git_status") {
		t.Errorf("keyword match must be case-insensitive, got %v", res.Names())
	}
}

func TestOutputTrigger(t *testing.T) {
	e := newEngine()

	res := e.Discover("continue", []string{"diff --git a/x b/x\n@@ -1 +1 @@"}, nil)
	if !includes(res, "splice_patch") {
		t.Errorf("diff output should surface splice_patch, got %v", res.Names())
	}
}

func TestRecentToolTrigger(t *testing.T) {
	e := newEngine()

	res := e.Discover("continue", nil, []string{"git_status"})
	if !includes(res, "git_diff") {
		t.Errorf("recent git_status should surface git_diff, got %v", res.Names())
	}
	if !includes(res, "git_log") {
		t.Errorf("recent git_status should surface git_log, got %v", res.Names())
	}
}

func TestTokenCostIsSumOfIncluded(t *testing.T) {
	e := newEngine()

	res := e.Discover("check git status", nil, nil)
	sum := 0
	for _, m := range res.Core {
		sum += m.TokenCost
	}
	for _, m := range res.Specialized {
		sum += m.TokenCost
	}
	if res.TokenCost != sum {
		t.Errorf("TokenCost = %d, want literal sum %d", res.TokenCost, sum)
	}
	if res.TokenCost <= e.CoreBaseline() {
		t.Error("triggered query should cost more than the baseline")
	}
}

func TestAllDiscoveredNamesAreWhitelisted(t *testing.T) {
	catalog := tools.NewCatalog()
	e := NewEngine(catalog)

	res := e.Discover("git status patch symbol references diagnostics remember line count audit",
		[]string{"diff --git", "error:", "modified:"},
		[]string{"git_status", "symbols_in_file", "bash_exec", "splice_plan", "file_edit"})

	for _, name := range res.Names() {
		if !catalog.Allowed(name) {
			t.Errorf("discovered tool %q is not on the whitelist", name)
		}
	}
}

func TestFormatPrompt(t *testing.T) {
	e := newEngine()
	res := e.Discover("check git status", nil, nil)

	prompt := FormatPrompt(res)
	if !strings.Contains(prompt, "### file_read") {
		t.Error("prompt should describe core tools")
	}
	if !strings.Contains(prompt, "### git_status") {
		t.Error("prompt should describe triggered specialized tools")
	}
	if !strings.Contains(prompt, "When to use:") || !strings.Contains(prompt, "When NOT to use:") {
		t.Error("prompt should carry usage guidance")
	}
	if !strings.Contains(prompt, "requires human approval") {
		t.Error("gated tools should carry a visible warning")
	}
}

func includes(r Result, name string) bool {
	for _, n := range r.Names() {
		if n == name {
			return true
		}
	}
	return false
}
