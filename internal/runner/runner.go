// Package runner executes the OS-backed tools of the catalog: file
// access, search, editing, patching, shell commands, and git queries.
// Each handler is a deterministic wrapper; all policy (whitelisting,
// gating, preconditions, timeouts) lives with the caller.
package runner

import (
	"context"
	"fmt"
	"time"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/oryxcli/oryx/internal/workspace"
)

// cmdTimeout bounds every shelled-out command; the loop applies its own
// deadline on top.
const cmdTimeout = 2 * time.Minute

type handler func(ctx context.Context, r *Runner, args map[string]string) (string, error)

// Runner dispatches tool invocations against one workspace root.
type Runner struct {
	root     string
	ignore   gitignore.IgnoreParser
	handlers map[string]handler
}

// New builds a runner rooted at the workspace.
func New(root string) *Runner {
	r := &Runner{
		root:   root,
		ignore: workspace.NewIgnoreMatcher(root),
	}
	r.handlers = map[string]handler{
		"file_read":                           fileRead,
		"file_write":                          fileWrite,
		"file_create":                         fileCreate,
		"file_edit":                           fileEdit,
		"file_search":                         fileSearch,
		"file_glob":                           fileGlob,
		"wc":                                  wordCount,
		"bash_exec":                           bashExec,
		"git_status":                          gitStatus,
		"git_diff":                            gitDiff,
		"git_log":                             gitLog,
		"splice_patch":                        splicePatch,
		"splice_plan":                         splicePlan,
		"symbols_in_file":                     symbolsInFile,
		"references_to_symbol_name":           referencesToSymbol,
		"references_from_file_to_symbol_name": referencesFromFile,
		"lsp_check":                           lspCheck,
	}
	return r
}

// Run executes one tool invocation.
func (r *Runner) Run(ctx context.Context, tool string, args map[string]string) (string, error) {
	h, ok := r.handlers[tool]
	if !ok {
		return "", fmt.Errorf("no executor for tool %q", tool)
	}
	return h(ctx, r, args)
}
