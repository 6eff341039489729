package tools

// Named preconditions. Each is a pure read evaluated by Checker; the
// names are part of the plan wire format, so they are stable strings.
const (
	PrecondFileExists      = "file exists"
	PrecondParentDirExists = "parent directory exists"
	PrecondGitRepo         = "workspace is a git repository"
	PrecondNonEmptyPattern = "pattern is non-empty"
	PrecondNonEmptyCommand = "command is non-empty"
	PrecondNonEmptyQuery   = "query is non-empty"
	PrecondWorkspaceExists = "workspace root exists"
)

// catalogEntries returns the fixed catalog tables. The whitelist order
// here is the order tools are rendered to the model.
func catalogEntries() []Metadata {
	return []Metadata{
		// --- Core set: always described to the model ---
		{
			Name:          "file_read",
			Category:      CategoryCore,
			Description:   "Read the contents of a file in the workspace.",
			Examples:      []string{"Inspect a source file before editing it", "Show the user what a config file contains"},
			NotExamples:   []string{"Searching for a string across many files (use file_search)"},
			TokenCost:     80,
			RequiredArgs:  []string{"path"},
			Preconditions: []string{PrecondFileExists},
			Intents:       []Intent{IntentRead, IntentExplain},
		},
		{
			Name:          "file_write",
			Category:      CategoryCore,
			Description:   "Overwrite a file with new contents.",
			Examples:      []string{"Replace a file wholesale after a rewrite"},
			NotExamples:   []string{"Small in-place changes (use file_edit)"},
			TokenCost:     90,
			Gated:         true,
			RequiredArgs:  []string{"path", "content"},
			Preconditions: []string{PrecondParentDirExists},
			Intents:       []Intent{IntentMutate},
		},
		{
			Name:          "file_create",
			Category:      CategoryCore,
			Description:   "Create a new file with the given contents.",
			Examples:      []string{"Add a new source file or test file"},
			NotExamples:   []string{"Modifying an existing file (use file_edit or file_write)"},
			TokenCost:     80,
			Gated:         true,
			RequiredArgs:  []string{"path", "content"},
			Preconditions: []string{PrecondParentDirExists},
			Intents:       []Intent{IntentMutate},
		},
		{
			Name:          "file_search",
			Category:      CategoryCore,
			Description:   "Search file contents for a pattern.",
			Examples:      []string{"Find every place a function is called by name"},
			NotExamples:   []string{"Locating files by filename (use file_glob)"},
			TokenCost:     70,
			RequiredArgs:  []string{"pattern"},
			Preconditions: []string{PrecondNonEmptyPattern},
			Intents:       []Intent{IntentRead, IntentQuery},
		},
		{
			Name:          "file_glob",
			Category:      CategoryCore,
			Description:   "List files matching a glob pattern.",
			Examples:      []string{"Enumerate all *_test.go files in a package"},
			NotExamples:   []string{"Searching inside file contents (use file_search)"},
			TokenCost:     60,
			RequiredArgs:  []string{"pattern"},
			Preconditions: []string{PrecondNonEmptyPattern},
			Intents:       []Intent{IntentRead, IntentQuery},
		},
		{
			Name:          "file_edit",
			Category:      CategoryCore,
			Description:   "Replace an exact text span inside an existing file.",
			Examples:      []string{"Rename a variable within one file", "Fix a single incorrect line"},
			NotExamples:   []string{"Creating files (use file_create)"},
			TokenCost:     100,
			Gated:         true,
			RequiredArgs:  []string{"path", "old", "new"},
			Preconditions: []string{PrecondFileExists},
			Intents:       []Intent{IntentMutate},
		},
		{
			Name:          "bash_exec",
			Category:      CategoryCore,
			Description:   "Run a shell command in the workspace.",
			Examples:      []string{"Run the project's test suite", "Invoke a build"},
			NotExamples:   []string{"Reading files (use file_read, it is cheaper and safer)"},
			TokenCost:     110,
			Gated:         true,
			RequiredArgs:  []string{"command"},
			Preconditions: []string{PrecondNonEmptyCommand},
			Intents:       []Intent{IntentMutate, IntentQuery},
		},
		{
			Name:         "display_text",
			Category:     CategoryCore,
			Description:  "Render text directly to the user. Fallback step for plain answers.",
			Examples:     []string{"Answer a question that needs no tool at all"},
			NotExamples:  []string{"Anything that touches the filesystem"},
			TokenCost:    30,
			RequiredArgs: []string{"text"},
			Intents:      []Intent{IntentExplain, IntentRead, IntentMutate, IntentQuery},
		},

		// --- Specialized set: surfaced by discovery triggers ---
		{
			Name:           "splice_patch",
			Category:       CategorySpecialized,
			Description:    "Apply a unified diff to the workspace.",
			Examples:       []string{"Apply a patch the user pasted in"},
			NotExamples:    []string{"Freehand edits (use file_edit)"},
			TokenCost:      90,
			Gated:          true,
			RequiredArgs:   []string{"path", "patch"},
			Preconditions:  []string{PrecondFileExists},
			Intents:        []Intent{IntentMutate},
			Keywords:       []string{"patch", "apply diff", "unified diff"},
			OutputTriggers: []string{"diff --git", "@@ -"},
			AfterTools:     []string{"splice_plan"},
		},
		{
			Name:          "splice_plan",
			Category:      CategorySpecialized,
			Description:   "Produce a patch plan for a multi-hunk change without applying it.",
			Examples:      []string{"Stage a risky refactor as a reviewable patch first"},
			NotExamples:   []string{"Single-line fixes"},
			TokenCost:     70,
			RequiredArgs:  []string{"path", "instructions"},
			Preconditions: []string{PrecondFileExists},
			Intents:       []Intent{IntentMutate, IntentExplain},
			Keywords:      []string{"patch plan", "stage a patch", "propose a diff"},
		},
		{
			Name:          "symbols_in_file",
			Category:      CategorySpecialized,
			Description:   "List the symbols defined in a file.",
			Examples:      []string{"Get an overview of a large module before editing"},
			NotExamples:   []string{"Full-text search (use file_search)"},
			TokenCost:     60,
			RequiredArgs:  []string{"path"},
			Preconditions: []string{PrecondFileExists},
			Intents:       []Intent{IntentRead, IntentQuery},
			Keywords:      []string{"symbol", "functions in", "classes in", "what's defined"},
		},
		{
			Name:          "references_to_symbol_name",
			Category:      CategorySpecialized,
			Description:   "Find references to a symbol across the workspace.",
			Examples:      []string{"Check every caller before changing a signature"},
			NotExamples:   []string{"Text that merely looks like the symbol (comments, strings)"},
			TokenCost:     70,
			RequiredArgs:  []string{"symbol"},
			Preconditions: []string{PrecondWorkspaceExists},
			Intents:       []Intent{IntentRead, IntentQuery},
			Keywords:      []string{"references", "callers", "usages", "who calls"},
			AfterTools:    []string{"symbols_in_file"},
		},
		{
			Name:          "references_from_file_to_symbol_name",
			Category:      CategorySpecialized,
			Description:   "Find references from one file to a named symbol.",
			Examples:      []string{"Check how a module uses a dependency before swapping it"},
			NotExamples:   []string{"Workspace-wide reference queries (use references_to_symbol_name)"},
			TokenCost:     70,
			RequiredArgs:  []string{"path", "symbol"},
			Preconditions: []string{PrecondFileExists},
			Intents:       []Intent{IntentRead, IntentQuery},
			Keywords:      []string{"references from", "uses of"},
			AfterTools:    []string{"symbols_in_file"},
		},
		{
			Name:           "lsp_check",
			Category:       CategorySpecialized,
			Description:    "Run language-server diagnostics on a file.",
			Examples:       []string{"Verify a file still type-checks after edits"},
			NotExamples:    []string{"Style nits better left to a formatter"},
			TokenCost:      80,
			RequiredArgs:   []string{"path"},
			Preconditions:  []string{PrecondFileExists},
			Intents:        []Intent{IntentQuery},
			Keywords:       []string{"diagnostics", "type error", "compile error", "lsp"},
			OutputTriggers: []string{"error:", "undefined:"},
			AfterTools:     []string{"file_edit", "splice_patch"},
		},
		{
			Name:          "git_status",
			Category:      CategorySpecialized,
			Description:   "Show the git working tree status.",
			Examples:      []string{"See what is modified before committing"},
			NotExamples:   []string{"Inspecting the content of changes (use git_diff)"},
			TokenCost:     50,
			Preconditions: []string{PrecondGitRepo},
			Intents:       []Intent{IntentRead, IntentQuery},
			Keywords:      []string{"git status", "working tree", "uncommitted", "staged"},
		},
		{
			Name:           "git_diff",
			Category:       CategorySpecialized,
			Description:    "Show pending changes as a diff.",
			Examples:       []string{"Review edits before asking the user to commit"},
			NotExamples:    []string{"Listing which files changed (use git_status)"},
			TokenCost:      60,
			Preconditions:  []string{PrecondGitRepo},
			Intents:        []Intent{IntentRead, IntentQuery},
			Keywords:       []string{"git diff", "what changed", "show changes"},
			OutputTriggers: []string{"modified:", "new file:"},
			AfterTools:     []string{"git_status"},
		},
		{
			Name:          "git_log",
			Category:      CategorySpecialized,
			Description:   "Show recent commit history.",
			Examples:      []string{"Find the commit that introduced a function"},
			NotExamples:   []string{"Current uncommitted state (use git_status)"},
			TokenCost:     50,
			Preconditions: []string{PrecondGitRepo},
			Intents:       []Intent{IntentRead, IntentQuery},
			Keywords:      []string{"git log", "commit history", "recent commits", "blame"},
			AfterTools:    []string{"git_status"},
		},
		{
			Name:          "wc",
			Category:      CategorySpecialized,
			Description:   "Count lines, words, and bytes in a file.",
			Examples:      []string{"Estimate the size of a file before reading it whole"},
			NotExamples:   []string{"Counting matches of a pattern (use file_search)"},
			TokenCost:     40,
			RequiredArgs:  []string{"path"},
			Preconditions: []string{PrecondFileExists},
			Intents:       []Intent{IntentQuery},
			Keywords:      []string{"line count", "how many lines", "word count", "file size"},
		},
		{
			Name:          "memory_query",
			Category:      CategorySpecialized,
			Description:   "Search prior conversation frames and tool output.",
			Examples:      []string{"Recall what a tool reported earlier this session"},
			NotExamples:   []string{"Facts available in the current frame stack"},
			TokenCost:     60,
			RequiredArgs:  []string{"query"},
			Preconditions: []string{PrecondNonEmptyQuery},
			Intents:       []Intent{IntentQuery, IntentExplain},
			Keywords:      []string{"remember", "earlier", "previous session", "you said"},
		},
		{
			Name:          "execution_summary",
			Category:      CategorySpecialized,
			Description:   "Summarize the recorded tool executions for this session.",
			Examples:      []string{"Report what has been run and how long it took"},
			NotExamples:   []string{"Details of a single run (query the log instead)"},
			TokenCost:     50,
			Preconditions: []string{PrecondWorkspaceExists},
			Intents:       []Intent{IntentQuery, IntentExplain},
			Keywords:      []string{"what did you run", "execution summary", "audit"},
			AfterTools:    []string{"bash_exec"},
		},

		// --- Internal names: audit log vocabulary, never exposed ---
		{
			Name:        NameApprovalGranted,
			Category:    CategoryInternal,
			Description: "Audit marker: a gated tool was approved.",
		},
		{
			Name:        NameApprovalDenied,
			Category:    CategoryInternal,
			Description: "Audit marker: a gated tool was denied.",
		},
	}
}
