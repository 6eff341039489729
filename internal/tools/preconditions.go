package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Checker evaluates named preconditions against a step's arguments.
// Every check is a pure read: stat calls and string inspection only, no
// side effects. Error text is deterministic for identical input so that
// validation messages stay byte-identical across calls.
type Checker struct {
	Root string // workspace root; relative paths resolve against it
}

// NewChecker returns a Checker rooted at the given workspace path.
func NewChecker(root string) *Checker {
	return &Checker{Root: root}
}

func (c *Checker) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Root, path)
}

// Check evaluates one named precondition. A nil return means the
// precondition holds. Unknown precondition names fail closed.
func (c *Checker) Check(name string, args map[string]string) error {
	switch name {
	case PrecondFileExists:
		path := args["path"]
		if path == "" {
			return fmt.Errorf("precondition %q failed: no path argument", name)
		}
		info, err := os.Stat(c.resolve(path))
		if err != nil || info.IsDir() {
			return fmt.Errorf("precondition %q failed: %s is not an existing file", name, path)
		}
		return nil

	case PrecondParentDirExists:
		path := args["path"]
		if path == "" {
			return fmt.Errorf("precondition %q failed: no path argument", name)
		}
		dir := filepath.Dir(c.resolve(path))
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("precondition %q failed: parent directory of %s does not exist", name, path)
		}
		return nil

	case PrecondGitRepo:
		info, err := os.Stat(filepath.Join(c.Root, ".git"))
		if err != nil || !info.IsDir() {
			return fmt.Errorf("precondition %q failed: workspace is not a git repository", name)
		}
		return nil

	case PrecondNonEmptyPattern:
		if strings.TrimSpace(args["pattern"]) == "" {
			return fmt.Errorf("precondition %q failed: empty pattern", name)
		}
		return nil

	case PrecondNonEmptyCommand:
		if strings.TrimSpace(args["command"]) == "" {
			return fmt.Errorf("precondition %q failed: empty command", name)
		}
		return nil

	case PrecondNonEmptyQuery:
		if strings.TrimSpace(args["query"]) == "" {
			return fmt.Errorf("precondition %q failed: empty query", name)
		}
		return nil

	case PrecondWorkspaceExists:
		info, err := os.Stat(c.Root)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("precondition %q failed: workspace root %s does not exist", name, c.Root)
		}
		return nil

	default:
		return fmt.Errorf("unknown precondition: %q", name)
	}
}
