package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxReadBytes caps file_read output so one huge file cannot swamp the
// model's context.
const maxReadBytes = 256 * 1024

// resolve joins a repo-relative path with the root, rejecting escapes.
func (r *Runner) resolve(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("path is empty")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %s is absolute, must be relative to the workspace root", rel)
	}
	full := filepath.Join(r.root, rel)
	cleanRoot := filepath.Clean(r.root) + string(filepath.Separator)
	if !strings.HasPrefix(full, cleanRoot) && full != filepath.Clean(r.root) {
		return "", fmt.Errorf("path %s escapes the workspace root", rel)
	}
	return full, nil
}

func fileRead(_ context.Context, r *Runner, args map[string]string) (string, error) {
	full, err := r.resolve(args["path"])
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > maxReadBytes {
		return string(data[:maxReadBytes]) + "\n... (truncated)", nil
	}
	return string(data), nil
}

func fileWrite(_ context.Context, r *Runner, args map[string]string) (string, error) {
	full, err := r.resolve(args["path"])
	if err != nil {
		return "", err
	}
	content := args["content"]
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(content), args["path"]), nil
}

func fileCreate(_ context.Context, r *Runner, args map[string]string) (string, error) {
	full, err := r.resolve(args["path"])
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err == nil {
		return "", fmt.Errorf("file %s already exists, use file_write or file_edit", args["path"])
	}
	content := args["content"]
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	return fmt.Sprintf("created %s (%d bytes)", args["path"], len(content)), nil
}

// fileEdit replaces an exact span. The match must be unique so the
// model cannot silently edit the wrong site.
func fileEdit(_ context.Context, r *Runner, args map[string]string) (string, error) {
	full, err := r.resolve(args["path"])
	if err != nil {
		return "", err
	}
	oldStr, newStr := args["old"], args["new"]
	if oldStr == newStr {
		return "", fmt.Errorf("old and new are identical, nothing to change")
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	content := string(data)

	count := strings.Count(content, oldStr)
	switch {
	case count == 0:
		hint := ""
		if strings.Contains(collapseSpace(content), collapseSpace(oldStr)) {
			hint = "; the text exists with different whitespace, copy it exactly"
		}
		return "", fmt.Errorf("old text not found in %s%s", args["path"], hint)
	case count > 1:
		return "", fmt.Errorf("old text appears %d times in %s, include more context to make it unique", count, args["path"])
	}

	if err := os.WriteFile(full, []byte(strings.Replace(content, oldStr, newStr, 1)), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return fmt.Sprintf("replaced 1 occurrence in %s", args["path"]), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func fileGlob(_ context.Context, r *Runner, args map[string]string) (string, error) {
	pattern := args["pattern"]
	var matches []string
	err := filepath.WalkDir(r.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(r.root, path)
		if err != nil || rel == "." {
			return nil
		}
		if r.ignore.MatchesPath(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		// Match against both the full relative path and the base name,
		// so "*.go" finds nested files.
		if ok, _ := filepath.Match(pattern, rel); ok {
			matches = append(matches, rel)
			return nil
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(rel)); ok {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("glob walk failed: %w", err)
	}

	sort.Strings(matches)
	if len(matches) > 200 {
		matches = matches[:200]
		matches = append(matches, "... (truncated)")
	}
	if len(matches) == 0 {
		return "no files match " + pattern, nil
	}
	return strings.Join(matches, "\n"), nil
}

func wordCount(_ context.Context, r *Runner, args map[string]string) (string, error) {
	full, err := r.resolve(args["path"])
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	lines := strings.Count(string(data), "\n")
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		lines++
	}
	words := len(strings.Fields(string(data)))
	return fmt.Sprintf("%d lines, %d words, %d bytes", lines, words, len(data)), nil
}
