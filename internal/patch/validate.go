package patch

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// forbiddenPaths are never modified through the patch surface, whatever
// the diff says.
var forbiddenPaths = []string{
	".env",
	".env.*",
	".git",
	".github",
	".gitignore",
	"go.sum",
	"package-lock.json",
	"yarn.lock",
	"node_modules",
	"vendor",
	"dist",
	"build",
}

// Summary describes a unified diff without applying it.
type Summary struct {
	Files        []string
	TotalChanged int
	LinesPerFile map[string]int
}

var (
	filePathRegex = regexp.MustCompile(`^(---|\+\+\+)\s+(?:a/|b/)?(.+)$`)
)

// Inspect parses a unified diff into its touched files and changed line
// counts.
func Inspect(diff string) (Summary, error) {
	if strings.TrimSpace(diff) == "" {
		return Summary{}, fmt.Errorf("empty diff")
	}

	s := Summary{LinesPerFile: make(map[string]int)}
	seen := make(map[string]bool)
	currentFile := ""

	for _, line := range strings.Split(diff, "\n") {
		if matches := filePathRegex.FindStringSubmatch(line); matches != nil {
			file := strings.TrimPrefix(strings.TrimPrefix(matches[2], "a/"), "b/")
			if file == "/dev/null" {
				continue
			}
			if !seen[file] {
				s.Files = append(s.Files, file)
				seen[file] = true
			}
			currentFile = file
			continue
		}
		added := strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++")
		removed := strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---")
		if added || removed {
			s.TotalChanged++
			if currentFile != "" {
				s.LinesPerFile[currentFile]++
			}
		}
	}

	if len(s.Files) == 0 {
		return Summary{}, fmt.Errorf("diff names no files")
	}
	return s, nil
}

// CheckPath rejects targets a patch must not touch: forbidden names,
// absolute paths, and anything escaping the workspace root.
func CheckPath(path string) error {
	normalized := strings.ToLower(filepath.ToSlash(path))

	for _, forbidden := range forbiddenPaths {
		if strings.HasSuffix(forbidden, "*") {
			if strings.HasPrefix(normalized, strings.TrimSuffix(forbidden, "*")) {
				return fmt.Errorf("path %s matches forbidden pattern %s", path, forbidden)
			}
			continue
		}
		if strings.Contains(normalized, forbidden) {
			return fmt.Errorf("path %s contains forbidden pattern %s", path, forbidden)
		}
	}

	if filepath.IsAbs(path) {
		return fmt.Errorf("path %s is absolute, must be relative to the workspace root", path)
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("path %s contains '..', which is not allowed", path)
	}
	return nil
}

// Check validates every file a diff touches via CheckPath.
func Check(diff string) error {
	s, err := Inspect(diff)
	if err != nil {
		return err
	}
	for _, file := range s.Files {
		if err := CheckPath(file); err != nil {
			return err
		}
	}
	return nil
}
