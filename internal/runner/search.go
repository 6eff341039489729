package runner

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// maxSearchResults bounds match output the same way the read cap bounds
// file output.
const maxSearchResults = 100

// textExtensions are the file types search and symbol scans consider.
var textExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".jsx": true,
	".tsx": true, ".java": true, ".c": true, ".h": true, ".cpp": true,
	".hpp": true, ".rs": true, ".rb": true, ".php": true, ".html": true,
	".css": true, ".md": true, ".txt": true, ".json": true, ".yaml": true,
	".yml": true, ".toml": true, ".sh": true, ".sql": true, ".xml": true,
}

type match struct {
	path string
	line int
	text string
}

// searchFiles scans non-ignored text files under root for the compiled
// pattern, up to the result cap.
func (r *Runner) searchFiles(re *regexp.Regexp) ([]match, error) {
	var matches []match
	err := filepath.WalkDir(r.root, func(path string, d os.DirEntry, err error) error {
		if err != nil || len(matches) >= maxSearchResults {
			if len(matches) >= maxSearchResults {
				return filepath.SkipAll
			}
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
		if d.IsDir() || !textExtensions[strings.ToLower(filepath.Ext(rel))] {
			return nil
		}
		matches = append(matches, scanFile(path, rel, re, maxSearchResults-len(matches))...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search walk failed: %w", err)
	}
	return matches, nil
}

func scanFile(full, rel string, re *regexp.Regexp, limit int) []match {
	f, err := os.Open(full)
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []match
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() && len(out) < limit {
		lineNo++
		if re.MatchString(scanner.Text()) {
			out = append(out, match{path: rel, line: lineNo, text: strings.TrimSpace(scanner.Text())})
		}
	}
	return out
}

func formatMatches(matches []match, none string) string {
	if len(matches) == 0 {
		return none
	}
	var b strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&b, "%s:%d: %s\n", m.path, m.line, m.text)
	}
	if len(matches) >= maxSearchResults {
		b.WriteString("... (truncated)\n")
	}
	return b.String()
}

func fileSearch(_ context.Context, r *Runner, args map[string]string) (string, error) {
	re, err := regexp.Compile(args["pattern"])
	if err != nil {
		return "", fmt.Errorf("invalid pattern: %w", err)
	}
	matches, err := r.searchFiles(re)
	if err != nil {
		return "", err
	}
	return formatMatches(matches, "no matches for "+args["pattern"]), nil
}

func referencesToSymbol(_ context.Context, r *Runner, args map[string]string) (string, error) {
	symbol := args["symbol"]
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(symbol) + `\b`)
	if err != nil {
		return "", fmt.Errorf("invalid symbol: %w", err)
	}
	matches, err := r.searchFiles(re)
	if err != nil {
		return "", err
	}
	return formatMatches(matches, "no references to "+symbol), nil
}

func referencesFromFile(_ context.Context, r *Runner, args map[string]string) (string, error) {
	full, err := r.resolve(args["path"])
	if err != nil {
		return "", err
	}
	symbol := args["symbol"]
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(symbol) + `\b`)
	matches := scanFile(full, args["path"], re, maxSearchResults)
	return formatMatches(matches, fmt.Sprintf("no references to %s in %s", symbol, args["path"])), nil
}

// symbolPatterns maps file extension to the line pattern that opens a
// top-level declaration.
var symbolPatterns = map[string]*regexp.Regexp{
	".go": regexp.MustCompile(`^(func|type|var|const)\s+\(?[A-Za-z_]`),
	".py": regexp.MustCompile(`^(def|class)\s+[A-Za-z_]`),
	".js": regexp.MustCompile(`^(function|class|const|export)\s+`),
	".ts": regexp.MustCompile(`^(function|class|const|export|interface|type)\s+`),
	".rs": regexp.MustCompile(`^(pub\s+)?(fn|struct|enum|trait|impl|const)\s+`),
}

func symbolsInFile(_ context.Context, r *Runner, args map[string]string) (string, error) {
	full, err := r.resolve(args["path"])
	if err != nil {
		return "", err
	}
	re, ok := symbolPatterns[strings.ToLower(filepath.Ext(full))]
	if !ok {
		return "", fmt.Errorf("no symbol support for %s files", filepath.Ext(full))
	}
	matches := scanFile(full, args["path"], re, maxSearchResults)
	return formatMatches(matches, "no top-level symbols found in "+args["path"]), nil
}
