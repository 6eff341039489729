package workspace

import (
	"os"
	"path/filepath"
	"strings"
)

// ProjectType classifies the workspace for prompt context.
type ProjectType string

const (
	ProjectTypeGo      ProjectType = "go"
	ProjectTypeNode    ProjectType = "node"
	ProjectTypePython  ProjectType = "python"
	ProjectTypeRust    ProjectType = "rust"
	ProjectTypeUnknown ProjectType = "unknown"
)

// manifests maps marker files to the project type they imply. Checked
// in order; the first hit wins.
var manifests = []struct {
	file string
	typ  ProjectType
}{
	{"go.mod", ProjectTypeGo},
	{"package.json", ProjectTypeNode},
	{"pyproject.toml", ProjectTypePython},
	{"requirements.txt", ProjectTypePython},
	{"Cargo.toml", ProjectTypeRust},
}

// DetectProjectType classifies the workspace, manifest-first with an
// extension-count fallback over the root directory.
func DetectProjectType(root string) ProjectType {
	for _, m := range manifests {
		if _, err := os.Stat(filepath.Join(root, m.file)); err == nil {
			return m.typ
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return ProjectTypeUnknown
	}

	counts := make(map[ProjectType]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".go":
			counts[ProjectTypeGo]++
		case ".ts", ".tsx", ".js", ".jsx":
			counts[ProjectTypeNode]++
		case ".py":
			counts[ProjectTypePython]++
		case ".rs":
			counts[ProjectTypeRust]++
		}
	}

	best, bestCount := ProjectTypeUnknown, 0
	for typ, n := range counts {
		if n > bestCount {
			best, bestCount = typ, n
		}
	}
	// A couple of stray files is not a signal.
	if bestCount < 3 {
		return ProjectTypeUnknown
	}
	return best
}

// BuildCommand returns the type-check/build command for a project type,
// or empty when the type has no useful one.
func BuildCommand(typ ProjectType) (string, []string) {
	switch typ {
	case ProjectTypeGo:
		return "go", []string{"build", "./..."}
	case ProjectTypeNode:
		return "npm", []string{"run", "build"}
	case ProjectTypeRust:
		return "cargo", []string{"build"}
	default:
		return "", nil
	}
}
