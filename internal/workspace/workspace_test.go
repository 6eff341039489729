package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDetectProjectType(t *testing.T) {
	t.Run("manifest wins", func(t *testing.T) {
		root := t.TempDir()
		if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0644); err != nil {
			t.Fatal(err)
		}
		// A pile of python files must not override the manifest.
		for _, name := range []string{"a.py", "b.py", "c.py", "d.py"} {
			if err := os.WriteFile(filepath.Join(root, name), []byte("pass\n"), 0644); err != nil {
				t.Fatal(err)
			}
		}
		if got := DetectProjectType(root); got != ProjectTypeGo {
			t.Errorf("got %s, want go", got)
		}
	})

	t.Run("extension fallback", func(t *testing.T) {
		root := t.TempDir()
		for _, name := range []string{"a.rs", "b.rs", "c.rs"} {
			if err := os.WriteFile(filepath.Join(root, name), []byte("fn main() {}\n"), 0644); err != nil {
				t.Fatal(err)
			}
		}
		if got := DetectProjectType(root); got != ProjectTypeRust {
			t.Errorf("got %s, want rust", got)
		}
	})

	t.Run("too few files", func(t *testing.T) {
		root := t.TempDir()
		if err := os.WriteFile(filepath.Join(root, "only.go"), []byte("package x\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if got := DetectProjectType(root); got != ProjectTypeUnknown {
			t.Errorf("got %s, want unknown", got)
		}
	})
}

func TestWatcherReportsExternalChange(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(root)
	if err != nil {
		t.Fatal(err)
	}
	w.debounce = 20 * time.Millisecond
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(root, "changed.go"), []byte("package x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		notices := w.Drain()
		for _, n := range notices {
			for _, p := range n.Paths {
				if p == "changed.go" {
					return
				}
			}
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for change notice")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatcherHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(root)
	if err != nil {
		t.Fatal(err)
	}
	w.debounce = 20 * time.Millisecond
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(root, "noise.log"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "signal.go"), []byte("package x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		for _, n := range w.Drain() {
			for _, p := range n.Paths {
				if p == "noise.log" {
					t.Fatal("ignored file produced a notice")
				}
				if p == "signal.go" {
					return
				}
			}
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for signal.go notice")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestFormatNotices(t *testing.T) {
	got := FormatNotices([]Notice{
		{Paths: []string{"b.go", "a.go"}},
		{Paths: []string{"a.go", "c.go"}, Structural: true},
	})
	want := "Files changed outside this session: a.go, b.go, c.go"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if FormatNotices(nil) != "" {
		t.Error("no notices should render empty")
	}
	if !strings.HasPrefix(got, "Files changed") {
		t.Errorf("unexpected prefix: %q", got)
	}
}
