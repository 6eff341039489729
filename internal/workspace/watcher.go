// Package workspace observes the workspace the assistant operates on:
// detecting the project type for prompt context and watching for files
// that change outside the loop's own tool executions, so the session
// can surface those changes instead of reasoning over stale state.
package workspace

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	gitignore "github.com/sabhiram/go-gitignore"
)

// defaultIgnorePatterns are skipped regardless of .gitignore contents.
var defaultIgnorePatterns = []string{
	".git",
	"node_modules",
	"dist",
	"build",
	"vendor",
	"__pycache__",
	".cache",
	"target",
	".idea",
	".vscode",
	".DS_Store",
}

// Notice reports one batch of externally changed paths, relative to the
// workspace root.
type Notice struct {
	Paths      []string
	Structural bool // a create, delete, or rename occurred
}

// Watcher watches the workspace for changes made outside the loop's own
// tools. Notices accumulate internally; the control thread drains them
// between turns with Drain.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	ignore   gitignore.IgnoreParser
	debounce time.Duration

	mu         sync.Mutex
	pending    map[string]bool
	structural bool
	notices    []Notice

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewIgnoreMatcher compiles the built-in skip list plus every
// .gitignore under root into one matcher.
func NewIgnoreMatcher(root string) gitignore.IgnoreParser {
	patterns := append([]string{}, defaultIgnorePatterns...)
	patterns = append(patterns, loadGitignorePatterns(root)...)
	return gitignore.CompileIgnoreLines(patterns...)
}

// NewWatcher builds a watcher for the workspace root. The root's
// .gitignore files are honored in addition to the built-in skip list.
func NewWatcher(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		root:     root,
		watcher:  fsw,
		ignore:   NewIgnoreMatcher(root),
		debounce: 500 * time.Millisecond,
		pending:  make(map[string]bool),
	}, nil
}

// Start registers every non-ignored directory and begins collecting
// events in the background.
func (w *Watcher) Start() error {
	err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		if rel != "." && w.ignore.MatchesPath(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			_ = w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk workspace: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(2)
	go w.eventLoop(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Stop tears the watcher down and waits for its background units.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	return w.watcher.Close()
}

// Drain returns the accumulated notices and clears them. Called from
// the control thread between turns.
func (w *Watcher) Drain() []Notice {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.notices
	w.notices = nil
	return out
}

func (w *Watcher) eventLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	if w.ignore.MatchesPath(rel) {
		return
	}

	// New directories get watched so nested changes are seen too.
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.watcher.Add(ev.Name)
			return
		}
	}

	if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.mu.Lock()
		w.pending[rel] = true
		if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
			w.structural = true
		}
		w.mu.Unlock()
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.flushPending()
		}
	}
}

// flushPending folds the debounced event set into one notice.
func (w *Watcher) flushPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	w.notices = append(w.notices, Notice{Paths: paths, Structural: w.structural})
	w.pending = make(map[string]bool)
	w.structural = false
}

// FormatNotices renders drained notices as a context line for the model.
func FormatNotices(notices []Notice) string {
	if len(notices) == 0 {
		return ""
	}
	seen := make(map[string]bool)
	var paths []string
	for _, n := range notices {
		for _, p := range n.Paths {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	sort.Strings(paths)
	return "Files changed outside this session: " + strings.Join(paths, ", ")
}

// loadGitignorePatterns collects patterns from every .gitignore under
// root. Nested scoping is not modeled; patterns apply repo-wide.
func loadGitignorePatterns(root string) []string {
	var patterns []string
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != ".gitignore" {
			return nil
		}
		if lines, err := readGitignoreLines(path); err == nil {
			patterns = append(patterns, lines...)
		}
		return nil
	})
	return patterns
}

func readGitignoreLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
