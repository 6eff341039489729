package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store persists sessions as JSON files, scoped per workspace by a
// short hash of the workspace path.
type Store struct {
	basePath string
}

// NewStore creates a store rooted at configPath (typically the user's
// oryx config directory).
func NewStore(configPath string) *Store {
	return &Store{basePath: filepath.Join(configPath, "sessions")}
}

// WorkspaceHash returns the stable directory name for a workspace.
func (s *Store) WorkspaceHash(workspacePath string) string {
	hash := sha256.Sum256([]byte(filepath.Clean(workspacePath)))
	return hex.EncodeToString(hash[:])[:12]
}

// Save writes the session to disk.
func (s *Store) Save(sess *Session) error {
	if sess.WorkspaceHash == "" {
		sess.WorkspaceHash = s.WorkspaceHash(sess.WorkspacePath)
	}

	dir := filepath.Join(s.basePath, sess.WorkspaceHash)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	filename := filepath.Join(dir, sess.ID+".json")
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load reads one session by ID for the given workspace.
func (s *Store) Load(id, workspacePath string) (*Session, error) {
	filename := filepath.Join(s.basePath, s.WorkspaceHash(workspacePath), id+".json")

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// List returns the workspace's sessions, newest first. Unreadable or
// malformed files are skipped.
func (s *Store) List(workspacePath string) ([]Meta, error) {
	dir := filepath.Join(s.basePath, s.WorkspaceHash(workspacePath))

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []Meta{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list session directory: %w", err)
	}

	var metas []Meta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		metas = append(metas, Meta{
			ID:        sess.ID,
			Title:     sess.Title,
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
			Summary:   sess.Summary,
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}
