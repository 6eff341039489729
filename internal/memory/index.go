// Package memory maintains a searchable index over conversation frames
// and tool output. It backs the memory_query tool surface: recall of
// things said or observed earlier without replaying the whole stack.
package memory

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"

	"github.com/oryxcli/oryx/internal/conversation"
)

// Hit is one recalled frame.
type Hit struct {
	ID    string
	Score float64
	Kind  string
	Tool  string
	Text  string
}

// Index is an in-memory full-text index of a session's frames.
type Index struct {
	index     bleve.Index
	sessionID string
}

// NewIndex creates an index for one session.
func NewIndex(sessionID string) (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create memory index: %w", err)
	}
	return &Index{index: idx, sessionID: sessionID}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	frameMapping := bleve.NewDocumentMapping()

	kindField := bleve.NewTextFieldMapping()
	kindField.Analyzer = keyword.Name
	kindField.Store = true
	frameMapping.AddFieldMappingsAt("kind", kindField)

	toolField := bleve.NewTextFieldMapping()
	toolField.Analyzer = keyword.Name
	toolField.Store = true
	frameMapping.AddFieldMappingsAt("tool", toolField)

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	textField.Store = true
	frameMapping.AddFieldMappingsAt("text", textField)

	indexMapping.DefaultMapping = frameMapping
	return indexMapping
}

// AddFrame indexes one conversation frame.
func (m *Index) AddFrame(f conversation.Frame) error {
	doc := map[string]interface{}{
		"kind": string(f.Kind),
		"text": f.Text,
	}
	if f.Result != nil {
		doc["tool"] = f.Result.Tool
		doc["text"] = f.Result.Output
	}
	return m.index.Index(uuid.NewString(), doc)
}

// Query returns the top k frames matching the query text.
func (m *Index) Query(query string, k int) ([]Hit, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = k
	req.Fields = []string{"kind", "tool", "text"}

	result, err := m.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("memory query failed: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if kind, ok := h.Fields["kind"].(string); ok {
			hit.Kind = kind
		}
		if tool, ok := h.Fields["tool"].(string); ok {
			hit.Tool = tool
		}
		if text, ok := h.Fields["text"].(string); ok {
			hit.Text = text
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close releases the index.
func (m *Index) Close() error {
	return m.index.Close()
}
