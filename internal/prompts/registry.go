package prompts

import (
	"fmt"
	"sync"
)

// Registry holds versioned prompts by ID.
type Registry struct {
	mu      sync.RWMutex
	prompts map[string]map[Version]*Prompt
}

var defaultRegistry *Registry
var defaultRegistryOnce sync.Once

// DefaultRegistry returns the process-wide registry that init-time
// prompt files register into.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{prompts: make(map[string]map[Version]*Prompt)}
}

// Register adds a prompt. A later registration of the same ID+version
// replaces the earlier one.
func (r *Registry) Register(p *Prompt) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.prompts[p.ID] == nil {
		r.prompts[p.ID] = make(map[Version]*Prompt)
	}
	r.prompts[p.ID][p.Version] = p
}

// Get retrieves a specific version of a prompt.
func (r *Registry) Get(id string, version Version) (*Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, ok := r.prompts[id]
	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", id)
	}
	p, ok := versions[version]
	if !ok {
		return nil, fmt.Errorf("prompt %s version %s not found", id, version)
	}
	return p, nil
}

// GetLatest returns the newest non-deprecated version, or the newest
// version overall when everything is deprecated.
func (r *Registry) GetLatest(id string) (*Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, ok := r.prompts[id]
	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", id)
	}

	var latest *Prompt
	for _, p := range versions {
		if p.Deprecated {
			continue
		}
		if latest == nil || p.Version > latest.Version {
			latest = p
		}
	}
	if latest == nil {
		for _, p := range versions {
			if latest == nil || p.Version > latest.Version {
				latest = p
			}
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("no versions found for prompt: %s", id)
	}
	return latest, nil
}
