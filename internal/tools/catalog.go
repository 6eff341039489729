// Package tools defines the closed catalog of capabilities the assistant
// may invoke: the whitelist, per-tool metadata, intent routing, and
// precondition lookups. The catalog is pure data — no I/O happens here.
package tools

import (
	"fmt"
	"sort"
)

// Intent classifies what the user is trying to do. It drives which tools
// the router offers for a turn.
type Intent string

const (
	IntentRead    Intent = "READ"
	IntentMutate  Intent = "MUTATE"
	IntentQuery   Intent = "QUERY"
	IntentExplain Intent = "EXPLAIN"
)

// ParseIntent maps a wire intent string onto the closed Intent set.
func ParseIntent(s string) (Intent, error) {
	switch Intent(s) {
	case IntentRead, IntentMutate, IntentQuery, IntentExplain:
		return Intent(s), nil
	default:
		return "", fmt.Errorf("unknown intent: %q", s)
	}
}

// Category partitions tools by how they are exposed to the model.
type Category string

const (
	// CategoryCore tools are always described to the model.
	CategoryCore Category = "core"
	// CategorySpecialized tools are described only when a discovery
	// trigger fires.
	CategorySpecialized Category = "specialized"
	// CategoryInternal names exist for audit logging only and are never
	// returned to the model.
	CategoryInternal Category = "internal"
)

// Metadata describes one tool in the catalog.
type Metadata struct {
	Name        string
	Category    Category
	Description string
	Examples    []string // "when to use" guidance
	NotExamples []string // "when NOT to use" guidance
	TokenCost   int      // estimated prompt cost of describing this tool
	Gated       bool     // requires human approval before execution

	RequiredArgs  []string // argument keys that must be present in a step
	Preconditions []string // named pure checks that must hold before execution
	Intents       []Intent // intents this tool serves

	// Discovery triggers. A specialized tool is surfaced when any one of
	// these fires; core tools ignore them.
	Keywords       []string // case-insensitive substrings of the user text
	OutputTriggers []string // substrings of recent tool output
	AfterTools     []string // tool names recently used this session
}

// Catalog is the closed registry of tool identities. Construction
// validates the catalog invariants once; lookups after that are
// deterministic and allocation-light.
type Catalog struct {
	byName map[string]Metadata
	order  []string // whitelist order, internal tools excluded
}

// Internal-only names, logged but never exposed.
const (
	NameApprovalGranted = "approval_granted"
	NameApprovalDenied  = "approval_denied"
)

// DisplayTextTool is the no-precondition pseudo-tool used to render
// assistant text as a plan step.
const DisplayTextTool = "display_text"

// NewCatalog builds the fixed tool catalog. It panics if the catalog
// violates its invariants: a core tool without examples, or a
// non-display tool without preconditions. Both are programmer errors in
// the tables below, not runtime conditions.
func NewCatalog() *Catalog {
	c := &Catalog{byName: make(map[string]Metadata)}
	for _, m := range catalogEntries() {
		if _, dup := c.byName[m.Name]; dup {
			panic(fmt.Sprintf("tools: duplicate catalog entry %q", m.Name))
		}
		if m.Category == CategoryCore && len(m.Examples) == 0 {
			panic(fmt.Sprintf("tools: core tool %q has no examples", m.Name))
		}
		if m.Category != CategoryInternal && m.Name != DisplayTextTool && len(m.Preconditions) == 0 {
			panic(fmt.Sprintf("tools: tool %q has no preconditions", m.Name))
		}
		c.byName[m.Name] = m
		if m.Category != CategoryInternal {
			c.order = append(c.order, m.Name)
		}
	}
	return c
}

// AllowedTools returns the whitelist in catalog order. Internal-only
// names are excluded.
func (c *Catalog) AllowedTools() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Lookup returns the metadata for a tool name, including internal names.
func (c *Catalog) Lookup(name string) (Metadata, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// Allowed reports whether name is on the model-facing whitelist.
func (c *Catalog) Allowed(name string) bool {
	m, ok := c.byName[name]
	return ok && m.Category != CategoryInternal
}

// ForIntent returns the whitelist subset serving the given intent, in
// catalog order.
func (c *Catalog) ForIntent(intent Intent) []string {
	var out []string
	for _, name := range c.order {
		for _, i := range c.byName[name].Intents {
			if i == intent {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// PreconditionsFor returns the named preconditions for a tool. The
// returned slice is sorted so callers see a stable order.
func (c *Catalog) PreconditionsFor(name string) []string {
	m, ok := c.byName[name]
	if !ok {
		return nil
	}
	out := make([]string, len(m.Preconditions))
	copy(out, m.Preconditions)
	sort.Strings(out)
	return out
}

// RequiredArgs returns the argument keys a step invoking this tool must
// provide, sorted.
func (c *Catalog) RequiredArgs(name string) []string {
	m, ok := c.byName[name]
	if !ok {
		return nil
	}
	out := make([]string, len(m.RequiredArgs))
	copy(out, m.RequiredArgs)
	sort.Strings(out)
	return out
}

// IsGated reports whether the tool requires human approval. Unknown
// names are gated by construction: nothing unlisted may auto-run.
func (c *Catalog) IsGated(name string) bool {
	m, ok := c.byName[name]
	if !ok {
		return true
	}
	return m.Gated
}

// Core returns the always-on core set in catalog order.
func (c *Catalog) Core() []Metadata {
	var out []Metadata
	for _, name := range c.order {
		if m := c.byName[name]; m.Category == CategoryCore {
			out = append(out, m)
		}
	}
	return out
}

// Specialized returns the trigger-surfaced set in catalog order.
func (c *Catalog) Specialized() []Metadata {
	var out []Metadata
	for _, name := range c.order {
		if m := c.byName[name]; m.Category == CategorySpecialized {
			out = append(out, m)
		}
	}
	return out
}
