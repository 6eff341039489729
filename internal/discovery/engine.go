// Package discovery selects which tool descriptions to expose to the
// model for a turn: the fixed core set plus any specialized tools whose
// triggers fire on the user text, recent tool output, or recent tool
// usage. Bounding this set bounds the prompt size.
package discovery

import (
	"strings"

	"github.com/oryxcli/oryx/internal/tools"
)

// outputWindow bounds how many recent tool outputs are scanned for
// triggers.
const outputWindow = 5

// Result is one discovery decision: the core set, the triggered
// specialized subset, the total token cost, and the trigger reason per
// included specialized tool.
type Result struct {
	Core        []tools.Metadata
	Specialized []tools.Metadata
	TokenCost   int
	Reasons     map[string]string // specialized tool name → why it was included
}

// Names returns every included tool name, core first.
func (r Result) Names() []string {
	out := make([]string, 0, len(r.Core)+len(r.Specialized))
	for _, m := range r.Core {
		out = append(out, m.Name)
	}
	for _, m := range r.Specialized {
		out = append(out, m.Name)
	}
	return out
}

// Engine evaluates discovery triggers against the catalog. It is
// stateless; all inputs arrive per call.
type Engine struct {
	catalog *tools.Catalog
}

// NewEngine returns a discovery engine over the given catalog.
func NewEngine(catalog *tools.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// CoreBaseline returns the token cost of the core set alone: the cost
// of a generic query that fires no triggers.
func (e *Engine) CoreBaseline() int {
	cost := 0
	for _, m := range e.catalog.Core() {
		cost += m.TokenCost
	}
	return cost
}

// Discover selects the tool set for one turn. The core set is always
// present; a specialized tool is included iff at least one of its
// triggers fires. TokenCost is the literal sum of included tools'
// costs, so a generic query costs exactly the core baseline.
func (e *Engine) Discover(userText string, recentOutputs []string, recentTools []string) Result {
	res := Result{
		Core:    e.catalog.Core(),
		Reasons: make(map[string]string),
	}

	if len(recentOutputs) > outputWindow {
		recentOutputs = recentOutputs[len(recentOutputs)-outputWindow:]
	}
	lowerText := strings.ToLower(userText)
	usedSet := make(map[string]bool, len(recentTools))
	for _, name := range recentTools {
		usedSet[name] = true
	}

	for _, m := range e.catalog.Specialized() {
		if reason, ok := fires(m, lowerText, recentOutputs, usedSet); ok {
			res.Specialized = append(res.Specialized, m)
			res.Reasons[m.Name] = reason
		}
	}

	for _, m := range res.Core {
		res.TokenCost += m.TokenCost
	}
	for _, m := range res.Specialized {
		res.TokenCost += m.TokenCost
	}
	return res
}

func fires(m tools.Metadata, lowerText string, recentOutputs []string, usedSet map[string]bool) (string, bool) {
	for _, kw := range m.Keywords {
		if strings.Contains(lowerText, strings.ToLower(kw)) {
			return "keyword: " + kw, true
		}
	}
	for _, trig := range m.OutputTriggers {
		for _, out := range recentOutputs {
			if strings.Contains(out, trig) {
				return "output: " + trig, true
			}
		}
	}
	for _, after := range m.AfterTools {
		if usedSet[after] {
			return "after tool: " + after, true
		}
	}
	return "", false
}
